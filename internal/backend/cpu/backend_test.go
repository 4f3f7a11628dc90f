package cpu

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/recurrent/internal/parallel"
	"github.com/born-ml/recurrent/internal/tensor"
)

func rawFloat32(t *testing.T, shape tensor.Shape, values ...float32) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.NewRaw(shape, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	copy(raw.AsFloat32(), values)
	return raw
}

func TestCPUBackend_New(t *testing.T) {
	backend := New()
	require.NotNil(t, backend)
	assert.Equal(t, "CPU", backend.Name())
	assert.Equal(t, tensor.CPU, backend.Device())
}

func TestCPUBackend_Binary(t *testing.T) {
	backend := NewWithConfig(parallel.Sequential())

	tests := []struct {
		name string
		op   func(a, b *tensor.RawTensor) *tensor.RawTensor
		want []float32
	}{
		{"add", backend.Add, []float32{11, 13, 15, 17, 19, 21}},
		{"sub", backend.Sub, []float32{-9, -9, -9, -9, -9, -9}},
		{"mul", backend.Mul, []float32{10, 22, 36, 52, 70, 90}},
		{"div", backend.Div, []float32{0.1, 2.0 / 11, 3.0 / 12, 4.0 / 13, 5.0 / 14, 6.0 / 15}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := rawFloat32(t, tensor.Shape{2, 3}, 1, 2, 3, 4, 5, 6)
			b := rawFloat32(t, tensor.Shape{2, 3}, 10, 11, 12, 13, 14, 15)

			result := tt.op(a, b)

			assert.Equal(t, tensor.Shape{2, 3}, result.Shape())
			assert.InDeltaSlice(t, tt.want, result.AsFloat32(), 1e-6)
		})
	}
}

func TestCPUBackend_AddBroadcast(t *testing.T) {
	backend := New()

	t.Run("RowVector", func(t *testing.T) {
		a := rawFloat32(t, tensor.Shape{2, 3}, 1, 2, 3, 4, 5, 6)
		b := rawFloat32(t, tensor.Shape{1, 3}, 10, 20, 30)

		result := backend.Add(a, b)

		assert.Equal(t, tensor.Shape{2, 3}, result.Shape())
		assert.Equal(t, []float32{11, 22, 33, 14, 25, 36}, result.AsFloat32())
	})

	t.Run("RankPromotion", func(t *testing.T) {
		a := rawFloat32(t, tensor.Shape{3}, 1, 2, 3)
		b := rawFloat32(t, tensor.Shape{2, 1}, 100, 200)

		result := backend.Add(a, b)

		assert.Equal(t, tensor.Shape{2, 3}, result.Shape())
		assert.Equal(t, []float32{101, 102, 103, 201, 202, 203}, result.AsFloat32())
	})

	t.Run("Incompatible", func(t *testing.T) {
		a := rawFloat32(t, tensor.Shape{3}, 1, 2, 3)
		b := rawFloat32(t, tensor.Shape{4}, 1, 2, 3, 4)

		assert.Panics(t, func() { backend.Add(a, b) })
	})
}

func TestCPUBackend_OperandsUntouched(t *testing.T) {
	backend := New()
	a := rawFloat32(t, tensor.Shape{4}, 1, 2, 3, 4)
	b := rawFloat32(t, tensor.Shape{4}, 5, 6, 7, 8)

	_ = backend.Add(a, b)
	_ = backend.Mul(a, b)
	_ = backend.Tanh(a)

	assert.Equal(t, []float32{1, 2, 3, 4}, a.AsFloat32())
	assert.Equal(t, []float32{5, 6, 7, 8}, b.AsFloat32())
}

func TestCPUBackend_MatMul(t *testing.T) {
	backend := New()

	t.Run("Small", func(t *testing.T) {
		a := rawFloat32(t, tensor.Shape{2, 3}, 1, 2, 3, 4, 5, 6)
		b := rawFloat32(t, tensor.Shape{3, 2}, 7, 8, 9, 10, 11, 12)

		result := backend.MatMul(a, b)

		assert.Equal(t, tensor.Shape{2, 2}, result.Shape())
		assert.Equal(t, []float32{58, 64, 139, 154}, result.AsFloat32())
	})

	t.Run("MatchesNaive", func(t *testing.T) {
		rng := rand.New(rand.NewSource(1))
		m, k, n := 7, 13, 10
		a := rawFloat32(t, tensor.Shape{m, k})
		b := rawFloat32(t, tensor.Shape{k, n})
		for i := range a.AsFloat32() {
			a.AsFloat32()[i] = float32(rng.NormFloat64())
		}
		for i := range b.AsFloat32() {
			b.AsFloat32()[i] = float32(rng.NormFloat64())
		}

		want := make([]float32, m*n)
		matmulNaive(want, a.AsFloat32(), b.AsFloat32(), m, k, n)

		assert.InDeltaSlice(t, want, backend.MatMul(a, b).AsFloat32(), 1e-4)
	})

	t.Run("RowsIndependentOfBatch", func(t *testing.T) {
		rng := rand.New(rand.NewSource(2))
		a := rawFloat32(t, tensor.Shape{5, 3})
		w := rawFloat32(t, tensor.Shape{3, 10})
		for i := range a.AsFloat32() {
			a.AsFloat32()[i] = float32(rng.NormFloat64())
		}
		for i := range w.AsFloat32() {
			w.AsFloat32()[i] = float32(rng.NormFloat64())
		}

		full := backend.MatMul(a, w).AsFloat32()
		for row := 0; row < 5; row++ {
			single := backend.MatMul(backend.Unsqueeze(backend.Select(a, 0, row), 0), w).AsFloat32()
			assert.Equal(t, full[row*10:(row+1)*10], single, "row %d", row)
		}
	})

	t.Run("Int32", func(t *testing.T) {
		a, _ := tensor.NewRaw(tensor.Shape{1, 2}, tensor.Int32, tensor.CPU)
		b, _ := tensor.NewRaw(tensor.Shape{2, 1}, tensor.Int32, tensor.CPU)
		copy(a.AsInt32(), []int32{2, 3})
		copy(b.AsInt32(), []int32{4, 5})

		assert.Equal(t, []int32{23}, backend.MatMul(a, b).AsInt32())
	})

	t.Run("ShapeMismatch", func(t *testing.T) {
		a := rawFloat32(t, tensor.Shape{2, 3})
		b := rawFloat32(t, tensor.Shape{2, 3})
		assert.Panics(t, func() { backend.MatMul(a, b) })
	})
}

func TestCPUBackend_Transpose(t *testing.T) {
	backend := New()

	t.Run("2D", func(t *testing.T) {
		x := rawFloat32(t, tensor.Shape{2, 3}, 1, 2, 3, 4, 5, 6)
		result := backend.Transpose(x)

		assert.Equal(t, tensor.Shape{3, 2}, result.Shape())
		assert.Equal(t, []float32{1, 4, 2, 5, 3, 6}, result.AsFloat32())
	})

	t.Run("SwapLeadingAxes", func(t *testing.T) {
		// (2, 3, 2) -> (3, 2, 2)
		x := rawFloat32(t, tensor.Shape{2, 3, 2}, 0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11)
		result := backend.Transpose(x, 1, 0, 2)

		assert.Equal(t, tensor.Shape{3, 2, 2}, result.Shape())
		assert.Equal(t, []float32{0, 1, 6, 7, 2, 3, 8, 9, 4, 5, 10, 11}, result.AsFloat32())
	})

	t.Run("InvalidAxes", func(t *testing.T) {
		x := rawFloat32(t, tensor.Shape{2, 3})
		assert.Panics(t, func() { backend.Transpose(x, 0, 0) })
		assert.Panics(t, func() { backend.Transpose(x, 0) })
	})
}

func TestCPUBackend_CatSelect(t *testing.T) {
	backend := New()

	t.Run("Cat1D", func(t *testing.T) {
		a := rawFloat32(t, tensor.Shape{2}, 1, 2)
		b := rawFloat32(t, tensor.Shape{3}, 3, 4, 5)

		result := backend.Cat([]*tensor.RawTensor{a, b}, 0)

		assert.Equal(t, tensor.Shape{5}, result.Shape())
		assert.Equal(t, []float32{1, 2, 3, 4, 5}, result.AsFloat32())
	})

	t.Run("CatLastDim", func(t *testing.T) {
		a := rawFloat32(t, tensor.Shape{2, 1}, 1, 2)
		b := rawFloat32(t, tensor.Shape{2, 2}, 3, 4, 5, 6)

		result := backend.Cat([]*tensor.RawTensor{a, b}, -1)

		assert.Equal(t, tensor.Shape{2, 3}, result.Shape())
		assert.Equal(t, []float32{1, 3, 4, 2, 5, 6}, result.AsFloat32())
	})

	t.Run("CatMismatch", func(t *testing.T) {
		a := rawFloat32(t, tensor.Shape{2, 1})
		b := rawFloat32(t, tensor.Shape{3, 1})
		assert.Panics(t, func() { backend.Cat([]*tensor.RawTensor{a, b}, 1) })
	})

	t.Run("SelectRows", func(t *testing.T) {
		x := rawFloat32(t, tensor.Shape{3, 2}, 1, 2, 3, 4, 5, 6)

		row := backend.Select(x, 0, 1)
		assert.Equal(t, tensor.Shape{2}, row.Shape())
		assert.Equal(t, []float32{3, 4}, row.AsFloat32())

		col := backend.Select(x, 1, 1)
		assert.Equal(t, tensor.Shape{3}, col.Shape())
		assert.Equal(t, []float32{2, 4, 6}, col.AsFloat32())
	})

	t.Run("SelectOutOfRange", func(t *testing.T) {
		x := rawFloat32(t, tensor.Shape{3, 2})
		assert.Panics(t, func() { backend.Select(x, 0, 3) })
	})

	t.Run("UnsqueezeSqueeze", func(t *testing.T) {
		x := rawFloat32(t, tensor.Shape{4}, 1, 2, 3, 4)

		u := backend.Unsqueeze(x, 0)
		assert.Equal(t, tensor.Shape{1, 4}, u.Shape())
		assert.Equal(t, tensor.Shape{4, 1}, backend.Unsqueeze(x, -1).Shape())

		s := backend.Squeeze(u, 0)
		assert.Equal(t, tensor.Shape{4}, s.Shape())
		assert.Equal(t, []float32{1, 2, 3, 4}, s.AsFloat32())

		assert.Panics(t, func() { backend.Squeeze(x, 0) })
	})

	t.Run("Reshape", func(t *testing.T) {
		x := rawFloat32(t, tensor.Shape{2, 3}, 1, 2, 3, 4, 5, 6)

		r := backend.Reshape(x, tensor.Shape{3, 2})
		assert.Equal(t, tensor.Shape{3, 2}, r.Shape())
		assert.Equal(t, x.AsFloat32(), r.AsFloat32())
		assert.Panics(t, func() { backend.Reshape(x, tensor.Shape{4}) })
	})
}

func TestCPUBackend_Activations(t *testing.T) {
	backend := New()
	x := rawFloat32(t, tensor.Shape{3}, -1, 0, 2)

	assert.InDeltaSlice(t,
		[]float32{float32(math.Tanh(-1)), 0, float32(math.Tanh(2))},
		backend.Tanh(x).AsFloat32(), 1e-7)
	assert.InDeltaSlice(t,
		[]float32{float32(1 / (1 + math.E)), 0.5, float32(1 / (1 + math.Exp(-2)))},
		backend.Sigmoid(x).AsFloat32(), 1e-7)
	assert.Equal(t, []float32{0, 0, 2}, backend.ReLU(x).AsFloat32())

	ints, _ := tensor.NewRaw(tensor.Shape{2}, tensor.Int32, tensor.CPU)
	assert.Panics(t, func() { backend.Tanh(ints) })
}
