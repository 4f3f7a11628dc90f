package tensor_test

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/recurrent/internal/backend/cpu"
	"github.com/born-ml/recurrent/internal/tensor"
)

func TestDataType(t *testing.T) {
	tests := []struct {
		dtype tensor.DataType
		size  int
		name  string
	}{
		{tensor.Float32, 4, "float32"},
		{tensor.Float64, 8, "float64"},
		{tensor.Int32, 4, "int32"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.size, tt.dtype.Size())
		assert.Equal(t, tt.name, tt.dtype.String())
	}
}

func TestShape(t *testing.T) {
	s := tensor.Shape{2, 3, 4}

	assert.Equal(t, 24, s.NumElements())
	assert.Equal(t, []int{12, 4, 1}, s.ComputeStrides())
	assert.Equal(t, 1, tensor.Shape{}.NumElements())
	assert.Equal(t, "(2, 3, 4)", s.String())
	assert.Equal(t, "(*, 10)", tensor.Shape{tensor.AnyDim, 10}.String())

	assert.NoError(t, s.Validate())
	assert.Error(t, tensor.Shape{2, 0}.Validate())

	assert.True(t, s.Matches(tensor.Shape{tensor.AnyDim, 3, 4}))
	assert.False(t, s.Matches(tensor.Shape{tensor.AnyDim, 4}))
	assert.False(t, s.Matches(tensor.Shape{2, 3, 5}))
}

func TestBroadcastShapes(t *testing.T) {
	tests := []struct {
		a, b      tensor.Shape
		want      tensor.Shape
		broadcast bool
		wantErr   bool
	}{
		{tensor.Shape{3, 1}, tensor.Shape{3, 5}, tensor.Shape{3, 5}, true, false},
		{tensor.Shape{1, 5}, tensor.Shape{3, 5}, tensor.Shape{3, 5}, true, false},
		{tensor.Shape{3, 5}, tensor.Shape{3, 5}, tensor.Shape{3, 5}, false, false},
		{tensor.Shape{5}, tensor.Shape{3, 5}, tensor.Shape{3, 5}, true, false},
		{tensor.Shape{3, 4}, tensor.Shape{3, 5}, nil, false, true},
	}

	for _, tt := range tests {
		got, broadcast, err := tensor.BroadcastShapes(tt.a, tt.b)
		if tt.wantErr {
			assert.Error(t, err, "%v + %v", tt.a, tt.b)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, tt.broadcast, broadcast, "%v + %v", tt.a, tt.b)
	}
}

func TestCheckShape(t *testing.T) {
	assert.NoError(t, tensor.CheckShape("op", tensor.Shape{3}, tensor.Shape{3}))

	err := tensor.CheckShape("cell.Update", tensor.Shape{4}, tensor.Shape{3})
	require.Error(t, err)

	var shapeErr *tensor.ShapeError
	require.True(t, errors.As(err, &shapeErr))
	assert.Equal(t, "cell.Update", shapeErr.Op)
	assert.Equal(t, tensor.Shape{3}, shapeErr.Want)
	assert.Equal(t, tensor.Shape{4}, shapeErr.Got)
	assert.Equal(t, "cell.Update: shape mismatch: want (3), got (4)", err.Error())
}

func TestFromSlice(t *testing.T) {
	backend := cpu.New()

	x, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, backend)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 3}, x.Shape())
	assert.Equal(t, tensor.Float32, x.DType())
	assert.Equal(t, float32(6), x.At(1, 2))
	assert.Equal(t, "Tensor[float32](2, 3) on CPU", x.String())

	_, err = tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{2, 3}, backend)
	assert.Error(t, err)

	assert.Panics(t, func() { x.At(2, 0) })
}

func TestCreation(t *testing.T) {
	backend := cpu.New()

	assert.Equal(t, []float32{0, 0, 0}, tensor.Zeros[float32](tensor.Shape{3}, backend).Data())
	assert.Equal(t, []float64{1, 1}, tensor.Ones[float64](tensor.Shape{2}, backend).Data())
	assert.Equal(t, []int32{7, 7}, tensor.Full[int32](tensor.Shape{2}, 7, backend).Data())
	assert.Panics(t, func() { tensor.Zeros[float32](tensor.Shape{0}, backend) })
	assert.Panics(t, func() { tensor.Randn[int32](tensor.Shape{2}, backend) })
}

func TestRandnFrom_Reproducible(t *testing.T) {
	backend := cpu.New()

	a := tensor.RandnFrom[float32](tensor.Shape{4, 5}, rand.New(rand.NewSource(7)), backend)
	b := tensor.RandnFrom[float32](tensor.Shape{4, 5}, rand.New(rand.NewSource(7)), backend)
	c := tensor.RandnFrom[float32](tensor.Shape{4, 5}, rand.New(rand.NewSource(8)), backend)

	assert.Equal(t, a.Data(), b.Data())
	assert.NotEqual(t, a.Data(), c.Data())
}

func TestClone_IsDeep(t *testing.T) {
	backend := cpu.New()
	x, _ := tensor.FromSlice([]float32{1, 2}, tensor.Shape{2}, backend)

	y := x.Clone()
	y.Data()[0] = 100

	assert.Equal(t, float32(1), x.Data()[0])
}

func TestStackUnbind(t *testing.T) {
	backend := cpu.New()
	x, _ := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{3, 2}, backend)

	rows := x.Unbind(0)
	require.Len(t, rows, 3)
	assert.Equal(t, []float32{3, 4}, rows[1].Data())

	stacked := tensor.Stack(rows, 0)
	assert.Equal(t, x.Shape(), stacked.Shape())
	assert.Equal(t, x.Data(), stacked.Data())

	cols := tensor.Stack(rows, 1)
	assert.Equal(t, tensor.Shape{2, 3}, cols.Shape())
	assert.Equal(t, []float32{1, 3, 5, 2, 4, 6}, cols.Data())

	single := tensor.Stack(rows[:1], 0)
	assert.Equal(t, tensor.Shape{1, 2}, single.Shape())
}

func TestCatAndOps(t *testing.T) {
	backend := cpu.New()
	a, _ := tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{3}, backend)
	b, _ := tensor.FromSlice([]float32{4, 5}, tensor.Shape{2}, backend)

	c := tensor.Cat([]*tensor.Tensor[float32, *cpu.CPUBackend]{a, b}, 0)
	assert.Equal(t, []float32{1, 2, 3, 4, 5}, c.Data())

	m := c.Reshape(1, 5)
	assert.Equal(t, tensor.Shape{1, 5}, m.Shape())
	assert.Equal(t, tensor.Shape{5, 1}, m.T().Shape())
	assert.Equal(t, tensor.Shape{5}, m.Squeeze(0).Shape())

	sum := a.Add(a).Sub(a).Mul(a).Div(a)
	assert.Equal(t, []float32{1, 2, 3}, sum.Data())
	assert.Equal(t, []float32{1, 2, 3}, a.Data())
}
