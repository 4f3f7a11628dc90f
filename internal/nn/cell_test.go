package nn_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/recurrent/internal/backend/cpu"
	"github.com/born-ml/recurrent/internal/nn"
	"github.com/born-ml/recurrent/internal/tensor"
)

const (
	nin    = 3
	nstate = 10
	nout   = 4
	seqLen = 7
)

func randn(seed int64, shape ...int) *vec {
	return tensor.RandnFrom[float32](tensor.Shape(shape), rand.New(rand.NewSource(seed)), cpu.New())
}

func TestCells_ShapeContract(t *testing.T) {
	backend := cpu.New()
	cells := map[string]nn.Cell[backendT]{
		"simple": nn.NewSimpleCell(nin, nstate, backend),
		"elman":  nn.NewElmanCell(nin, nstate, backend),
	}

	for name, cell := range cells {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, nn.ElementCell, cell.Kind())
			assert.Equal(t, nin, cell.InputSize())
			assert.Equal(t, nstate, cell.StateSize())

			next, err := cell.Update(randn(1, nstate), randn(2, nin))
			require.NoError(t, err)
			assert.Equal(t, tensor.Shape{nstate}, next.Shape())

			rows, err := cell.Update(randn(1, 5, nstate), randn(2, 5, nin))
			require.NoError(t, err)
			assert.Equal(t, tensor.Shape{5, nstate}, rows.Shape())

			bad := []struct {
				name     string
				state, x *vec
			}{
				{"InputTooLong", randn(1, nstate), randn(2, nin+1)},
				{"StateTooShort", randn(1, nstate-1), randn(2, nin)},
				{"RowMismatch", randn(1, 5, nstate), randn(2, 4, nin)},
				{"BatchedInputForSingleState", randn(1, nstate), randn(2, 1, nin)},
				{"RankThreeState", randn(1, 1, 1, nstate), randn(2, nin)},
				{"NilInput", randn(1, nstate), nil},
			}
			for _, tt := range bad {
				t.Run(tt.name, func(t *testing.T) {
					got, err := cell.Update(tt.state, tt.x)
					var shapeErr *tensor.ShapeError
					require.ErrorAs(t, err, &shapeErr)
					assert.Nil(t, got)
				})
			}
		})
	}
}

func TestElmanCell_InputLengthMismatch(t *testing.T) {
	cell := nn.NewElmanCell(3, 10, cpu.New())

	_, err := cell.Update(randn(1, 10), randn(2, 4))

	var shapeErr *tensor.ShapeError
	require.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, tensor.Shape{3}, shapeErr.Want)
	assert.Equal(t, tensor.Shape{4}, shapeErr.Got)
}

func TestElmanCell_Update(t *testing.T) {
	backend := cpu.New()
	cell := nn.NewElmanCell(2, 2, backend)
	require.NoError(t, cell.WXH().LoadStateDict(map[string]*tensor.RawTensor{
		"weight": fromSlice(t, []float32{1, 0, 0, 1}, 2, 2).Raw(),
	}))
	require.NoError(t, cell.WHH().LoadStateDict(map[string]*tensor.RawTensor{
		"weight": fromSlice(t, []float32{0, 1, 1, 0}, 2, 2).Raw(),
		"bias":   fromSlice(t, []float32{0.25, -0.25}, 2).Raw(),
	}))

	state := fromSlice(t, []float32{0.5, -0.5}, 2)
	x := fromSlice(t, []float32{0.1, 0.2}, 2)
	next, err := cell.Update(state, x)
	require.NoError(t, err)

	// whh: (-0.5 + 0.25, 0.5 - 0.25); wxh: (0.1, 0.2)
	assert.InDelta(t, tanh(-0.15), next.Data()[0], 1e-6)
	assert.InDelta(t, tanh(0.45), next.Data()[1], 1e-6)

	assert.Equal(t, []float32{0.5, -0.5}, state.Data(), "state must not be mutated")
	assert.Len(t, cell.Parameters(), 3)
	assert.Nil(t, cell.WXH().Bias())
}

func TestSimpleCell_Structure(t *testing.T) {
	backend := cpu.New()
	cell := nn.NewSimpleCell(nin, nstate, backend, nn.WithActivation[backendT](nn.NewReLU[backendT]()))

	require.Equal(t, 3, cell.Op().Len())
	first, ok := cell.Op().Module(0).(*nn.Linear[backendT])
	require.True(t, ok)
	assert.Equal(t, nin+nstate, first.InFeatures())
	assert.Equal(t, nstate, first.OutFeatures())
	assert.Len(t, cell.Parameters(), 4)

	next, err := cell.Update(randn(1, nstate), randn(2, nin))
	require.NoError(t, err)
	for _, v := range next.Data() {
		assert.GreaterOrEqual(t, v, float32(0))
	}
}

func TestSimpleCell_ConcatenatesInputFirst(t *testing.T) {
	backend := cpu.New()
	cell := nn.NewSimpleCell(1, 1, backend, nn.WithActivation[backendT](nn.Identity[backendT]()))
	require.NoError(t, cell.Op().LoadStateDict(map[string]*tensor.RawTensor{
		"0.weight": fromSlice(t, []float32{10, 1}, 1, 2).Raw(),
		"0.bias":   fromSlice(t, []float32{0}, 1).Raw(),
		"1.weight": fromSlice(t, []float32{1}, 1, 1).Raw(),
		"1.bias":   fromSlice(t, []float32{0}, 1).Raw(),
	}))

	next, err := cell.Update(fromSlice(t, []float32{2}, 1), fromSlice(t, []float32{3}, 1))
	require.NoError(t, err)
	assert.Equal(t, []float32{32}, next.Data())
}

func TestFactorizedCell_MatchesElmanLoop(t *testing.T) {
	elman := nn.NewElmanCell(nin, nstate, cpu.New())
	factorized, err := elman.Factorize()
	require.NoError(t, err)

	state := randn(1, nstate)
	xs := randn(2, seqLen, nin)

	want := state
	for _, x := range xs.Unbind(0) {
		want, err = elman.Update(want, x)
		require.NoError(t, err)
	}

	got, err := factorized.Update(state, xs)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{1, nstate}, got.Shape())
	assert.InDeltaSlice(t, want.Data(), got.Data(), 1e-6)

	assert.Equal(t, tensor.Shape{seqLen, nstate}, factorized.Factor().Shape())
	assert.Equal(t, tensor.Shape{nstate}, factorized.LastState().Shape())
	assert.Equal(t, got.Data(), factorized.LastState().Data())
}

func TestFactorizedCell_FactorIsInputProjection(t *testing.T) {
	cell := nn.NewFactorizedCell(nin, nstate, cpu.New())
	assert.Nil(t, cell.Factor())
	assert.Nil(t, cell.LastState())

	xs := randn(2, seqLen, nin)
	_, err := cell.Update(randn(1, nstate), xs)
	require.NoError(t, err)

	assert.Equal(t, cell.WXH().Forward(xs).Data(), cell.Factor().Data())
}

func TestElmanCell_FactorizeCopiesWeights(t *testing.T) {
	elman := nn.NewElmanCell(nin, nstate, cpu.New())
	factorized, err := elman.Factorize()
	require.NoError(t, err)

	assert.Equal(t, elman.WHH().Weight().Tensor().Data(), factorized.WHH().Weight().Tensor().Data())
	assert.NotSame(t, elman.WHH().Weight().Tensor(), factorized.WHH().Weight().Tensor())

	elman.WHH().Weight().Tensor().Data()[0] += 1
	assert.NotEqual(t, elman.WHH().Weight().Tensor().Data()[0], factorized.WHH().Weight().Tensor().Data()[0])
}

func TestFactorizedCell_ShapeErrors(t *testing.T) {
	cell := nn.NewFactorizedCell(nin, nstate, cpu.New())
	assert.Equal(t, nn.SequenceCell, cell.Kind())

	tests := []struct {
		name      string
		state, xs *vec
	}{
		{"InputWidth", randn(1, nstate), randn(2, seqLen, nin+1)},
		{"SingleElement", randn(1, nstate), randn(2, nin)},
		{"BatchedState", randn(1, 2, nstate), randn(2, seqLen, nin)},
		{"NilState", nil, randn(2, seqLen, nin)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := cell.Update(tt.state, tt.xs)
			var shapeErr *tensor.ShapeError
			assert.ErrorAs(t, err, &shapeErr)
		})
	}
	assert.Nil(t, cell.Factor(), "failed calls leave no cache")
}

func TestCellKind_String(t *testing.T) {
	assert.Equal(t, "element cell", nn.ElementCell.String())
	assert.Equal(t, "sequence cell", nn.SequenceCell.String())
	assert.Equal(t, "unknown cell kind", nn.CellKind(9).String())
}

func BenchmarkElmanLoop(b *testing.B) {
	cell := nn.NewElmanCell(64, 128, cpu.New())
	state, xs := randn(1, 128), randn(2, 256, 64)
	steps := xs.Unbind(0)
	b.ResetTimer()
	for b.Loop() {
		s := state
		for _, x := range steps {
			s, _ = cell.Update(s, x)
		}
	}
}

func BenchmarkFactorizedCell(b *testing.B) {
	cell := nn.NewFactorizedCell(64, 128, cpu.New())
	state, xs := randn(1, 128), randn(2, 256, 64)
	b.ResetTimer()
	for b.Loop() {
		_, _ = cell.Update(state, xs)
	}
}
