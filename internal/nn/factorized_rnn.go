package nn

import (
	"fmt"

	"github.com/born-ml/recurrent/internal/tensor"
)

// FactorizedRNN drives a sequence cell. Unlike RNN it yields only the output
// for the final state, not one output per step.
type FactorizedRNN[B tensor.Backend] struct {
	cell   Cell[B]
	output OutputLayer[B]
}

// NewFactorizedRNN composes a sequence cell with an output layer. It fails
// with *ConstructionError for element cells or mismatched widths.
func NewFactorizedRNN[B tensor.Backend](cell Cell[B], output OutputLayer[B]) (*FactorizedRNN[B], error) {
	if err := validateComposition(cell, output, SequenceCell); err != nil {
		return nil, err
	}
	return &FactorizedRNN[B]{cell: cell, output: output}, nil
}

// Cell returns the recurrent cell.
func (r *FactorizedRNN[B]) Cell() Cell[B] { return r.cell }

// Forward runs xs (T, nin) from state (nstate) in a single cell update and
// returns the output (1, nout) for the final state together with the final
// state (nstate).
func (r *FactorizedRNN[B]) Forward(xs, state *tensor.Tensor[float32, B]) (output, final *tensor.Tensor[float32, B], err error) {
	states, err := r.cell.Update(state, xs)
	if err != nil {
		return nil, nil, fmt.Errorf("factorized rnn forward: %w", err)
	}
	if err := tensor.CheckShape("factorized rnn forward", states.Shape(), tensor.Shape{tensor.AnyDim, r.cell.StateSize()}); err != nil {
		return nil, nil, err
	}

	last := states.Select(0, states.Shape()[0]-1)
	return r.output.Forward(states), last, nil
}
