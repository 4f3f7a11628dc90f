package nn

import (
	"fmt"

	"github.com/born-ml/recurrent/internal/functional"
	"github.com/born-ml/recurrent/internal/tensor"
)

// RNN drives an element cell over a time-major sequence and applies the
// output layer at every step.
//
//	cell := nn.NewElmanCell(3, 10, backend)
//	rnn, err := nn.NewRNN[B](cell, nn.NewOutputLayer(10, 4, backend))
//	outputs, final, err := rnn.Forward(xs, state) // (T, 3), (10) -> (T, 4), (10)
type RNN[B tensor.Backend] struct {
	cell   Cell[B]
	output OutputLayer[B]
}

// NewRNN composes cell and output. It fails with *ConstructionError if the
// cell is not an element cell or the output width does not match the
// cell's state size.
func NewRNN[B tensor.Backend](cell Cell[B], output OutputLayer[B]) (*RNN[B], error) {
	if err := validateComposition(cell, output, ElementCell); err != nil {
		return nil, err
	}
	return &RNN[B]{cell: cell, output: output}, nil
}

// Cell returns the recurrent cell.
func (r *RNN[B]) Cell() Cell[B] { return r.cell }

// Output returns the output layer.
func (r *RNN[B]) Output() OutputLayer[B] { return r.output }

// Step advances one element: it returns the next state and its output.
func (r *RNN[B]) Step(state, x *tensor.Tensor[float32, B]) (next, output *tensor.Tensor[float32, B], err error) {
	next, err = r.cell.Update(state, x)
	if err != nil {
		return nil, nil, err
	}
	return next, r.output.Forward(next), nil
}

// Forward folds Step over xs from first to last element.
//
//   - xs (T, nin) with state (nstate) gives outputs (T, nout)
//   - xs (T, B, nin) with state (B, nstate) gives outputs (T, B, nout)
//
// The final state has the shape of the initial state.
func (r *RNN[B]) Forward(xs, state *tensor.Tensor[float32, B]) (outputs, final *tensor.Tensor[float32, B], err error) {
	if err := r.checkSequence(xs, state); err != nil {
		return nil, nil, err
	}

	final, outs, err := functional.Scan(r.Step, state, xs.Unbind(0))
	if err != nil {
		return nil, nil, fmt.Errorf("rnn forward: %w", err)
	}
	return tensor.Stack(outs, 0), final, nil
}

// ForwardBatchMajor runs a batch-major sequence x (B, T, nin) from state
// (B, nstate). Outputs are time-major: (T, B, nout).
func (r *RNN[B]) ForwardBatchMajor(x, state *tensor.Tensor[float32, B]) (outputs, final *tensor.Tensor[float32, B], err error) {
	if x == nil {
		return nil, nil, &tensor.ShapeError{Op: "rnn forward batch-major", Want: r.batchMajorShape()}
	}
	if err := tensor.CheckShape("rnn forward batch-major", x.Shape(), r.batchMajorShape()); err != nil {
		return nil, nil, err
	}
	return r.Forward(x.Transpose(1, 0, 2), state)
}

func (r *RNN[B]) batchMajorShape() tensor.Shape {
	return tensor.Shape{tensor.AnyDim, tensor.AnyDim, r.cell.InputSize()}
}

// checkSequence rejects malformed inputs before any step runs.
func (r *RNN[B]) checkSequence(xs, state *tensor.Tensor[float32, B]) error {
	const op = "rnn forward"
	nin, nstate := r.cell.InputSize(), r.cell.StateSize()
	if xs == nil || state == nil {
		return &tensor.ShapeError{Op: op, Want: tensor.Shape{tensor.AnyDim, nin}}
	}

	shape := xs.Shape()
	switch len(shape) {
	case 2:
		if err := tensor.CheckShape(op+" input", shape, tensor.Shape{tensor.AnyDim, nin}); err != nil {
			return err
		}
		return tensor.CheckShape(op+" state", state.Shape(), tensor.Shape{nstate})
	case 3:
		if err := tensor.CheckShape(op+" input", shape, tensor.Shape{tensor.AnyDim, tensor.AnyDim, nin}); err != nil {
			return err
		}
		return tensor.CheckShape(op+" state", state.Shape(), tensor.Shape{shape[1], nstate})
	default:
		return &tensor.ShapeError{Op: op + " input", Want: tensor.Shape{tensor.AnyDim, nin}, Got: shape.Clone()}
	}
}

func validateComposition[B tensor.Backend](cell Cell[B], output OutputLayer[B], want CellKind) error {
	if cell == nil {
		return constructionErrorf("cell is nil")
	}
	if output == nil {
		return constructionErrorf("output layer is nil")
	}
	if kind := cell.Kind(); kind != want {
		return constructionErrorf("driver needs an %v, got %v", want, kind)
	}
	if sized, ok := output.(featureSized); ok && sized.InFeatures() != cell.StateSize() {
		return constructionErrorf("output layer expects %d input features, cell state size is %d",
			sized.InFeatures(), cell.StateSize())
	}
	return nil
}
