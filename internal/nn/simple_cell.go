package nn

import (
	"github.com/born-ml/recurrent/internal/tensor"
)

// SimpleCell concatenates [x ; state] and feeds it through
// Linear(nin+nstate, nstate), Linear(nstate, nstate) and the activation.
type SimpleCell[B tensor.Backend] struct {
	nin    int
	nstate int
	op     *Sequential[B]
}

// NewSimpleCell creates a SimpleCell with Tanh activation unless overridden.
func NewSimpleCell[B tensor.Backend](nin, nstate int, backend B, opts ...CellOption[B]) *SimpleCell[B] {
	cfg := newCellConfig(opts)
	return &SimpleCell[B]{
		nin:    nin,
		nstate: nstate,
		op: NewSequential[B](
			NewLinear(nin+nstate, nstate, backend),
			NewLinear(nstate, nstate, backend),
			cfg.activation,
		),
	}
}

// Update computes the next state from state (nstate) and x (nin), or their
// row-batched forms.
func (c *SimpleCell[B]) Update(state, x *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	if err := checkElementArgs("SimpleCell.Update", state, x, c.nin, c.nstate); err != nil {
		return nil, err
	}
	joined := tensor.Cat([]*tensor.Tensor[float32, B]{x, state}, -1)
	return c.op.Forward(joined), nil
}

// Kind returns ElementCell.
func (c *SimpleCell[B]) Kind() CellKind { return ElementCell }

// InputSize returns nin.
func (c *SimpleCell[B]) InputSize() int { return c.nin }

// StateSize returns nstate.
func (c *SimpleCell[B]) StateSize() int { return c.nstate }

// Parameters returns the weights of both linear layers.
func (c *SimpleCell[B]) Parameters() []*Parameter[B] {
	return c.op.Parameters()
}

// Op returns the underlying Sequential stack.
func (c *SimpleCell[B]) Op() *Sequential[B] {
	return c.op
}
