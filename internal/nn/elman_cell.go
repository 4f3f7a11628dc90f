package nn

import (
	"github.com/born-ml/recurrent/internal/tensor"
)

// ElmanCell is the two-weight recurrence
//
//	state' = activation(W_hh @ state + b + W_xh @ x)
//
// with a biased hidden-to-hidden layer and an unbiased input layer.
type ElmanCell[B tensor.Backend] struct {
	nin        int
	nstate     int
	wxh        *Linear[B]
	whh        *Linear[B]
	activation Module[B]
}

// NewElmanCell creates an ElmanCell with Tanh activation unless overridden.
func NewElmanCell[B tensor.Backend](nin, nstate int, backend B, opts ...CellOption[B]) *ElmanCell[B] {
	cfg := newCellConfig(opts)
	return &ElmanCell[B]{
		nin:        nin,
		nstate:     nstate,
		wxh:        NewLinear(nin, nstate, backend, WithoutBias()),
		whh:        NewLinear(nstate, nstate, backend),
		activation: cfg.activation,
	}
}

// Update computes the next state. The hidden term is added before the
// input term.
func (c *ElmanCell[B]) Update(state, x *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	if err := checkElementArgs("ElmanCell.Update", state, x, c.nin, c.nstate); err != nil {
		return nil, err
	}
	return c.activation.Forward(c.whh.Forward(state).Add(c.wxh.Forward(x))), nil
}

// Kind returns ElementCell.
func (c *ElmanCell[B]) Kind() CellKind { return ElementCell }

// InputSize returns nin.
func (c *ElmanCell[B]) InputSize() int { return c.nin }

// StateSize returns nstate.
func (c *ElmanCell[B]) StateSize() int { return c.nstate }

// Parameters returns [W_xh, W_hh, b].
func (c *ElmanCell[B]) Parameters() []*Parameter[B] {
	return append(c.wxh.Parameters(), c.whh.Parameters()...)
}

// WXH returns the input-to-hidden layer.
func (c *ElmanCell[B]) WXH() *Linear[B] { return c.wxh }

// WHH returns the hidden-to-hidden layer.
func (c *ElmanCell[B]) WHH() *Linear[B] { return c.whh }

// Factorize returns a FactorizedCell computing the same recurrence over a
// whole sequence. Weights are copied; later changes to either cell do not
// affect the other.
func (c *ElmanCell[B]) Factorize() (*FactorizedCell[B], error) {
	backend := c.whh.Weight().Tensor().Backend()
	fc := NewFactorizedCell(c.nin, c.nstate, backend, WithActivation(c.activation))
	if err := fc.win.LoadStateDict(c.wxh.StateDict()); err != nil {
		return nil, err
	}
	if err := fc.wn.LoadStateDict(c.whh.StateDict()); err != nil {
		return nil, err
	}
	return fc, nil
}
