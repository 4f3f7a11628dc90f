package nn

import (
	"sync"

	"github.com/born-ml/recurrent/internal/tensor"
)

// FactorizedCell runs the ElmanCell recurrence over a whole sequence. The
// input projection W_xh @ x is computed for every step in one matrix
// multiply, leaving only W_hh @ state inside the serial loop.
//
// Update(state (nstate), xs (T, nin)) returns the final state as (1, nstate).
type FactorizedCell[B tensor.Backend] struct {
	nin        int
	nstate     int
	win        *Linear[B]
	wn         *Linear[B]
	activation Module[B]

	mu     sync.Mutex
	factor *tensor.Tensor[float32, B]
	last   *tensor.Tensor[float32, B]
}

// NewFactorizedCell creates a FactorizedCell with Tanh activation unless
// overridden.
func NewFactorizedCell[B tensor.Backend](nin, nstate int, backend B, opts ...CellOption[B]) *FactorizedCell[B] {
	cfg := newCellConfig(opts)
	return &FactorizedCell[B]{
		nin:        nin,
		nstate:     nstate,
		win:        NewLinear(nin, nstate, backend, WithoutBias()),
		wn:         NewLinear(nstate, nstate, backend),
		activation: cfg.activation,
	}
}

// Update consumes the whole sequence xs and returns the final state with
// shape (1, nstate).
func (c *FactorizedCell[B]) Update(state, xs *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	if state == nil || xs == nil {
		return nil, &tensor.ShapeError{Op: "FactorizedCell.Update", Want: tensor.Shape{c.nstate}}
	}
	if err := tensor.CheckShape("FactorizedCell.Update state", state.Shape(), tensor.Shape{c.nstate}); err != nil {
		return nil, err
	}
	if err := tensor.CheckShape("FactorizedCell.Update input", xs.Shape(), tensor.Shape{tensor.AnyDim, c.nin}); err != nil {
		return nil, err
	}

	factor := c.win.Forward(xs)
	for _, f := range factor.Unbind(0) {
		state = c.activation.Forward(c.wn.Forward(state).Add(f))
	}

	c.mu.Lock()
	c.factor, c.last = factor, state
	c.mu.Unlock()

	return state.Reshape(1, c.nstate), nil
}

// Factor returns the (T, nstate) input projection of the latest Update, or
// nil before the first call.
func (c *FactorizedCell[B]) Factor() *tensor.Tensor[float32, B] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.factor
}

// LastState returns the (nstate) final state of the latest Update, or nil
// before the first call.
func (c *FactorizedCell[B]) LastState() *tensor.Tensor[float32, B] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Kind returns SequenceCell.
func (c *FactorizedCell[B]) Kind() CellKind { return SequenceCell }

// InputSize returns nin.
func (c *FactorizedCell[B]) InputSize() int { return c.nin }

// StateSize returns nstate.
func (c *FactorizedCell[B]) StateSize() int { return c.nstate }

// Parameters returns [W_xh, W_hh, b].
func (c *FactorizedCell[B]) Parameters() []*Parameter[B] {
	return append(c.win.Parameters(), c.wn.Parameters()...)
}

// WXH returns the input-to-hidden layer.
func (c *FactorizedCell[B]) WXH() *Linear[B] { return c.win }

// WHH returns the hidden-to-hidden layer.
func (c *FactorizedCell[B]) WHH() *Linear[B] { return c.wn }
