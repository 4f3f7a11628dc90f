package nn

import (
	"github.com/born-ml/recurrent/internal/tensor"
)

// CellKind tells a driver what the x argument of Cell.Update is.
type CellKind int

const (
	// ElementCell cells consume one sequence element per Update.
	ElementCell CellKind = iota
	// SequenceCell cells consume the whole (T, nin) sequence in one Update.
	SequenceCell
)

func (k CellKind) String() string {
	switch k {
	case ElementCell:
		return "element cell"
	case SequenceCell:
		return "sequence cell"
	default:
		return "unknown cell kind"
	}
}

// Cell is a recurrent update rule: Update(state, x) returns the next state.
// Cells never mutate their arguments and hold no per-call state that affects
// later calls, so one cell may serve concurrent callers.
//
// Element cells accept state (nstate) with x (nin), or state (B, nstate) with
// x (B, nin). Any other shape is reported as a *tensor.ShapeError.
type Cell[B tensor.Backend] interface {
	Update(state, x *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error)
	Kind() CellKind
	InputSize() int
	StateSize() int
	Parameters() []*Parameter[B]
}

// CellOption configures a cell constructor.
type CellOption[B tensor.Backend] func(*cellConfig[B])

type cellConfig[B tensor.Backend] struct {
	activation Module[B]
}

// WithActivation replaces the default Tanh activation. The module must be a
// pure element-wise function.
func WithActivation[B tensor.Backend](activation Module[B]) CellOption[B] {
	return func(c *cellConfig[B]) {
		c.activation = activation
	}
}

func newCellConfig[B tensor.Backend](opts []CellOption[B]) cellConfig[B] {
	cfg := cellConfig[B]{activation: NewTanh[B]()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// checkElementArgs validates the arguments of an element cell update.
func checkElementArgs[B tensor.Backend](op string, state, x *tensor.Tensor[float32, B], nin, nstate int) error {
	if state == nil || x == nil {
		return &tensor.ShapeError{Op: op, Want: tensor.Shape{nstate}, Got: nil}
	}

	stateShape := state.Shape()
	switch len(stateShape) {
	case 1:
		if err := tensor.CheckShape(op+" state", stateShape, tensor.Shape{nstate}); err != nil {
			return err
		}
		return tensor.CheckShape(op+" input", x.Shape(), tensor.Shape{nin})
	case 2:
		if err := tensor.CheckShape(op+" state", stateShape, tensor.Shape{tensor.AnyDim, nstate}); err != nil {
			return err
		}
		return tensor.CheckShape(op+" input", x.Shape(), tensor.Shape{stateShape[0], nin})
	default:
		return &tensor.ShapeError{Op: op + " state", Want: tensor.Shape{nstate}, Got: stateShape}
	}
}
