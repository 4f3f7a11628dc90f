package nn

import (
	"github.com/born-ml/recurrent/internal/tensor"
)

// OutputLayer maps a state (nstate) or (B, nstate) to the per-step output.
// *Linear and OutputFunc implement it.
type OutputLayer[B tensor.Backend] interface {
	Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]
}

// featureSized is implemented by output layers with a fixed input width;
// drivers check it against the cell's state size.
type featureSized interface {
	InFeatures() int
}

// NewOutputLayer creates the standard Linear(nstate, nout) readout.
func NewOutputLayer[B tensor.Backend](nstate, nout int, backend B) *Linear[B] {
	return NewLinear(nstate, nout, backend)
}

// OutputFunc adapts a pure tensor function to OutputLayer and Module.
type OutputFunc[B tensor.Backend] func(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]

// Forward calls f.
func (f OutputFunc[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return f(x)
}

// Parameters returns nil.
func (f OutputFunc[B]) Parameters() []*Parameter[B] {
	return nil
}

// Identity returns the state unchanged as the output.
func Identity[B tensor.Backend]() OutputFunc[B] {
	return func(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
		return x
	}
}
