package nn

import (
	"github.com/born-ml/recurrent/internal/tensor"
)

// ReLUBackend is an interface for backends that support ReLU activation.
type ReLUBackend interface {
	ReLU(*tensor.RawTensor) *tensor.RawTensor
}

// SigmoidBackend is an interface for backends that support Sigmoid activation.
type SigmoidBackend interface {
	Sigmoid(*tensor.RawTensor) *tensor.RawTensor
}

// TanhBackend is an interface for backends that support Tanh activation.
type TanhBackend interface {
	Tanh(*tensor.RawTensor) *tensor.RawTensor
}

// ReLU applies f(x) = max(0, x) element-wise.
//
//	relu := nn.NewReLU[Backend]()
//	output := relu.Forward(input)
type ReLU[B tensor.Backend] struct{}

// NewReLU creates a new ReLU activation module.
func NewReLU[B tensor.Backend]() *ReLU[B] {
	return &ReLU[B]{}
}

// Forward applies ReLU activation: f(x) = max(0, x).
func (r *ReLU[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	backend := input.Backend()
	if reluBackend, ok := any(backend).(ReLUBackend); ok {
		return tensor.New[float32, B](reluBackend.ReLU(input.Raw()), backend)
	}
	panic("ReLU: backend must implement ReLU operation")
}

// Parameters returns nil (ReLU has no parameters).
func (r *ReLU[B]) Parameters() []*Parameter[B] {
	return nil
}

// Sigmoid applies σ(x) = 1 / (1 + exp(-x)) element-wise.
type Sigmoid[B tensor.Backend] struct{}

// NewSigmoid creates a new Sigmoid activation module.
func NewSigmoid[B tensor.Backend]() *Sigmoid[B] {
	return &Sigmoid[B]{}
}

// Forward applies Sigmoid activation.
func (s *Sigmoid[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	backend := input.Backend()
	if sigmoidBackend, ok := any(backend).(SigmoidBackend); ok {
		return tensor.New[float32, B](sigmoidBackend.Sigmoid(input.Raw()), backend)
	}
	panic("Sigmoid: backend must implement Sigmoid operation")
}

// Parameters returns nil (Sigmoid has no parameters).
func (s *Sigmoid[B]) Parameters() []*Parameter[B] {
	return nil
}

// Tanh applies the hyperbolic tangent element-wise. Values land in (-1, 1);
// it is the default recurrent activation.
//
//	tanh := nn.NewTanh[Backend]()
//	output := tanh.Forward(input)
type Tanh[B tensor.Backend] struct{}

// NewTanh creates a new Tanh activation module.
func NewTanh[B tensor.Backend]() *Tanh[B] {
	return &Tanh[B]{}
}

// Forward applies Tanh activation.
func (t *Tanh[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	backend := input.Backend()
	if tanhBackend, ok := any(backend).(TanhBackend); ok {
		return tensor.New[float32, B](tanhBackend.Tanh(input.Raw()), backend)
	}
	panic("Tanh: backend must implement Tanh operation")
}

// Parameters returns nil (Tanh has no parameters).
func (t *Tanh[B]) Parameters() []*Parameter[B] {
	return nil
}
