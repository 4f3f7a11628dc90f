package nn

import (
	"fmt"

	"github.com/born-ml/recurrent/internal/tensor"
)

// Linear implements the affine transform y = x @ W.T + b.
//
//   - W has shape [out_features, in_features] (Xavier initialized)
//   - b has shape [out_features] (zeros), absent when built WithoutBias
//   - x is [in_features] or [batch, in_features]; y has the matching rank
//
//	layer := nn.NewLinear(3, 10, backend, nn.WithoutBias())
//	y := layer.Forward(x) // (3) -> (10)
type Linear[B tensor.Backend] struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter[B]
	bias        *Parameter[B]
}

// LinearOption configures NewLinear.
type LinearOption func(*linearConfig)

type linearConfig struct {
	bias bool
}

// WithoutBias builds a Linear layer with no bias term.
func WithoutBias() LinearOption {
	return func(c *linearConfig) {
		c.bias = false
	}
}

// NewLinear creates a Linear layer with Xavier weights and zero bias.
func NewLinear[B tensor.Backend](inFeatures, outFeatures int, backend B, opts ...LinearOption) *Linear[B] {
	cfg := linearConfig{bias: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	l := &Linear[B]{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      NewParameter("weight", Xavier(inFeatures, outFeatures, tensor.Shape{outFeatures, inFeatures}, backend)),
	}
	if cfg.bias {
		l.bias = NewParameter("bias", Zeros(tensor.Shape{outFeatures}, backend))
	}
	return l
}

// Forward computes x @ W.T + b for x of shape [in] or [batch, in].
// Panics on any other shape.
func (l *Linear[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := input.Shape()
	switch {
	case len(shape) == 1 && shape[0] == l.inFeatures:
		return l.Forward(input.Reshape(1, l.inFeatures)).Reshape(l.outFeatures)
	case len(shape) == 2 && shape[1] == l.inFeatures:
	default:
		panic(fmt.Sprintf("Linear.Forward: expected input [%d] or [batch, %d], got shape %v",
			l.inFeatures, l.inFeatures, shape))
	}

	output := input.MatMul(l.weight.Tensor().T())
	if l.bias != nil {
		output = output.Add(l.bias.Tensor())
	}
	return output
}

// Parameters returns [weight, bias], or [weight] without bias.
func (l *Linear[B]) Parameters() []*Parameter[B] {
	if l.bias != nil {
		return []*Parameter[B]{l.weight, l.bias}
	}
	return []*Parameter[B]{l.weight}
}

// Weight returns the weight parameter.
func (l *Linear[B]) Weight() *Parameter[B] {
	return l.weight
}

// Bias returns the bias parameter, or nil.
func (l *Linear[B]) Bias() *Parameter[B] {
	return l.bias
}

// InFeatures returns the number of input features.
func (l *Linear[B]) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the number of output features.
func (l *Linear[B]) OutFeatures() int {
	return l.outFeatures
}

// StateDict returns the layer's raw tensors keyed by "weight" and "bias".
func (l *Linear[B]) StateDict() map[string]*tensor.RawTensor {
	stateDict := map[string]*tensor.RawTensor{"weight": l.weight.Tensor().Raw()}
	if l.bias != nil {
		stateDict["bias"] = l.bias.Tensor().Raw()
	}
	return stateDict
}

// LoadStateDict copies weights (and bias, when the layer has one) into the
// layer after validating their shapes and dtypes.
func (l *Linear[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	if err := loadInto(stateDict, "weight", l.weight, tensor.Shape{l.outFeatures, l.inFeatures}); err != nil {
		return err
	}
	if l.bias == nil {
		return nil
	}
	return loadInto(stateDict, "bias", l.bias, tensor.Shape{l.outFeatures})
}

func loadInto[B tensor.Backend](stateDict map[string]*tensor.RawTensor, name string, p *Parameter[B], want tensor.Shape) error {
	raw, ok := stateDict[name]
	if !ok {
		return fmt.Errorf("missing %s in state dict", name)
	}
	if raw.DType() != tensor.Float32 {
		return fmt.Errorf("%s dtype mismatch: expected float32, got %v", name, raw.DType())
	}
	if err := tensor.CheckShape("load "+name, raw.Shape(), want); err != nil {
		return err
	}
	copy(p.Tensor().Data(), raw.AsFloat32())
	return nil
}
