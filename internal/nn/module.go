// Package nn implements the layers, recurrent cells and sequence drivers.
//
// Building blocks:
//   - Module: Forward + Parameters, the interface every layer satisfies
//   - Parameter: a named weight tensor owned by one layer
//   - Linear: affine transform with optional bias
//   - Activations: Tanh, Sigmoid, ReLU, and Func for pure tensor functions
//   - Sequential: chains modules
//   - Embedding: token id -> vector lookup
//
// Recurrence:
//   - Cell: SimpleCell, ElmanCell, FactorizedCell
//   - Drivers: RNN (sequential fold), BatchedRNN (vectorized over a batch
//     axis), FactorizedRNN (whole-sequence cell, final output only)
package nn

import (
	"github.com/born-ml/recurrent/internal/tensor"
)

// Module is the base interface for all layers.
//
//	model := nn.NewSequential[B](
//	    nn.NewLinear(13, 10, backend),
//	    nn.NewTanh[B](),
//	)
type Module[B tensor.Backend] interface {
	// Forward computes the output for input. Shape violations panic; the
	// recurrent cells validate user-supplied shapes before calling layers.
	Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]

	// Parameters returns the weights of this module and its children.
	// Modules without weights return nil.
	Parameters() []*Parameter[B]
}

// Stateful is implemented by modules whose weights can be exported and
// loaded by name. Loading copies values; no tensor is shared.
type Stateful interface {
	StateDict() map[string]*tensor.RawTensor
	LoadStateDict(stateDict map[string]*tensor.RawTensor) error
}
