package tensor

// Backend performs the computation behind Tensor operations.
//
// Every method returns a newly allocated RawTensor and leaves its operands
// untouched. Shape violations are programmer errors and panic; callers that
// accept user-supplied shapes validate them first (see CheckShape).
//
// Activation functions are optional capabilities discovered by the nn
// package through interface assertions (TanhBackend and friends).
type Backend interface {
	// Element-wise binary operations with NumPy broadcasting.
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// MatMul multiplies 2D tensors: (M, K) @ (K, N) -> (M, N).
	MatMul(a, b *RawTensor) *RawTensor

	// Shape operations.
	Reshape(t *RawTensor, newShape Shape) *RawTensor
	Transpose(t *RawTensor, axes ...int) *RawTensor

	// Manipulation operations.
	Cat(tensors []*RawTensor, dim int) *RawTensor // concatenate along dimension
	Select(x *RawTensor, dim, index int) *RawTensor // take one slice, dropping dim
	Unsqueeze(x *RawTensor, dim int) *RawTensor   // add dimension of size 1
	Squeeze(x *RawTensor, dim int) *RawTensor     // remove dimension of size 1

	// Metadata.
	Name() string
	Device() Device
}
