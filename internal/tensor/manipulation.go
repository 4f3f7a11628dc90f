package tensor

// Cat concatenates tensors along dim. All shapes must agree except along
// dim. Negative dims count from the end.
//
//	a := tensor.Zeros[float32](Shape{3}, backend)
//	b := tensor.Zeros[float32](Shape{10}, backend)
//	c := tensor.Cat([]*Tensor[float32, B]{a, b}, 0) // (13)
func Cat[T DType, B Backend](tensors []*Tensor[T, B], dim int) *Tensor[T, B] {
	if len(tensors) == 0 {
		panic("cat: at least one tensor required")
	}
	if len(tensors) == 1 {
		return tensors[0].Clone()
	}

	backend := tensors[0].backend
	raws := make([]*RawTensor, len(tensors))
	for i, t := range tensors {
		raws[i] = t.raw
	}
	return New[T, B](backend.Cat(raws, dim), backend)
}

// Stack joins equally shaped tensors along a new dimension dim.
//
//	steps := []*Tensor[float32, B]{s0, s1, s2} // each (4)
//	tensor.Stack(steps, 0)                     // (3, 4)
func Stack[T DType, B Backend](tensors []*Tensor[T, B], dim int) *Tensor[T, B] {
	if len(tensors) == 0 {
		panic("stack: at least one tensor required")
	}
	expanded := make([]*Tensor[T, B], len(tensors))
	for i, t := range tensors {
		if !t.Shape().Equal(tensors[0].Shape()) {
			panic("stack: all tensors must have the same shape")
		}
		expanded[i] = t.Unsqueeze(dim)
	}
	if len(expanded) == 1 {
		return expanded[0]
	}
	return Cat(expanded, dim)
}

// Select returns the index-th slice along dim, with dim removed.
//
//	x := tensor.Zeros[float32](Shape{7, 3}, backend)
//	x.Select(0, 2) // (3), the third row
func (t *Tensor[T, B]) Select(dim, index int) *Tensor[T, B] {
	return New[T, B](t.backend.Select(t.raw, dim, index), t.backend)
}

// Unbind splits the tensor into all of its slices along dim, in order.
// It is the inverse of Stack.
func (t *Tensor[T, B]) Unbind(dim int) []*Tensor[T, B] {
	d, err := NormalizeDim(dim, len(t.Shape()))
	if err != nil {
		panic("unbind: " + err.Error())
	}
	parts := make([]*Tensor[T, B], t.Shape()[d])
	for i := range parts {
		parts[i] = t.Select(d, i)
	}
	return parts
}

// Unsqueeze inserts a dimension of size 1 at dim.
//
//	x := tensor.Zeros[float32](Shape{10}, backend)
//	x.Unsqueeze(0) // (1, 10)
func (t *Tensor[T, B]) Unsqueeze(dim int) *Tensor[T, B] {
	return New[T, B](t.backend.Unsqueeze(t.raw, dim), t.backend)
}

// Squeeze removes the size-1 dimension at dim. Panics if its size is not 1.
func (t *Tensor[T, B]) Squeeze(dim int) *Tensor[T, B] {
	return New[T, B](t.backend.Squeeze(t.raw, dim), t.backend)
}
