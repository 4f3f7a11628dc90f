package cpu

import (
	"fmt"

	"github.com/born-ml/recurrent/internal/tensor"
)

// The layout kernels below move whole elements as byte runs, so they are
// independent of the element type.

// Reshape returns a copy of t with a new shape of equal element count.
func (cpu *CPUBackend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	if err := newShape.Validate(); err != nil {
		panic(fmt.Sprintf("reshape: invalid shape: %v", err))
	}
	if t.NumElements() != newShape.NumElements() {
		panic(fmt.Sprintf("reshape: incompatible shapes: %v -> %v (different number of elements)",
			t.Shape(), newShape))
	}
	return cpu.copyAs("reshape", t, newShape)
}

// Transpose permutes dimensions. With no axes it reverses them.
func (cpu *CPUBackend) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	shape := t.Shape()
	ndim := len(shape)

	if len(axes) == 0 {
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}
	if len(axes) != ndim {
		panic(fmt.Sprintf("transpose: axes length %d != ndim %d", len(axes), ndim))
	}

	seen := make([]bool, ndim)
	newShape := make(tensor.Shape, ndim)
	for i, ax := range axes {
		if ax < 0 || ax >= ndim {
			panic(fmt.Sprintf("transpose: invalid axis %d for %dD tensor", ax, ndim))
		}
		if seen[ax] {
			panic(fmt.Sprintf("transpose: duplicate axis %d", ax))
		}
		seen[ax] = true
		newShape[i] = shape[ax]
	}

	result := cpu.alloc("transpose", newShape, t.DType())

	es := t.DType().Size()
	src, dst := t.Data(), result.Data()
	srcStrides := t.Strides()
	dstStrides := result.Strides()

	for out := 0; out < result.NumElements(); out++ {
		rem, in := out, 0
		for i, stride := range dstStrides {
			coord := rem / stride
			rem %= stride
			in += coord * srcStrides[axes[i]]
		}
		copy(dst[out*es:(out+1)*es], src[in*es:(in+1)*es])
	}

	return result
}

// Cat concatenates tensors along dim.
func (cpu *CPUBackend) Cat(tensors []*tensor.RawTensor, dim int) *tensor.RawTensor {
	if len(tensors) == 0 {
		panic("cat: at least one tensor required")
	}

	first := tensors[0].Shape()
	d, err := tensor.NormalizeDim(dim, len(first))
	if err != nil {
		panic(fmt.Sprintf("cat: %v", err))
	}

	outShape := first.Clone()
	outShape[d] = 0
	for i, t := range tensors {
		shape := t.Shape()
		if len(shape) != len(first) || t.DType() != tensors[0].DType() {
			panic(fmt.Sprintf("cat: tensor %d has shape %v %s, want rank %d %s",
				i, shape, t.DType(), len(first), tensors[0].DType()))
		}
		for j := range shape {
			if j != d && shape[j] != first[j] {
				panic(fmt.Sprintf("cat: tensor %d has shape %v, incompatible with %v along dim %d", i, shape, first, d))
			}
		}
		outShape[d] += shape[d]
	}

	result := cpu.alloc("cat", outShape, tensors[0].DType())

	es := tensors[0].DType().Size()
	outer := first[:d].NumElements()
	inner := first[d+1:].NumElements()
	dst := result.Data()
	pos := 0

	for o := 0; o < outer; o++ {
		for _, t := range tensors {
			chunk := t.Shape()[d] * inner * es
			copy(dst[pos:pos+chunk], t.Data()[o*chunk:(o+1)*chunk])
			pos += chunk
		}
	}

	return result
}

// Select returns the index-th slice along dim, with dim removed.
func (cpu *CPUBackend) Select(x *tensor.RawTensor, dim, index int) *tensor.RawTensor {
	shape := x.Shape()
	d, err := tensor.NormalizeDim(dim, len(shape))
	if err != nil {
		panic(fmt.Sprintf("select: %v", err))
	}
	if index < 0 || index >= shape[d] {
		panic(fmt.Sprintf("select: index %d out of bounds for dimension %d (size %d)", index, d, shape[d]))
	}

	outShape := make(tensor.Shape, 0, len(shape)-1)
	outShape = append(outShape, shape[:d]...)
	outShape = append(outShape, shape[d+1:]...)

	result := cpu.alloc("select", outShape, x.DType())

	es := x.DType().Size()
	outer := shape[:d].NumElements()
	chunk := shape[d+1:].NumElements() * es
	src, dst := x.Data(), result.Data()

	for o := 0; o < outer; o++ {
		from := (o*shape[d] + index) * chunk
		copy(dst[o*chunk:(o+1)*chunk], src[from:from+chunk])
	}

	return result
}

// Unsqueeze inserts a size-1 dimension at dim (in [-rank-1, rank]).
func (cpu *CPUBackend) Unsqueeze(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := x.Shape()
	d, err := tensor.NormalizeDim(dim, len(shape)+1)
	if err != nil {
		panic(fmt.Sprintf("unsqueeze: %v", err))
	}

	newShape := make(tensor.Shape, 0, len(shape)+1)
	newShape = append(newShape, shape[:d]...)
	newShape = append(newShape, 1)
	newShape = append(newShape, shape[d:]...)
	return cpu.copyAs("unsqueeze", x, newShape)
}

// Squeeze removes the size-1 dimension at dim.
func (cpu *CPUBackend) Squeeze(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := x.Shape()
	d, err := tensor.NormalizeDim(dim, len(shape))
	if err != nil {
		panic(fmt.Sprintf("squeeze: %v", err))
	}
	if shape[d] != 1 {
		panic(fmt.Sprintf("squeeze: dimension %d has size %d, not 1", d, shape[d]))
	}

	newShape := make(tensor.Shape, 0, len(shape)-1)
	newShape = append(newShape, shape[:d]...)
	newShape = append(newShape, shape[d+1:]...)
	return cpu.copyAs("squeeze", x, newShape)
}

func (cpu *CPUBackend) alloc(op string, shape tensor.Shape, dtype tensor.DataType) *tensor.RawTensor {
	result, err := tensor.NewRaw(shape, dtype, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("%s: %v", op, err))
	}
	return result
}

func (cpu *CPUBackend) copyAs(op string, x *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	result := cpu.alloc(op, shape, x.DType())
	copy(result.Data(), x.Data())
	return result
}
