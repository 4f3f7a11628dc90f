package cpu

import (
	"github.com/born-ml/recurrent/internal/parallel"
	"github.com/born-ml/recurrent/internal/tensor"
)

type numeric interface {
	~float32 | ~float64 | ~int32
}

type binaryOp int

const (
	opAdd binaryOp = iota
	opSub
	opMul
	opDiv
)

func kernel[T numeric](op binaryOp) func(x, y T) T {
	switch op {
	case opAdd:
		return func(x, y T) T { return x + y }
	case opSub:
		return func(x, y T) T { return x - y }
	case opMul:
		return func(x, y T) T { return x * y }
	case opDiv:
		return func(x, y T) T { return x / y }
	default:
		panic("unknown binary op")
	}
}

// binaryInto writes f(a, b) into dst. When broadcast is set, a and b are
// indexed through zero-stride views of outShape.
func binaryInto[T numeric](dst, a, b []T, aShape, bShape, outShape tensor.Shape,
	broadcast bool, f func(x, y T) T, cfg parallel.Config) {
	if !broadcast {
		parallel.For(len(dst), func(i int) {
			dst[i] = f(a[i], b[i])
		}, cfg)
		return
	}

	outStrides := outShape.ComputeStrides()
	aStrides := broadcastStrides(aShape, outShape)
	bStrides := broadcastStrides(bShape, outShape)

	parallel.For(len(dst), func(i int) {
		dst[i] = f(a[flatIndex(i, outStrides, aStrides)], b[flatIndex(i, outStrides, bStrides)])
	}, cfg)
}

// broadcastStrides returns strides of inShape aligned to outShape, with 0
// for padded and size-1 dimensions.
func broadcastStrides(inShape, outShape tensor.Shape) []int {
	strides := make([]int, len(outShape))
	orig := inShape.ComputeStrides()
	offset := len(outShape) - len(inShape)

	for i := offset; i < len(outShape); i++ {
		if inShape[i-offset] != 1 {
			strides[i] = orig[i-offset]
		}
	}
	return strides
}

// flatIndex maps a flat output index to the flat index of a broadcast input.
func flatIndex(outIdx int, outStrides, inStrides []int) int {
	flat := 0
	for i, stride := range outStrides {
		coord := outIdx / stride
		outIdx %= stride
		flat += coord * inStrides[i]
	}
	return flat
}
