package cpu

import (
	"fmt"
	"math"

	"github.com/born-ml/recurrent/internal/parallel"
	"github.com/born-ml/recurrent/internal/tensor"
)

// Tanh applies the hyperbolic tangent element-wise.
func (cpu *CPUBackend) Tanh(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary("tanh", x, math.Tanh)
}

// Sigmoid applies 1 / (1 + exp(-x)) element-wise.
func (cpu *CPUBackend) Sigmoid(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary("sigmoid", x, func(v float64) float64 {
		return 1 / (1 + math.Exp(-v))
	})
}

// ReLU applies max(0, x) element-wise.
func (cpu *CPUBackend) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary("relu", x, func(v float64) float64 {
		return math.Max(0, v)
	})
}

func (cpu *CPUBackend) unary(name string, x *tensor.RawTensor, f func(float64) float64) *tensor.RawTensor {
	result := cpu.alloc(name, x.Shape(), x.DType())

	switch x.DType() {
	case tensor.Float32:
		unaryInto(result.AsFloat32(), x.AsFloat32(), f, cpu.par)
	case tensor.Float64:
		unaryInto(result.AsFloat64(), x.AsFloat64(), f, cpu.par)
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s (only float32/float64 supported)", name, x.DType()))
	}

	return result
}

func unaryInto[T ~float32 | ~float64](dst, src []T, f func(float64) float64, cfg parallel.Config) {
	parallel.For(len(dst), func(i int) {
		dst[i] = T(f(float64(src[i])))
	}, cfg)
}
