package tensor

import (
	"math/rand"
)

// Zeros creates a zero-filled tensor.
//
//	t := tensor.Zeros[float32](Shape{3, 4}, backend)
func Zeros[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	raw, err := NewRaw(shape, dataTypeOf[T](), b.Device())
	if err != nil {
		panic(err)
	}
	return New[T, B](raw, b)
}

// Full creates a tensor filled with value.
func Full[T DType, B Backend](shape Shape, value T, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()
	for i := range data {
		data[i] = value
	}
	return t
}

// Ones creates a tensor filled with ones.
func Ones[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return Full[T, B](shape, T(1), b)
}

// NormalSource yields samples from N(0, 1). *rand.Rand satisfies it.
type NormalSource interface {
	NormFloat64() float64
}

type globalNormal struct{}

func (globalNormal) NormFloat64() float64 {
	return rand.NormFloat64() //nolint:gosec // G404: ML sampling, not security-sensitive
}

// Randn creates a tensor of N(0, 1) samples from the global math/rand source.
// Only float element types are supported.
func Randn[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return RandnFrom[T, B](shape, globalNormal{}, b)
}

// RandnFrom creates a tensor of N(0, 1) samples drawn from src, which makes
// test inputs reproducible:
//
//	rng := rand.New(rand.NewSource(42))
//	x := tensor.RandnFrom[float32](Shape{64, 7, 3}, rng, backend)
func RandnFrom[T DType, B Backend](shape Shape, src NormalSource, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)

	switch data := any(t.Data()).(type) {
	case []float32:
		for i := range data {
			data[i] = float32(src.NormFloat64())
		}
	case []float64:
		for i := range data {
			data[i] = src.NormFloat64()
		}
	default:
		panic("Randn only supports float32 and float64 types")
	}
	return t
}
