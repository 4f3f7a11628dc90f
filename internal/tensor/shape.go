package tensor

import (
	"fmt"
	"strconv"
	"strings"
)

// AnyDim is a wildcard dimension accepted by CheckShape.
const AnyDim = -1

// Shape represents the dimensions of a tensor.
type Shape []int

// NumElements returns the total number of elements (1 for a scalar).
func (s Shape) NumElements() int {
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks that every dimension is positive.
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim <= 0 {
			return fmt.Errorf("invalid dimension at index %d: %d (must be > 0)", i, dim)
		}
	}
	return nil
}

// Equal reports whether two shapes are identical.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Matches reports whether s conforms to pattern, where AnyDim in the
// pattern matches any size.
func (s Shape) Matches(pattern Shape) bool {
	if len(s) != len(pattern) {
		return false
	}
	for i, want := range pattern {
		if want != AnyDim && s[i] != want {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// ComputeStrides calculates row-major strides for the shape.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	acc := 1
	for i := len(s) - 1; i >= 0; i-- {
		strides[i] = acc
		acc *= s[i]
	}
	return strides
}

// NormalizeDim resolves a possibly negative dimension index against rank.
func NormalizeDim(dim, rank int) (int, error) {
	if dim < 0 {
		dim += rank
	}
	if dim < 0 || dim >= rank {
		return 0, fmt.Errorf("dimension %d out of range for rank %d", dim, rank)
	}
	return dim, nil
}

// String renders the shape as "(3, 4)"; wildcard dimensions print as "*".
func (s Shape) String() string {
	parts := make([]string, len(s))
	for i, dim := range s {
		if dim == AnyDim {
			parts[i] = "*"
			continue
		}
		parts[i] = strconv.Itoa(dim)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// BroadcastShapes applies NumPy broadcasting rules, aligning shapes from the
// right. It returns the result shape and whether any broadcasting happened.
//
//	(3, 1) + (3, 5) → (3, 5), true
//	(3, 5) + (3, 5) → (3, 5), false
//	(3, 4) + (3, 5) → error
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	n := max(len(a), len(b))
	result := make(Shape, n)
	broadcast := len(a) != len(b)

	for i := 1; i <= n; i++ {
		aDim, bDim := 1, 1
		if i <= len(a) {
			aDim = a[len(a)-i]
		}
		if i <= len(b) {
			bDim = b[len(b)-i]
		}

		switch {
		case aDim == bDim:
			result[n-i] = aDim
		case aDim == 1:
			result[n-i] = bDim
			broadcast = true
		case bDim == 1:
			result[n-i] = aDim
			broadcast = true
		default:
			return nil, false, fmt.Errorf("shapes not compatible for broadcasting: %v vs %v (dimension %d: %d vs %d)",
				a, b, n-i, aDim, bDim)
		}
	}

	return result, broadcast, nil
}
