package tensor

import "fmt"

// ShapeError reports a tensor whose shape does not conform to what an
// operation requires. Want may contain AnyDim wildcards.
type ShapeError struct {
	Op   string
	Want Shape
	Got  Shape
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: shape mismatch: want %v, got %v", e.Op, e.Want, e.Got)
}

// CheckShape returns a *ShapeError if got does not match want.
func CheckShape(op string, got, want Shape) error {
	if got.Matches(want) {
		return nil
	}
	return &ShapeError{Op: op, Want: want.Clone(), Got: got.Clone()}
}
