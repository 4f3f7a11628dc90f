// Package functional provides the control-flow primitives the recurrent
// drivers are built from: a sequential fold (Scan) and a batch-axis lifting
// transform (Vectorize).
package functional

// Scan folds step over xs from left to right, threading the carry through
// every call and collecting one output per element in traversal order.
//
// Step i+1 always sees the carry returned by step i, so Scan never reorders
// or parallelizes. The first error stops the fold; no partial results are
// returned with it.
//
//	final, ys, err := functional.Scan(step, init, xs)
func Scan[S, X, Y any](step func(carry S, x X) (S, Y, error), init S, xs []X) (S, []Y, error) {
	carry := init
	ys := make([]Y, 0, len(xs))

	for _, x := range xs {
		next, y, err := step(carry, x)
		if err != nil {
			var zero S
			return zero, nil, err
		}
		carry = next
		ys = append(ys, y)
	}

	return carry, ys, nil
}
