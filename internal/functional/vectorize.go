package functional

import (
	"fmt"

	"github.com/born-ml/recurrent/internal/parallel"
	"github.com/born-ml/recurrent/internal/tensor"
)

// Func is a tensor function with any number of inputs and outputs.
type Func[B tensor.Backend] func(args ...*tensor.Tensor[float32, B]) ([]*tensor.Tensor[float32, B], error)

// Vectorize lifts fn over a batch axis. batchAxes[i] names the batch
// dimension of the i-th argument; all of them must have the same size.
//
// The returned function calls fn once per batch index with that slice of
// every argument (batch dimension removed) and stacks each output along a
// new leading axis 0, whatever the input batch axes are. Use VectorizeAxes
// to place outputs elsewhere. Batch elements share nothing but fn itself,
// so with an enabled cfg they run concurrently; results are still assembled
// in batch order and the error of the lowest failing index is returned.
//
//	batched := functional.Vectorize(rnnForward, []int{0, 0}, parallel.DefaultConfig())
//	outs, err := batched(x, state) // x: (B, T, nin), state: (B, nstate)
func Vectorize[B tensor.Backend](fn Func[B], batchAxes []int, cfg parallel.Config) Func[B] {
	return VectorizeAxes(fn, batchAxes, nil, cfg)
}

// VectorizeAxes is Vectorize with explicit output axes: the o-th output is
// restacked along outAxes[o], counted in the stacked result's rank. A nil
// outAxes stacks every output along axis 0.
func VectorizeAxes[B tensor.Backend](fn Func[B], batchAxes, outAxes []int, cfg parallel.Config) Func[B] {
	return func(args ...*tensor.Tensor[float32, B]) ([]*tensor.Tensor[float32, B], error) {
		if len(args) != len(batchAxes) {
			return nil, fmt.Errorf("vectorize: got %d arguments for %d batch axes", len(args), len(batchAxes))
		}
		if len(args) == 0 {
			return nil, fmt.Errorf("vectorize: at least one argument required")
		}

		axes := make([]int, len(args))
		batch := -1
		for i, arg := range args {
			shape := arg.Shape()
			axis, err := tensor.NormalizeDim(batchAxes[i], len(shape))
			if err != nil {
				return nil, fmt.Errorf("vectorize: argument %d: %w", i, err)
			}
			axes[i] = axis

			if batch == -1 {
				batch = shape[axis]
				continue
			}
			if shape[axis] != batch {
				want := shape.Clone()
				want[axis] = batch
				return nil, fmt.Errorf("vectorize: argument %d batch size: %w",
					i, &tensor.ShapeError{Op: "vectorize", Want: want, Got: shape.Clone()})
			}
		}

		results := make([][]*tensor.Tensor[float32, B], batch)
		err := parallel.ForErr(batch, func(b int) error {
			slices := make([]*tensor.Tensor[float32, B], len(args))
			for i, arg := range args {
				slices[i] = arg.Select(axes[i], b)
			}

			outs, err := fn(slices...)
			if err != nil {
				return fmt.Errorf("vectorize: batch element %d: %w", b, err)
			}
			results[b] = outs
			return nil
		}, cfg)
		if err != nil {
			return nil, err
		}

		numOut := len(results[0])
		if outAxes != nil && len(outAxes) != numOut {
			return nil, fmt.Errorf("vectorize: got %d outputs for %d output axes", numOut, len(outAxes))
		}
		stacked := make([]*tensor.Tensor[float32, B], numOut)
		for o := 0; o < numOut; o++ {
			column := make([]*tensor.Tensor[float32, B], batch)
			for b := range results {
				if len(results[b]) != numOut {
					return nil, fmt.Errorf("vectorize: batch element %d returned %d outputs, want %d",
						b, len(results[b]), numOut)
				}
				if !results[b][o].Shape().Equal(results[0][o].Shape()) {
					return nil, fmt.Errorf("vectorize: output %d: %w", o,
						&tensor.ShapeError{Op: "vectorize", Want: results[0][o].Shape(), Got: results[b][o].Shape()})
				}
				column[b] = results[b][o]
			}
			axis := 0
			if outAxes != nil {
				axis, err = tensor.NormalizeDim(outAxes[o], len(column[0].Shape())+1)
				if err != nil {
					return nil, fmt.Errorf("vectorize: output %d: %w", o, err)
				}
			}
			stacked[o] = tensor.Stack(column, axis)
		}

		return stacked, nil
	}
}
