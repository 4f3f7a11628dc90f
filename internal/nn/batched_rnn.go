package nn

import (
	"fmt"

	"github.com/born-ml/recurrent/internal/functional"
	"github.com/born-ml/recurrent/internal/parallel"
	"github.com/born-ml/recurrent/internal/tensor"
)

// BatchedRNN runs RNN.Forward independently for every element of a
// batch-major input and restacks the results in batch order. Elements share
// the cell and output weights read-only and may run concurrently.
type BatchedRNN[B tensor.Backend] struct {
	rnn     *RNN[B]
	par     parallel.Config
	forward functional.Func[B]
}

// BatchedOption configures NewBatchedRNN.
type BatchedOption func(*batchedConfig)

type batchedConfig struct {
	par parallel.Config
}

// defaultBatchParallel spreads batch elements over all CPUs. Each element
// is a whole recurrence, so a single element is enough work for a goroutine.
func defaultBatchParallel() parallel.Config {
	cfg := parallel.DefaultConfig()
	cfg.MinChunkSize = 1
	return cfg
}

// WithParallel sets how batch elements are spread over goroutines. Use
// parallel.Sequential() for a single-goroutine run.
func WithParallel(cfg parallel.Config) BatchedOption {
	return func(c *batchedConfig) {
		c.par = cfg
	}
}

// NewBatchedRNN composes cell and output like NewRNN and lifts the
// per-sequence forward over batch axis 0 of both input and state.
func NewBatchedRNN[B tensor.Backend](cell Cell[B], output OutputLayer[B], opts ...BatchedOption) (*BatchedRNN[B], error) {
	cfg := batchedConfig{par: defaultBatchParallel()}
	for _, opt := range opts {
		opt(&cfg)
	}

	rnn, err := NewRNN(cell, output)
	if err != nil {
		return nil, err
	}

	var single functional.Func[B] = func(args ...*tensor.Tensor[float32, B]) ([]*tensor.Tensor[float32, B], error) {
		outputs, final, err := rnn.Forward(args[0], args[1])
		if err != nil {
			return nil, err
		}
		return []*tensor.Tensor[float32, B]{outputs, final}, nil
	}

	return &BatchedRNN[B]{
		rnn:     rnn,
		par:     cfg.par,
		forward: functional.Vectorize(single, []int{0, 0}, cfg.par),
	}, nil
}

// Parallel returns the configuration used to spread batch elements.
func (b *BatchedRNN[B]) Parallel() parallel.Config { return b.par }

// RNN returns the per-sequence driver.
func (b *BatchedRNN[B]) RNN() *RNN[B] { return b.rnn }

// Forward maps x (B, T, nin) and state (B, nstate) to outputs (B, T, nout)
// and final states (B, nstate).
func (b *BatchedRNN[B]) Forward(x, state *tensor.Tensor[float32, B]) (outputs, final *tensor.Tensor[float32, B], err error) {
	const op = "batched rnn forward"
	nin, nstate := b.rnn.cell.InputSize(), b.rnn.cell.StateSize()
	if x == nil || state == nil {
		return nil, nil, &tensor.ShapeError{Op: op, Want: tensor.Shape{tensor.AnyDim, tensor.AnyDim, nin}}
	}
	if err := tensor.CheckShape(op+" input", x.Shape(), tensor.Shape{tensor.AnyDim, tensor.AnyDim, nin}); err != nil {
		return nil, nil, err
	}
	if err := tensor.CheckShape(op+" state", state.Shape(), tensor.Shape{x.Shape()[0], nstate}); err != nil {
		return nil, nil, err
	}

	results, err := b.forward(x, state)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	return results[0], results[1], nil
}
