// Package rnncheck runs the recurrent drivers side by side on random data
// and reports how far their results diverge.
package rnncheck

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/recurrent/internal/backend/cpu"
	"github.com/born-ml/recurrent/internal/nn"
	"github.com/born-ml/recurrent/internal/parallel"
	"github.com/born-ml/recurrent/internal/tensor"
)

// Config describes the scenario.
type Config struct {
	InputSize  int
	StateSize  int
	OutputSize int
	SeqLen     int
	Batch      int

	// Seed drives the random inputs and initial states.
	Seed int64
	// Tolerance is the largest absolute difference accepted between drivers.
	Tolerance float64
	// Parallel configures the backend kernels and the batched driver. The
	// driver always splits the batch down to single elements.
	Parallel parallel.Config
}

// DefaultConfig returns nin=3, nstate=10, nout=4, T=7, B=64.
func DefaultConfig() Config {
	return Config{
		InputSize:  3,
		StateSize:  10,
		OutputSize: 4,
		SeqLen:     7,
		Batch:      64,
		Seed:       0,
		Tolerance:  1e-5,
		Parallel:   parallel.DefaultConfig(),
	}
}

// Validate reports non-positive dimensions or a negative tolerance.
func (c Config) Validate() error {
	dims := []struct {
		name string
		v    int
	}{
		{"input size", c.InputSize},
		{"state size", c.StateSize},
		{"output size", c.OutputSize},
		{"sequence length", c.SeqLen},
		{"batch", c.Batch},
	}
	for _, d := range dims {
		if d.v <= 0 {
			return fmt.Errorf("rnncheck: %s must be positive, got %d", d.name, d.v)
		}
	}
	if c.Tolerance < 0 || math.IsNaN(c.Tolerance) {
		return fmt.Errorf("rnncheck: tolerance must be non-negative, got %v", c.Tolerance)
	}
	return nil
}

// Check is one comparison.
type Check struct {
	Name    string
	MaxDiff float64
	Passed  bool
}

// Report collects all checks of a run.
type Report struct {
	Config      Config
	OutputShape tensor.Shape
	FinalShape  tensor.Shape
	Checks      []Check
}

// Passed reports whether every check passed.
func (r Report) Passed() bool {
	for _, c := range r.Checks {
		if !c.Passed {
			return false
		}
	}
	return len(r.Checks) > 0
}

// Failed returns the checks that did not pass.
func (r Report) Failed() []Check {
	var failed []Check
	for _, c := range r.Checks {
		if !c.Passed {
			failed = append(failed, c)
		}
	}
	return failed
}

type vec = tensor.Tensor[float32, *cpu.CPUBackend]

// Run builds an Elman cell with a linear readout, drives it with every
// driver and compares the results. A non-nil error means a driver failed
// outright or ctx was cancelled; divergence beyond the tolerance is
// reported in the Report.
func Run(ctx context.Context, cfg Config, logger *slog.Logger) (Report, error) {
	if err := cfg.Validate(); err != nil {
		return Report{}, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	backend := cpu.NewWithConfig(cfg.Parallel)
	report := Report{Config: cfg}

	cell := nn.NewElmanCell(cfg.InputSize, cfg.StateSize, backend)
	out := nn.NewOutputLayer(cfg.StateSize, cfg.OutputSize, backend)
	rnn, err := nn.NewRNN[*cpu.CPUBackend](cell, out)
	if err != nil {
		return report, err
	}
	batchPar := cfg.Parallel
	batchPar.MinChunkSize = 1
	batched, err := nn.NewBatchedRNN[*cpu.CPUBackend](cell, out, nn.WithParallel(batchPar))
	if err != nil {
		return report, err
	}
	factorizedCell, err := cell.Factorize()
	if err != nil {
		return report, err
	}
	factorized, err := nn.NewFactorizedRNN[*cpu.CPUBackend](factorizedCell, out)
	if err != nil {
		return report, err
	}

	rng := rand.New(rand.NewSource(cfg.Seed)) //nolint:gosec // reproducible test data
	x := tensor.RandnFrom[float32](tensor.Shape{cfg.Batch, cfg.SeqLen, cfg.InputSize}, rng, backend)
	state := tensor.RandnFrom[float32](tensor.Shape{cfg.Batch, cfg.StateSize}, rng, backend)

	logger.Debug("running batched driver", "input", x.Shape(), "state", state.Shape())
	outputs, final, err := batched.Forward(x, state)
	if err != nil {
		return report, fmt.Errorf("batched driver: %w", err)
	}
	report.OutputShape, report.FinalShape = outputs.Shape(), final.Shape()

	logger.Debug("running sequential driver per batch element")
	var seqOutputs, seqFinals, facOutputs, facFinals []*vec
	for b := range cfg.Batch {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		o, f, err := rnn.Forward(x.Select(0, b), state.Select(0, b))
		if err != nil {
			return report, fmt.Errorf("sequential driver, element %d: %w", b, err)
		}
		seqOutputs, seqFinals = append(seqOutputs, o), append(seqFinals, f)

		fo, ff, err := factorized.Forward(x.Select(0, b), state.Select(0, b))
		if err != nil {
			return report, fmt.Errorf("factorized driver, element %d: %w", b, err)
		}
		facOutputs, facFinals = append(facOutputs, fo), append(facFinals, ff)
	}

	add := func(name string, diff float64) {
		check := Check{Name: name, MaxDiff: diff, Passed: diff <= cfg.Tolerance}
		logger.Debug("check", "name", name, "max_diff", diff, "passed", check.Passed)
		report.Checks = append(report.Checks, check)
	}

	add("batched vs sequential outputs", maxDiff(outputs, tensor.Stack(seqOutputs, 0)))
	add("batched vs sequential final states", maxDiff(final, tensor.Stack(seqFinals, 0)))

	logger.Debug("running sequential driver on batch-major input")
	timeMajor, finalTM, err := rnn.ForwardBatchMajor(x, state)
	if err != nil {
		return report, fmt.Errorf("batch-major driver: %w", err)
	}
	add("batched vs batch-major outputs", maxDiff(outputs.Transpose(1, 0, 2), timeMajor))
	add("batched vs batch-major final states", maxDiff(final, finalTM))

	lastOutputs := make([]*vec, cfg.Batch)
	for b, o := range seqOutputs {
		lastOutputs[b] = o.Select(0, cfg.SeqLen-1).Unsqueeze(0)
	}
	add("factorized vs canonical final states", maxDiff(tensor.Stack(facFinals, 0), final))
	add("factorized vs canonical last outputs", maxDiff(tensor.Stack(facOutputs, 0), tensor.Stack(lastOutputs, 0)))

	logger.Debug("repeating batched driver")
	again, finalAgain, err := batched.Forward(x, state)
	if err != nil {
		return report, fmt.Errorf("batched driver, repeat: %w", err)
	}
	add("repeat outputs bit-identical", exactDiff(outputs, again))
	add("repeat final states bit-identical", exactDiff(final, finalAgain))

	logger.Debug("checking input width rejection")
	add("wrong input width rejected", shapeContract(cell, cfg))

	level := slog.LevelInfo
	if !report.Passed() {
		level = slog.LevelWarn
	}
	logger.Log(ctx, level, "check finished",
		"passed", report.Passed(),
		"checks", len(report.Checks),
		"failed", len(report.Failed()),
		"outputs", report.OutputShape,
		"final", report.FinalShape,
	)
	return report, nil
}

// maxDiff returns the largest absolute element difference, or +Inf when the
// shapes differ.
func maxDiff(a, b *vec) float64 {
	if !a.Shape().Equal(b.Shape()) {
		return math.Inf(1)
	}
	return floats.Distance(widen(a.Data()), widen(b.Data()), math.Inf(1))
}

// exactDiff is 0 for bit-identical tensors and +Inf otherwise.
func exactDiff(a, b *vec) float64 {
	if !a.Shape().Equal(b.Shape()) {
		return math.Inf(1)
	}
	ad, bd := a.Data(), b.Data()
	for i := range ad {
		if math.Float32bits(ad[i]) != math.Float32bits(bd[i]) {
			return math.Inf(1)
		}
	}
	return 0
}

// shapeContract feeds a one-too-wide input and expects a ShapeError.
func shapeContract(cell nn.Cell[*cpu.CPUBackend], cfg Config) float64 {
	backend := cpu.New()
	state := tensor.Zeros[float32](tensor.Shape{cfg.StateSize}, backend)
	x := tensor.Zeros[float32](tensor.Shape{cfg.InputSize + 1}, backend)

	_, err := cell.Update(state, x)
	var shapeErr *tensor.ShapeError
	if errors.As(err, &shapeErr) {
		return 0
	}
	return math.Inf(1)
}

func widen(data []float32) []float64 {
	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = float64(v)
	}
	return out
}
