// Package main provides the recurrent CLI: it checks the drivers against
// each other and runs them on encoded text.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"runtime"

	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/recurrent/internal/backend/cpu"
	"github.com/born-ml/recurrent/internal/encode"
	"github.com/born-ml/recurrent/internal/nn"
	"github.com/born-ml/recurrent/internal/parallel"
	"github.com/born-ml/recurrent/internal/rnncheck"
	"github.com/born-ml/recurrent/internal/tensor"
	"github.com/born-ml/recurrent/internal/tokenizer"
)

const version = "v0.1.0-dev"

const usage = `Usage: recurrent [-v] [-log-json FILE] <command> [flags]

Commands:
  version    Show version
  check      Compare the sequential, batched and factorized drivers
  run        Encode text and run it through a recurrent network
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// errUsage marks errors already reported by a flag set.
var errUsage = errors.New("usage")

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("recurrent", flag.ContinueOnError)
	global.SetOutput(stderr)
	global.Usage = func() { fmt.Fprint(stderr, usage) }
	verbose := global.Bool("v", false, "debug logging")
	logJSON := global.String("log-json", "", "also write JSON logs to `file`")
	if err := global.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if global.NArg() == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	logger, closeLog, err := newLogger(stderr, *verbose, *logJSON)
	if err != nil {
		fmt.Fprintf(stderr, "recurrent: %v\n", err)
		return 1
	}
	defer func() { _ = closeLog() }()

	cmd, cmdArgs := global.Arg(0), global.Args()[1:]
	switch cmd {
	case "version":
		fmt.Fprintf(stdout, "recurrent %s\n", version)
		return 0
	case "check":
		err = checkCommand(ctx, cmdArgs, stdout, stderr, logger)
	case "run":
		err = runCommand(cmdArgs, stdout, stderr, logger)
	default:
		fmt.Fprintf(stderr, "recurrent: unknown command %q\n\n%s", cmd, usage)
		return 2
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		return 2
	default:
		logger.Error("command failed", "command", cmd, "err", err)
		return 1
	}
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() > 0 && fs.Name() != "run" {
		fmt.Fprintf(fs.Output(), "%s: unexpected arguments %q\n", fs.Name(), fs.Args())
		return errUsage
	}
	return nil
}

func checkCommand(ctx context.Context, args []string, stdout, stderr io.Writer, logger *slog.Logger) error {
	cfg := rnncheck.DefaultConfig()

	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.IntVar(&cfg.InputSize, "nin", cfg.InputSize, "input width")
	fs.IntVar(&cfg.StateSize, "nstate", cfg.StateSize, "state width")
	fs.IntVar(&cfg.OutputSize, "nout", cfg.OutputSize, "output width")
	fs.IntVar(&cfg.SeqLen, "seq", cfg.SeqLen, "sequence length")
	fs.IntVar(&cfg.Batch, "batch", cfg.Batch, "batch size")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed for inputs")
	fs.Float64Var(&cfg.Tolerance, "tol", cfg.Tolerance, "largest accepted absolute difference")
	workers := fs.Int("workers", runtime.NumCPU(), "goroutines for batch elements and kernels (1 disables)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	cfg.Parallel = parallelConfig(*workers)

	report, err := rnncheck.Run(ctx, cfg, logger)
	if err != nil {
		return err
	}

	for _, c := range report.Checks {
		status := "ok"
		if !c.Passed {
			status = "FAIL"
		}
		fmt.Fprintf(stdout, "%-4s  %-40s  max diff %.3g\n", status, c.Name, c.MaxDiff)
	}
	if !report.Passed() {
		return fmt.Errorf("%d of %d checks failed", len(report.Failed()), len(report.Checks))
	}
	return nil
}

func parallelConfig(workers int) parallel.Config {
	if workers < 2 {
		return parallel.Sequential()
	}
	cfg := parallel.DefaultConfig()
	cfg.NumWorkers = workers
	return cfg
}

type runOptions struct {
	text      string
	tokenizer string
	encoding  string
	nin       int
	nstate    int
	nout      int
	cell      string
	seqLen    int
	seed      int64
}

func runCommand(args []string, stdout, stderr io.Writer, logger *slog.Logger) error {
	var opts runOptions
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.text, "text", "hello, recurrent world", "text to encode (ignored when texts are given as arguments)")
	fs.StringVar(&opts.tokenizer, "tokenizer", tokenizer.KindByte, "tokenizer: byte or tiktoken")
	fs.StringVar(&opts.encoding, "encoding", "cl100k_base", "tiktoken encoding")
	fs.IntVar(&opts.nin, "nin", 8, "embedding width")
	fs.IntVar(&opts.nstate, "nstate", 16, "state width")
	fs.IntVar(&opts.nout, "nout", 4, "output width")
	fs.StringVar(&opts.cell, "cell", "elman", "cell: elman or simple")
	fs.IntVar(&opts.seqLen, "seq", 0, "batch mode sequence length (0: longest text)")
	fs.Int64Var(&opts.seed, "seed", 0, "embedding seed")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	for name, v := range map[string]int{"nin": opts.nin, "nstate": opts.nstate, "nout": opts.nout} {
		if v <= 0 {
			return fmt.Errorf("-%s must be positive, got %d", name, v)
		}
	}

	tok, err := tokenizer.New(opts.tokenizer, opts.encoding)
	if err != nil {
		return err
	}

	backend := cpu.New()
	enc := encode.New(tok, opts.nin, rand.New(rand.NewSource(opts.seed)), backend) //nolint:gosec // reproducible embeddings

	var cell nn.Cell[*cpu.CPUBackend]
	elman := nn.NewElmanCell(opts.nin, opts.nstate, backend)
	switch opts.cell {
	case "elman":
		cell = elman
	case "simple":
		cell = nn.NewSimpleCell(opts.nin, opts.nstate, backend)
	default:
		return fmt.Errorf("unknown cell %q (want elman or simple)", opts.cell)
	}
	out := nn.NewOutputLayer(opts.nstate, opts.nout, backend)
	logger.Debug("model", "cell", opts.cell, "tokenizer", tok.Name(), "nin", opts.nin, "nstate", opts.nstate, "nout", opts.nout)

	if texts := fs.Args(); len(texts) > 1 {
		return runBatch(texts, opts, enc, cell, out, stdout, logger)
	} else if len(texts) == 1 {
		opts.text = texts[0]
	}

	xs, err := enc.Encode(opts.text)
	if err != nil {
		return err
	}
	rnn, err := nn.NewRNN(cell, out)
	if err != nil {
		return err
	}
	state := tensor.Zeros[float32](tensor.Shape{opts.nstate}, backend)

	outputs, final, err := rnn.Forward(xs, state)
	if err != nil {
		return err
	}
	finalNorm := norm(final)
	logger.Info("sequential driver", "input", xs.Shape(), "outputs", outputs.Shape(), "final_norm", finalNorm)
	fmt.Fprintf(stdout, "tokens   %d\n", xs.Shape()[0])
	fmt.Fprintf(stdout, "output   %v\n", outputs.Select(0, xs.Shape()[0]-1).Data())
	fmt.Fprintf(stdout, "|state|  %.6f\n", finalNorm)

	if opts.cell != "elman" {
		return nil
	}

	fcell, err := elman.Factorize()
	if err != nil {
		return err
	}
	frnn, err := nn.NewFactorizedRNN[*cpu.CPUBackend](fcell, out)
	if err != nil {
		return err
	}
	fout, ffinal, err := frnn.Forward(xs, state)
	if err != nil {
		return err
	}
	diff := floats.Distance(widen(final.Data()), widen(ffinal.Data()), 1)
	logger.Info("factorized driver", "output", fout.Shape(), "final_norm", norm(ffinal), "l1_diff", diff)
	fmt.Fprintf(stdout, "factorized output %v\n", fout.Data())
	return nil
}

func runBatch(texts []string, opts runOptions, enc *encode.Encoder[*cpu.CPUBackend], cell nn.Cell[*cpu.CPUBackend],
	out nn.OutputLayer[*cpu.CPUBackend], stdout io.Writer, logger *slog.Logger,
) error {
	seqLen := opts.seqLen
	if seqLen <= 0 {
		for _, text := range texts {
			ids, err := enc.Tokens(text)
			if err != nil {
				return err
			}
			seqLen = max(seqLen, len(ids))
		}
	}
	if seqLen == 0 {
		return errors.New("all texts are empty")
	}

	x, err := enc.EncodeBatch(texts, seqLen)
	if err != nil {
		return err
	}
	batched, err := nn.NewBatchedRNN(cell, out)
	if err != nil {
		return err
	}
	state := tensor.Zeros[float32](tensor.Shape{len(texts), opts.nstate}, x.Backend())

	outputs, final, err := batched.Forward(x, state)
	if err != nil {
		return err
	}
	logger.Info("batched driver", "input", x.Shape(), "outputs", outputs.Shape(), "final", final.Shape())
	for b := range texts {
		fmt.Fprintf(stdout, "%d  |state| %.6f  %q\n", b, norm(final.Select(0, b)), texts[b])
	}
	return nil
}

func norm(t *tensor.Tensor[float32, *cpu.CPUBackend]) float64 {
	return floats.Norm(widen(t.Data()), 2)
}

func widen(data []float32) []float64 {
	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = float64(v)
	}
	return out
}
