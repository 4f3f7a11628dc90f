package rnncheck_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/recurrent/internal/parallel"
	"github.com/born-ml/recurrent/internal/rnncheck"
	"github.com/born-ml/recurrent/internal/tensor"
)

func TestRun_DefaultScenario(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	report, err := rnncheck.Run(context.Background(), rnncheck.DefaultConfig(), logger)
	require.NoError(t, err)

	assert.Equal(t, tensor.Shape{64, 7, 4}, report.OutputShape)
	assert.Equal(t, tensor.Shape{64, 10}, report.FinalShape)
	require.Len(t, report.Checks, 9)
	for _, c := range report.Checks {
		assert.True(t, c.Passed, "%s: max diff %g", c.Name, c.MaxDiff)
	}
	assert.True(t, report.Passed())
	assert.Empty(t, report.Failed())

	assert.Contains(t, buf.String(), "check finished")
	assert.Contains(t, buf.String(), "passed=true")
}

func TestRun_SequentialWorkers(t *testing.T) {
	cfg := rnncheck.DefaultConfig()
	cfg.Batch = 5
	cfg.SeqLen = 3
	cfg.Seed = 42
	cfg.Parallel = parallel.Sequential()

	report, err := rnncheck.Run(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.True(t, report.Passed())
	assert.Equal(t, tensor.Shape{5, 3, 4}, report.OutputShape)
}

func TestRun_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*rnncheck.Config)
		errMsg string
	}{
		{"ZeroBatch", func(c *rnncheck.Config) { c.Batch = 0 }, "batch must be positive"},
		{"NegativeState", func(c *rnncheck.Config) { c.StateSize = -1 }, "state size must be positive"},
		{"NegativeTolerance", func(c *rnncheck.Config) { c.Tolerance = -1 }, "tolerance"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := rnncheck.DefaultConfig()
			tt.mutate(&cfg)
			_, err := rnncheck.Run(context.Background(), cfg, nil)
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := rnncheck.Run(ctx, rnncheck.DefaultConfig(), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReport_Passed(t *testing.T) {
	assert.False(t, rnncheck.Report{}.Passed(), "no checks is not a pass")

	r := rnncheck.Report{Checks: []rnncheck.Check{{Name: "a", Passed: true}, {Name: "b"}}}
	assert.False(t, r.Passed())
	require.Len(t, r.Failed(), 1)
	assert.Equal(t, "b", r.Failed()[0].Name)
}
