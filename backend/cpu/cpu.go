// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the pure Go CPU backend.
//
// Matrix multiplication goes through gonum's BLAS; element-wise kernels are
// split across goroutines for large tensors. Operations never modify their
// operands, so one backend may be shared by concurrent callers.
//
//	backend := cpu.New()
//	cell := nn.NewElmanCell(3, 10, backend)
package cpu

import (
	internalcpu "github.com/born-ml/recurrent/internal/backend/cpu"
	"github.com/born-ml/recurrent/internal/parallel"
	"github.com/born-ml/recurrent/tensor"
)

// Backend represents the CPU backend implementation.
type Backend = internalcpu.CPUBackend

// ParallelConfig controls how kernels are split across goroutines.
type ParallelConfig = parallel.Config

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates a new CPU backend with the default parallel configuration.
func New() *Backend {
	return internalcpu.New()
}

// NewWithConfig creates a CPU backend with an explicit parallel
// configuration.
func NewWithConfig(cfg ParallelConfig) *Backend {
	return internalcpu.NewWithConfig(cfg)
}

// DefaultParallelConfig returns one worker per CPU.
func DefaultParallelConfig() ParallelConfig {
	return parallel.DefaultConfig()
}

// SequentialConfig disables goroutine splitting.
func SequentialConfig() ParallelConfig {
	return parallel.Sequential()
}
