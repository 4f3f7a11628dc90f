// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides recurrent cells, sequence drivers and the layers they
// are built from.
//
// # Overview
//
// This package contains:
//   - Cells: SimpleCell, ElmanCell, FactorizedCell (all implement Cell)
//   - Drivers: RNN, BatchedRNN, FactorizedRNN
//   - Layers: Linear, Embedding, Sequential
//   - Activations: Tanh (default), Sigmoid, ReLU
//   - Errors: ConstructionError for invalid compositions; shape problems
//     are reported as *tensor.ShapeError
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/recurrent/backend/cpu"
//	    "github.com/born-ml/recurrent/nn"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    cell := nn.NewElmanCell(3, 10, backend)
//	    rnn, err := nn.NewRNN[*cpu.Backend](cell, nn.NewOutputLayer(10, 4, backend))
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    // xs: (T, 3), state: (10) -> outputs: (T, 4), final: (10)
//	    outputs, final, err := rnn.Forward(xs, state)
//	}
//
// # Drivers
//
// RNN folds a cell over a time-major sequence, producing one output per
// step. It also accepts pre-batched (T, B, nin) input and batch-major input
// through ForwardBatchMajor.
//
// BatchedRNN takes batch-major (B, T, nin) input and runs every batch
// element independently, possibly in parallel:
//
//	batched, err := nn.NewBatchedRNN[*cpu.Backend](cell, out)
//	outputs, final, err := batched.Forward(x, state) // (B, T, nout), (B, nstate)
//
// FactorizedRNN drives a FactorizedCell and returns only the output for the
// final state:
//
//	fcell, err := cell.Factorize()
//	frnn, err := nn.NewFactorizedRNN[*cpu.Backend](fcell, out)
//	output, final, err := frnn.Forward(xs, state) // (1, nout), (nstate)
package nn
