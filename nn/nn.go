// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/recurrent/internal/nn"
	"github.com/born-ml/recurrent/internal/parallel"
	"github.com/born-ml/recurrent/internal/tensor"
)

// Module is the base interface for all layers.
type Module[B tensor.Backend] = nn.Module[B]

// Stateful is implemented by modules whose weights can be exported and
// loaded by name.
type Stateful = nn.Stateful

// Parameter is a named weight tensor.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// NewParameter creates a new parameter with the given name and tensor.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return nn.NewParameter(name, t)
}

// Layers

// Linear represents a fully connected (dense) layer.
type Linear[B tensor.Backend] = nn.Linear[B]

// LinearOption configures NewLinear.
type LinearOption = nn.LinearOption

// WithoutBias builds a Linear layer without bias.
func WithoutBias() LinearOption {
	return nn.WithoutBias()
}

// NewLinear creates a new linear layer with Xavier initialization.
//
// Example:
//
//	backend := cpu.New()
//	layer := nn.NewLinear(13, 10, backend)
func NewLinear[B tensor.Backend](inFeatures, outFeatures int, backend B, opts ...LinearOption) *Linear[B] {
	return nn.NewLinear(inFeatures, outFeatures, backend, opts...)
}

// Sequential chains modules.
type Sequential[B tensor.Backend] = nn.Sequential[B]

// NewSequential creates a new Sequential container.
func NewSequential[B tensor.Backend](modules ...Module[B]) *Sequential[B] {
	return nn.NewSequential(modules...)
}

// Embedding maps token ids to vectors.
type Embedding[B tensor.Backend] = nn.Embedding[B]

// NewEmbedding creates an Embedding with N(0, 1) weights.
func NewEmbedding[B tensor.Backend](numEmbeddings, embeddingDim int, backend B) *Embedding[B] {
	return nn.NewEmbedding(numEmbeddings, embeddingDim, backend)
}

// NewEmbeddingWithWeight creates an Embedding over an existing table.
func NewEmbeddingWithWeight[B tensor.Backend](weight *tensor.Tensor[float32, B]) *Embedding[B] {
	return nn.NewEmbeddingWithWeight(weight)
}

// Activations

// ReLU is a Rectified Linear Unit activation module.
type ReLU[B tensor.Backend] = nn.ReLU[B]

// NewReLU creates a new ReLU activation module.
func NewReLU[B tensor.Backend]() *ReLU[B] {
	return nn.NewReLU[B]()
}

// Sigmoid is a sigmoid activation module.
type Sigmoid[B tensor.Backend] = nn.Sigmoid[B]

// NewSigmoid creates a new Sigmoid activation module.
func NewSigmoid[B tensor.Backend]() *Sigmoid[B] {
	return nn.NewSigmoid[B]()
}

// Tanh is a hyperbolic tangent activation module.
type Tanh[B tensor.Backend] = nn.Tanh[B]

// NewTanh creates a new Tanh activation module.
func NewTanh[B tensor.Backend]() *Tanh[B] {
	return nn.NewTanh[B]()
}

// Cells

// Cell is a recurrent update rule.
type Cell[B tensor.Backend] = nn.Cell[B]

// CellKind tells a driver whether a cell consumes one element or a whole
// sequence per update.
type CellKind = nn.CellKind

// Cell kinds.
const (
	ElementCell  = nn.ElementCell
	SequenceCell = nn.SequenceCell
)

// CellOption configures a cell constructor.
type CellOption[B tensor.Backend] = nn.CellOption[B]

// WithActivation replaces the default Tanh activation.
func WithActivation[B tensor.Backend](activation Module[B]) CellOption[B] {
	return nn.WithActivation(activation)
}

// SimpleCell feeds [x ; state] through two linear layers and an activation.
type SimpleCell[B tensor.Backend] = nn.SimpleCell[B]

// NewSimpleCell creates a SimpleCell.
func NewSimpleCell[B tensor.Backend](nin, nstate int, backend B, opts ...CellOption[B]) *SimpleCell[B] {
	return nn.NewSimpleCell(nin, nstate, backend, opts...)
}

// ElmanCell computes activation(W_hh @ state + b + W_xh @ x).
type ElmanCell[B tensor.Backend] = nn.ElmanCell[B]

// NewElmanCell creates an ElmanCell.
func NewElmanCell[B tensor.Backend](nin, nstate int, backend B, opts ...CellOption[B]) *ElmanCell[B] {
	return nn.NewElmanCell(nin, nstate, backend, opts...)
}

// FactorizedCell runs the ElmanCell recurrence over a whole sequence with
// the input projection hoisted out of the loop.
type FactorizedCell[B tensor.Backend] = nn.FactorizedCell[B]

// NewFactorizedCell creates a FactorizedCell.
func NewFactorizedCell[B tensor.Backend](nin, nstate int, backend B, opts ...CellOption[B]) *FactorizedCell[B] {
	return nn.NewFactorizedCell(nin, nstate, backend, opts...)
}

// Output layers

// OutputLayer maps states to per-step outputs.
type OutputLayer[B tensor.Backend] = nn.OutputLayer[B]

// OutputFunc adapts a pure tensor function to OutputLayer.
type OutputFunc[B tensor.Backend] = nn.OutputFunc[B]

// NewOutputLayer creates a Linear(nstate, nout) readout.
func NewOutputLayer[B tensor.Backend](nstate, nout int, backend B) *Linear[B] {
	return nn.NewOutputLayer(nstate, nout, backend)
}

// Identity returns the state as the output.
func Identity[B tensor.Backend]() OutputFunc[B] {
	return nn.Identity[B]()
}

// Drivers

// RNN is the sequential driver.
type RNN[B tensor.Backend] = nn.RNN[B]

// NewRNN composes an element cell with an output layer.
func NewRNN[B tensor.Backend](cell Cell[B], output OutputLayer[B]) (*RNN[B], error) {
	return nn.NewRNN(cell, output)
}

// BatchedRNN runs the sequential driver over every element of a batch.
type BatchedRNN[B tensor.Backend] = nn.BatchedRNN[B]

// BatchedOption configures NewBatchedRNN.
type BatchedOption = nn.BatchedOption

// WithParallel sets how batch elements are spread over goroutines.
func WithParallel(cfg parallel.Config) BatchedOption {
	return nn.WithParallel(cfg)
}

// NewBatchedRNN composes an element cell with an output layer for
// batch-major input.
func NewBatchedRNN[B tensor.Backend](cell Cell[B], output OutputLayer[B], opts ...BatchedOption) (*BatchedRNN[B], error) {
	return nn.NewBatchedRNN(cell, output, opts...)
}

// FactorizedRNN drives a sequence cell and returns the final output only.
type FactorizedRNN[B tensor.Backend] = nn.FactorizedRNN[B]

// NewFactorizedRNN composes a sequence cell with an output layer.
func NewFactorizedRNN[B tensor.Backend](cell Cell[B], output OutputLayer[B]) (*FactorizedRNN[B], error) {
	return nn.NewFactorizedRNN(cell, output)
}

// Errors

// ConstructionError reports an invalid cell/output/driver composition.
type ConstructionError = nn.ConstructionError
