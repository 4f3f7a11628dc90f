// Package encode turns text into the float sequences consumed by the
// recurrent drivers: tokens from a tokenizer, vectors from an embedding.
package encode

import (
	"fmt"

	"github.com/born-ml/recurrent/internal/nn"
	"github.com/born-ml/recurrent/internal/tensor"
	"github.com/born-ml/recurrent/internal/tokenizer"
)

// Encoder maps text to (T, nin) sequences.
type Encoder[B tensor.Backend] struct {
	tok   tokenizer.Tokenizer
	embed *nn.Embedding[B]
}

// New creates an Encoder with a random embedding table of
// tok.VocabSize() rows and nin columns drawn from src.
func New[B tensor.Backend](tok tokenizer.Tokenizer, nin int, src tensor.NormalSource, backend B) *Encoder[B] {
	return &Encoder[B]{
		tok:   tok,
		embed: nn.NewEmbeddingFrom(tok.VocabSize(), nin, src, backend),
	}
}

// NewWithEmbedding creates an Encoder over an existing embedding table. The
// table must have at least tok.VocabSize() rows.
func NewWithEmbedding[B tensor.Backend](tok tokenizer.Tokenizer, embed *nn.Embedding[B]) (*Encoder[B], error) {
	if embed.NumEmbed < tok.VocabSize() {
		return nil, fmt.Errorf("encode: embedding has %d rows, tokenizer %s needs %d",
			embed.NumEmbed, tok.Name(), tok.VocabSize())
	}
	return &Encoder[B]{tok: tok, embed: embed}, nil
}

// Dim returns nin, the width of every encoded element.
func (e *Encoder[B]) Dim() int {
	return e.embed.EmbedDim
}

// Tokenizer returns the tokenizer.
func (e *Encoder[B]) Tokenizer() tokenizer.Tokenizer {
	return e.tok
}

// Tokens returns the token ids of text.
func (e *Encoder[B]) Tokens(text string) ([]int32, error) {
	ids, err := e.tok.Encode(text)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return ids, nil
}

// Encode returns the (T, nin) sequence for text, one row per token.
// Text that yields no tokens is an error.
func (e *Encoder[B]) Encode(text string) (*tensor.Tensor[float32, B], error) {
	ids, err := e.Tokens(text)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("encode: text produced no tokens")
	}
	xs, err := e.embed.Lookup(ids)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return xs, nil
}

// EncodeBatch returns a batch-major (B, seqLen, nin) tensor. Longer texts
// are truncated to seqLen tokens; shorter ones are padded with zero rows
// at the end.
func (e *Encoder[B]) EncodeBatch(texts []string, seqLen int) (*tensor.Tensor[float32, B], error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("encode: empty batch")
	}
	if seqLen <= 0 {
		return nil, fmt.Errorf("encode: sequence length must be positive, got %d", seqLen)
	}

	dim := e.embed.EmbedDim
	data := make([]float32, len(texts)*seqLen*dim)
	for b, text := range texts {
		ids, err := e.Tokens(text)
		if err != nil {
			return nil, fmt.Errorf("batch element %d: %w", b, err)
		}
		if len(ids) > seqLen {
			ids = ids[:seqLen]
		}
		if len(ids) == 0 {
			continue
		}

		rows, err := e.embed.Lookup(ids)
		if err != nil {
			return nil, fmt.Errorf("encode: batch element %d: %w", b, err)
		}
		copy(data[b*seqLen*dim:], rows.Data())
	}

	return tensor.FromSlice(data, tensor.Shape{len(texts), seqLen, dim}, e.embed.Weight.Tensor().Backend())
}
