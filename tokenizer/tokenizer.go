// Package tokenizer provides text tokenization for the sequence encoder.
//
// Supported tokenizers:
//   - Byte: one token per UTF-8 byte
//   - TikToken: OpenAI BPE tokenizers (GPT-3, GPT-4)
//
// Example usage:
//
//	import "github.com/born-ml/recurrent/tokenizer"
//
//	tok, err := tokenizer.NewTikToken("cl100k_base")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	tokens, err := tok.Encode("Hello, world!")
//	if err != nil {
//	    log.Fatal(err)
//	}
package tokenizer

import (
	"github.com/born-ml/recurrent/internal/tokenizer"
)

// Tokenizer is the core interface for text tokenization.
type Tokenizer = tokenizer.Tokenizer

// Byte is the byte-level tokenizer.
type Byte = tokenizer.Byte

// TikToken wraps OpenAI's tiktoken BPE tokenizer.
type TikToken = tokenizer.TikToken

// Tokenizer kinds accepted by New.
const (
	KindByte     = tokenizer.KindByte
	KindTikToken = tokenizer.KindTikToken
)

// New builds a tokenizer by kind ("byte" or "tiktoken"). encoding selects
// the tiktoken encoding and is ignored otherwise.
func New(kind, encoding string) (Tokenizer, error) {
	return tokenizer.New(kind, encoding)
}

// NewByte creates a byte-level tokenizer.
func NewByte() *Byte {
	return tokenizer.NewByte()
}

// NewTikToken creates a tiktoken tokenizer for the given encoding.
//
// Supported encodings: "cl100k_base", "p50k_base", "r50k_base".
func NewTikToken(encoding string) (*TikToken, error) {
	return tokenizer.NewTikToken(encoding)
}

// NewTikTokenForModel creates a tiktoken tokenizer for a model name such as
// "gpt-4".
func NewTikTokenForModel(model string) (*TikToken, error) {
	return tokenizer.NewTikTokenForModel(model)
}
