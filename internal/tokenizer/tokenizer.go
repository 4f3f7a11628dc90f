package tokenizer

import "fmt"

// Tokenizer is the core interface for text tokenization.
type Tokenizer interface {
	// Encode converts text to token IDs.
	Encode(text string) ([]int32, error)

	// Decode converts token IDs back to text.
	Decode(tokens []int32) (string, error)

	// VocabSize returns an upper bound on token IDs: every ID produced by
	// Encode is in [0, VocabSize).
	VocabSize() int

	// Name returns the tokenizer name.
	Name() string
}

// Kind names accepted by New.
const (
	KindByte     = "byte"
	KindTikToken = "tiktoken"
)

// New builds a tokenizer by kind. encoding is only used by KindTikToken.
func New(kind, encoding string) (Tokenizer, error) {
	switch kind {
	case KindByte:
		return NewByte(), nil
	case KindTikToken:
		return NewTikToken(encoding)
	default:
		return nil, fmt.Errorf("unknown tokenizer %q (want %q or %q)", kind, KindByte, KindTikToken)
	}
}
