package tokenizer

import (
	"fmt"
)

// Byte maps every UTF-8 byte of the text to its own token.
type Byte struct{}

// NewByte creates a byte-level tokenizer.
func NewByte() *Byte {
	return &Byte{}
}

// Encode returns the bytes of text as token IDs.
func (b *Byte) Encode(text string) ([]int32, error) {
	ids := make([]int32, len(text))
	for i := 0; i < len(text); i++ {
		ids[i] = int32(text[i])
	}
	return ids, nil
}

// Decode reassembles the bytes. IDs outside [0, 256) are an error.
func (b *Byte) Decode(tokens []int32) (string, error) {
	buf := make([]byte, len(tokens))
	for i, tok := range tokens {
		if tok < 0 || tok > 255 {
			return "", fmt.Errorf("byte tokenizer: token %d at position %d out of range", tok, i)
		}
		buf[i] = byte(tok)
	}
	return string(buf), nil
}

// VocabSize returns 256.
func (b *Byte) VocabSize() int {
	return 256
}

// Name returns "byte".
func (b *Byte) Name() string {
	return KindByte
}
