// Package tokenizer turns text into token ids for the sequence encoder.
//
// Implementations:
//   - Byte: one token per UTF-8 byte, vocabulary of 256, no external data
//   - TikToken: OpenAI BPE encodings (cl100k_base, p50k_base, r50k_base)
//
// Example usage:
//
//	tok, err := tokenizer.New("tiktoken", "cl100k_base")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ids, err := tok.Encode("Hello, world!")
//	if err != nil {
//	    log.Fatal(err)
//	}
package tokenizer
