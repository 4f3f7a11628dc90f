package encode_test

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/recurrent/internal/backend/cpu"
	"github.com/born-ml/recurrent/internal/encode"
	"github.com/born-ml/recurrent/internal/nn"
	"github.com/born-ml/recurrent/internal/tensor"
	"github.com/born-ml/recurrent/internal/tokenizer"
)

func newEncoder(t *testing.T, nin int) *encode.Encoder[*cpu.CPUBackend] {
	t.Helper()
	return encode.New(tokenizer.NewByte(), nin, rand.New(rand.NewSource(1)), cpu.New())
}

func TestEncode(t *testing.T) {
	enc := newEncoder(t, 8)
	assert.Equal(t, 8, enc.Dim())

	xs, err := enc.Encode("hello")
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{5, 8}, xs.Shape())

	// Equal tokens give equal rows.
	assert.Equal(t, xs.Select(0, 2).Data(), xs.Select(0, 3).Data())
	assert.NotEqual(t, xs.Select(0, 0).Data(), xs.Select(0, 1).Data())

	_, err = enc.Encode("")
	assert.ErrorContains(t, err, "no tokens")
}

func TestEncode_Deterministic(t *testing.T) {
	a, err := newEncoder(t, 4).Encode("abc")
	require.NoError(t, err)
	b, err := newEncoder(t, 4).Encode("abc")
	require.NoError(t, err)
	assert.Equal(t, a.Data(), b.Data())
}

func TestEncodeBatch(t *testing.T) {
	enc := newEncoder(t, 3)

	x, err := enc.EncodeBatch([]string{"abcdef", "ab", ""}, 4)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{3, 4, 3}, x.Shape())

	full, err := enc.Encode("abcd")
	require.NoError(t, err)
	assert.Equal(t, full.Data(), x.Select(0, 0).Data(), "truncated to seqLen")

	short, err := enc.Encode("ab")
	require.NoError(t, err)
	row := x.Select(0, 1)
	assert.Equal(t, short.Data(), row.Data()[:6])
	assert.Equal(t, make([]float32, 6), row.Data()[6:], "padded with zeros")

	assert.Equal(t, make([]float32, 12), x.Select(0, 2).Data())

	_, err = enc.EncodeBatch(nil, 4)
	assert.Error(t, err)
	_, err = enc.EncodeBatch([]string{"a"}, 0)
	assert.Error(t, err)
}

type failingTokenizer struct{ *tokenizer.Byte }

func (failingTokenizer) Encode(string) ([]int32, error) { return nil, errors.New("boom") }

func TestEncode_TokenizerError(t *testing.T) {
	enc := encode.New[*cpu.CPUBackend](failingTokenizer{tokenizer.NewByte()}, 2, rand.New(rand.NewSource(1)), cpu.New())

	_, err := enc.Encode("x")
	assert.ErrorContains(t, err, "boom")
	_, err = enc.EncodeBatch([]string{"x"}, 2)
	assert.ErrorContains(t, err, "batch element 0")
}

func TestNewWithEmbedding(t *testing.T) {
	backend := cpu.New()

	_, err := encode.NewWithEmbedding(tokenizer.NewByte(), nn.NewEmbedding(10, 2, backend))
	assert.ErrorContains(t, err, "needs 256")

	enc, err := encode.NewWithEmbedding(tokenizer.NewByte(), nn.NewEmbedding(256, 2, backend))
	require.NoError(t, err)
	xs, err := enc.Encode("z")
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{1, 2}, xs.Shape())
}
