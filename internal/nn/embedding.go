package nn

import (
	"fmt"

	"github.com/born-ml/recurrent/internal/tensor"
)

// Embedding maps token ids to dense vectors; it turns token streams into
// the (T, nin) sequences the recurrent drivers consume.
//
//	embed := nn.NewEmbedding[B](256, 8, backend)
//	xs, err := embed.Lookup([]int32{104, 105}) // (2, 8)
type Embedding[B tensor.Backend] struct {
	Weight   *Parameter[B] // Embedding weight matrix [NumEmbed, EmbedDim]
	NumEmbed int           // Number of embeddings (vocabulary size)
	EmbedDim int           // Embedding dimension (vector size)
}

// NewEmbedding creates an Embedding with weights drawn from N(0, 1) using
// the package-level random source.
func NewEmbedding[B tensor.Backend](numEmbeddings, embeddingDim int, backend B) *Embedding[B] {
	weight := tensor.Randn[float32](tensor.Shape{numEmbeddings, embeddingDim}, backend)
	return NewEmbeddingWithWeight(weight)
}

// NewEmbeddingFrom is NewEmbedding with an explicit random source, for
// reproducible tables.
func NewEmbeddingFrom[B tensor.Backend](numEmbeddings, embeddingDim int, src tensor.NormalSource, backend B) *Embedding[B] {
	weight := tensor.RandnFrom[float32](tensor.Shape{numEmbeddings, embeddingDim}, src, backend)
	return NewEmbeddingWithWeight(weight)
}

// NewEmbeddingWithWeight creates an Embedding layer with pre-initialized
// weights of shape [numEmbeddings, embeddingDim].
func NewEmbeddingWithWeight[B tensor.Backend](weight *tensor.Tensor[float32, B]) *Embedding[B] {
	shape := weight.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("embedding weight must be 2D, got shape %v", shape))
	}

	return &Embedding[B]{
		Weight:   NewParameter[B]("embedding.weight", weight),
		NumEmbed: shape[0],
		EmbedDim: shape[1],
	}
}

// Lookup returns the rows for ids as a [len(ids), EmbedDim] tensor.
// Returns an error if ids is empty or any id is outside [0, NumEmbed).
func (e *Embedding[B]) Lookup(ids []int32) (*tensor.Tensor[float32, B], error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("embedding: no ids to look up")
	}

	table := e.Weight.Tensor().Data()
	out := make([]float32, len(ids)*e.EmbedDim)
	for i, id := range ids {
		if id < 0 || int(id) >= e.NumEmbed {
			return nil, fmt.Errorf("embedding: id %d at position %d out of range [0, %d)", id, i, e.NumEmbed)
		}
		row := int(id) * e.EmbedDim
		copy(out[i*e.EmbedDim:(i+1)*e.EmbedDim], table[row:row+e.EmbedDim])
	}

	return tensor.FromSlice(out, tensor.Shape{len(ids), e.EmbedDim}, e.Weight.Tensor().Backend())
}

// Forward looks up an int32 index tensor of any shape [...] and returns
// [..., EmbedDim].
//
// Panics if any index is out of bounds [0, NumEmbed).
func (e *Embedding[B]) Forward(indices *tensor.Tensor[int32, B]) *tensor.Tensor[float32, B] {
	flat, err := e.Lookup(indices.Data())
	if err != nil {
		panic(err.Error())
	}
	return flat.Reshape(append(indices.Shape().Clone(), e.EmbedDim)...)
}

// Parameters returns the embedding table.
func (e *Embedding[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{e.Weight}
}
