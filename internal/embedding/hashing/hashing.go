package hashing

import (
	"math"
	"strings"

	"github.com/cespare/xxhash/v2"
)

const (
	// DefaultDimension is the vector size used by the résumé index.
	DefaultDimension = 384
	bucketModulus    = 10000
)

// Embedder is a bag-of-hashed-words sketch. Each of the first Dimension words
// adds hash(word) mod 10000, scaled to [0,1), to slot i mod Dimension.
// xxhash keeps the values identical across runs and processes.
type Embedder struct {
	dimension int
}

// NewEmbedder creates an embedder producing vectors of the given size.
func NewEmbedder(dimension int) *Embedder {
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	return &Embedder{dimension: dimension}
}

// Name returns the identifier of this embedder implementation.
func (e *Embedder) Name() string { return "hashing" }

// Dimension returns the dimensionality of the produced embedding vectors.
func (e *Embedder) Dimension() int { return e.dimension }

// Embed returns a unit-length vector, or the zero vector for text without words.
func (e *Embedder) Embed(text string) []float32 {
	acc := make([]float64, e.dimension)
	words := tokenize(text)
	if len(words) > e.dimension {
		words = words[:e.dimension]
	}
	for i, w := range words {
		bucket := xxhash.Sum64String(w) % bucketModulus
		acc[i%e.dimension] += float64(bucket) / bucketModulus
	}
	// L2 normalize
	norm := 0.0
	for _, v := range acc {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	vec := make([]float32, e.dimension)
	if norm == 0 {
		return vec
	}
	for i, v := range acc {
		vec[i] = float32(v / norm)
	}
	return vec
}

func tokenize(text string) []string {
	return strings.Fields(strings.ToLower(strings.TrimSpace(text)))
}
