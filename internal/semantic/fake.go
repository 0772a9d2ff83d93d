package semantic

import (
	"context"
	"math"

	"github.com/zeebo/xxh3"
)

// FakeEmbedder is the deterministic, dependency-free embedder spec.md
// §9 requires for the property-based tests in §8: identical text
// always yields the identical vector, with no network call and no API
// key. It hashes each text with xxh3 and expands the hash into a
// unit-length vector via a simple linear congruential generator, so
// the same text always seeds the same sequence.
type FakeEmbedder struct {
	dim int
}

func NewFakeEmbedder(dim int) *FakeEmbedder {
	if dim <= 0 {
		dim = defaultDimension
	}
	return &FakeEmbedder{dim: dim}
}

func (e *FakeEmbedder) Dimension() int { return e.dim }

func (e *FakeEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = e.vectorFor(text)
	}
	return vectors, nil
}

func (e *FakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return e.vectorFor(text), nil
}

func (e *FakeEmbedder) vectorFor(text string) []float32 {
	state := xxh3.HashString(text)
	if state == 0 {
		state = 1
	}
	vec := make([]float32, e.dim)
	var sumSquares float64
	for i := range vec {
		// 64-bit LCG constants from Knuth's MMIX.
		state = state*6364136223846793005 + 1442695040888963407
		v := float64(state>>11) / float64(1<<53)
		v = v*2 - 1
		vec[i] = float32(v)
		sumSquares += v * v
	}
	norm := math.Sqrt(sumSquares)
	if norm == 0 {
		return vec
	}
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec
}
