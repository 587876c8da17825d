package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"
)

var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// Provider maps text to fixed-length, L2-normalized vectors.
// EncodeBatch returns vectors in input order. Encode("") yields the zero vector.
type Provider interface {
	Encode(ctx context.Context, text string) ([]float32, error)
	EncodeBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// Normalize scales a vector to unit length (magnitude = 1).
// Cosine distance in pgvector and the memory index assume normalized vectors.
func Normalize(vec []float32) []float32 {
	var magnitude float64
	for _, v := range vec {
		magnitude += float64(v) * float64(v)
	}
	magnitude = math.Sqrt(magnitude)

	// Avoid division by zero
	if magnitude == 0 {
		return vec
	}

	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = float32(float64(v) / magnitude)
	}
	return normalized
}

func zeroVector(dimension int) []float32 {
	return make([]float32, dimension)
}

func checkDimension(provider string, got, want int) error {
	if want > 0 && got != want {
		return fmt.Errorf("%w: %s returned %d values, expected %d", ErrDimensionMismatch, provider, got, want)
	}
	return nil
}

// encodeEach runs a single-text encoder over a batch, keeping input order.
func encodeEach(ctx context.Context, texts []string, encode func(context.Context, string) ([]float32, error)) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vec, err := encode(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("encode item %d: %w", i, err)
		}
		out[i] = vec
	}
	return out, nil
}

// EncodeNonEmpty sends only the non-empty texts to a batch backend and fills
// blank positions with zero vectors, preserving input order.
func EncodeNonEmpty(
	ctx context.Context,
	texts []string,
	dimension int,
	encode func(ctx context.Context, texts []string) ([][]float32, error),
) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var pending []string
	var positions []int
	for i, text := range texts {
		if text == "" {
			out[i] = zeroVector(dimension)
			continue
		}
		pending = append(pending, text)
		positions = append(positions, i)
	}
	if len(pending) == 0 {
		return out, nil
	}

	vectors, err := encode(ctx, pending)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(pending) {
		return nil, fmt.Errorf("embedding backend returned %d vectors for %d inputs", len(vectors), len(pending))
	}
	for j, pos := range positions {
		out[pos] = vectors[j]
	}
	return out, nil
}
