package embedding

import (
	"context"
	"hash/fnv"
	"regexp"
	"strings"
)

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

// HashingProvider is an offline embedder: lower-cased word unigrams and
// bigrams are hashed into signed buckets and the result is L2-normalized.
// Texts sharing vocabulary land close together, which is enough for
// development and tests without a model server.
type HashingProvider struct {
	dimension int
}

func NewHashingProvider(dimension int) *HashingProvider {
	if dimension <= 0 {
		dimension = 768
	}
	return &HashingProvider{dimension: dimension}
}

func (p *HashingProvider) Dimension() int {
	return p.dimension
}

func (p *HashingProvider) Encode(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vec := zeroVector(p.dimension)
	tokens := tokenPattern.FindAllString(strings.ToLower(text), -1)
	if len(tokens) == 0 {
		return vec, nil
	}

	for i, tok := range tokens {
		p.add(vec, tok, 1)
		if i > 0 {
			p.add(vec, tokens[i-1]+" "+tok, 0.5)
		}
	}
	return Normalize(vec), nil
}

func (p *HashingProvider) EncodeBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return encodeEach(ctx, texts, p.Encode)
}

func (p *HashingProvider) add(vec []float32, feature string, weight float32) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(feature))
	sum := h.Sum64()

	bucket := int(sum % uint64(p.dimension))
	if sum&(1<<63) != 0 {
		weight = -weight
	}
	vec[bucket] += weight
}
