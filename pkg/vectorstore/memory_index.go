package vectorstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryIndex is an exhaustive in-process index. Ties on distance keep
// insertion order; replacing a record keeps its original position.
type MemoryIndex struct {
	mu        sync.RWMutex
	dimension int
	order     []string
	records   map[string]Record
}

// NewMemoryIndex creates an index; dimension 0 accepts the first vector length seen.
func NewMemoryIndex(dimension int) *MemoryIndex {
	return &MemoryIndex{
		dimension: dimension,
		records:   make(map[string]Record),
	}
}

func (m *MemoryIndex) Upsert(ctx context.Context, records []Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	dim := m.dimension
	if dim == 0 && len(records) > 0 {
		dim = len(records[0].Vector)
	}
	if err := checkBatch(records, dim); err != nil {
		return err
	}
	m.dimension = dim

	for _, rec := range records {
		if _, exists := m.records[rec.ID]; !exists {
			m.order = append(m.order, rec.ID)
		}
		vec := make([]float32, len(rec.Vector))
		copy(vec, rec.Vector)
		m.records[rec.ID] = Record{
			ID:       rec.ID,
			Vector:   vec,
			Text:     rec.Text,
			Metadata: copyMetadata(rec.Metadata),
		}
	}
	return nil
}

func (m *MemoryIndex) Query(ctx context.Context, vector []float32, k int, filter map[string]string) ([]Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if k <= 0 {
		return []Candidate{}, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.records) > 0 && len(vector) != m.dimension {
		return nil, fmt.Errorf("%w: query has %d values, index expects %d", ErrDimensionMismatch, len(vector), m.dimension)
	}

	candidates := make([]Candidate, 0, len(m.order))
	for _, id := range m.order {
		rec := m.records[id]
		if !matches(rec.Metadata, filter) {
			continue
		}
		candidates = append(candidates, Candidate{
			ID:       rec.ID,
			Text:     rec.Text,
			Metadata: copyMetadata(rec.Metadata),
			Distance: cosineDistance(vector, rec.Vector),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Distance < candidates[j].Distance
	})
	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates, nil
}

func (m *MemoryIndex) Count(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.records)), nil
}

func (m *MemoryIndex) Reset(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.order = nil
	m.records = make(map[string]Record)
	return nil
}
