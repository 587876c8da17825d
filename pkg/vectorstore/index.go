package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"math"
)

var (
	ErrDuplicateID       = errors.New("duplicate id in upsert batch")
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

// Record is one stored knowledge fragment.
type Record struct {
	ID       string
	Vector   []float32
	Text     string
	Metadata map[string]string
}

// Candidate is a query hit. Distance is cosine distance in [0,2].
type Candidate struct {
	ID       string
	Text     string
	Metadata map[string]string
	Distance float64
}

// Index stores records under stable ids and answers nearest-neighbour
// queries. Filter entries are equality constraints that must all match;
// k applies after filtering.
type Index interface {
	Upsert(ctx context.Context, records []Record) error
	Query(ctx context.Context, vector []float32, k int, filter map[string]string) ([]Candidate, error)
	Count(ctx context.Context) (int64, error)
	Reset(ctx context.Context) error
}

func checkBatch(records []Record, dimension int) error {
	seen := make(map[string]struct{}, len(records))
	for _, rec := range records {
		if _, dup := seen[rec.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateID, rec.ID)
		}
		seen[rec.ID] = struct{}{}
		if dimension > 0 && len(rec.Vector) != dimension {
			return fmt.Errorf("%w: record %s has %d values, index expects %d",
				ErrDimensionMismatch, rec.ID, len(rec.Vector), dimension)
		}
	}
	return nil
}

func matches(metadata, filter map[string]string) bool {
	for k, v := range filter {
		if metadata[k] != v {
			return false
		}
	}
	return true
}

// cosineDistance returns 1 - cos(a, b). A zero vector is orthogonal to everything.
func cosineDistance(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 1
	}
	d := 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
	if d < 0 {
		return 0
	}
	if d > 2 {
		return 2
	}
	return d
}

func copyMetadata(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
