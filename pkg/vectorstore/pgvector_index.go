package vectorstore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EmbeddingRow struct {
	Id        string            `gorm:"type:text;primaryKey"`
	Type      string            `gorm:"type:text;index"`
	Name      string            `gorm:"type:text"`
	Document  string            `gorm:"type:text"`
	Metadata  datatypes.JSONMap `gorm:"type:jsonb"`
	Embedding pgvector.Vector   `gorm:"type:vector"`
	CreatedAt time.Time         `gorm:"autoCreateTime"`
	UpdatedAt time.Time         `gorm:"autoUpdateTime"`
}

func (EmbeddingRow) TableName() string {
	return "knowledge_embeddings"
}

// PgvectorIndex keeps records in Postgres and ranks with the pgvector
// cosine distance operator. Ties on distance are ordered by id.
type PgvectorIndex struct {
	db        *gorm.DB
	dimension int
}

func NewPgvectorIndex(db *gorm.DB, dimension int) *PgvectorIndex {
	return &PgvectorIndex{db: db, dimension: dimension}
}

// Migrate enables the extension and creates the knowledge table.
func (p *PgvectorIndex) Migrate(ctx context.Context) error {
	db := p.db.WithContext(ctx)
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return fmt.Errorf("enable pgvector: %w", err)
	}
	return db.AutoMigrate(&EmbeddingRow{})
}

func (p *PgvectorIndex) Upsert(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	if err := checkBatch(records, p.dimension); err != nil {
		return err
	}

	rows := make([]*EmbeddingRow, len(records))
	for i, rec := range records {
		meta := datatypes.JSONMap{}
		for k, v := range rec.Metadata {
			meta[k] = v
		}
		rows[i] = &EmbeddingRow{
			Id:        rec.ID,
			Type:      rec.Metadata["type"],
			Name:      rec.Metadata["name"],
			Document:  rec.Text,
			Metadata:  meta,
			Embedding: pgvector.NewVector(rec.Vector),
		}
	}

	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).CreateInBatches(rows, 100).Error
	})
}

func (p *PgvectorIndex) Query(ctx context.Context, vector []float32, k int, filter map[string]string) ([]Candidate, error) {
	if k <= 0 {
		return []Candidate{}, nil
	}
	if p.dimension > 0 && len(vector) != p.dimension {
		return nil, fmt.Errorf("%w: query has %d values, index expects %d", ErrDimensionMismatch, len(vector), p.dimension)
	}

	type scored struct {
		EmbeddingRow
		Distance float64
	}
	var rows []scored

	queryVector := pgvector.NewVector(vector)
	query := p.db.WithContext(ctx).
		Model(&EmbeddingRow{}).
		Select("knowledge_embeddings.*, embedding <=> ? AS distance", queryVector)

	keys := make([]string, 0, len(filter))
	for key := range filter {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		query = query.Where("metadata ->> ? = ?", key, filter[key])
	}

	err := query.
		Order("distance ASC").
		Order("id ASC").
		Limit(k).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]Candidate, len(rows))
	for i, row := range rows {
		meta := make(map[string]string, len(row.Metadata))
		for key, v := range row.Metadata {
			meta[key] = fmt.Sprint(v)
		}
		out[i] = Candidate{
			ID:       row.Id,
			Text:     row.Document,
			Metadata: meta,
			Distance: row.Distance,
		}
	}
	return out, nil
}

func (p *PgvectorIndex) Count(ctx context.Context) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).Model(&EmbeddingRow{}).Count(&count).Error
	return count, err
}

func (p *PgvectorIndex) Reset(ctx context.Context) error {
	return p.db.WithContext(ctx).Where("1 = 1").Delete(&EmbeddingRow{}).Error
}
