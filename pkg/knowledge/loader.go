package knowledge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"drheal-be/internal/pkg/logger"
	"drheal-be/pkg/embedding"
	"drheal-be/pkg/metrics"
	"drheal-be/pkg/vectorstore"
)

const (
	SymptomsFile  = "symptoms.json"
	DiseasesFile  = "diseases.json"
	ReferenceFile = "reference_facts.json"

	defaultBatchSize = 32
)

var ErrInvalidData = errors.New("invalid knowledge data")

// Result reports what a Load call did. When AlreadyLoaded is non-zero the
// index was left untouched.
type Result struct {
	AlreadyLoaded int64
	Counts        map[string]int
	Total         int64
}

func (r Result) Skipped() bool {
	return r.AlreadyLoaded > 0
}

// Summary is the JSON-friendly form used by the CLI and ingest events.
func (r Result) Summary() map[string]int64 {
	if r.Skipped() {
		return map[string]int64{"already_loaded": r.AlreadyLoaded}
	}
	out := map[string]int64{
		"symptoms": int64(r.Counts[CategorySymptom]),
		"diseases": int64(r.Counts[CategoryDisease]),
		"total":    r.Total,
	}
	extras := map[string]string{
		CategoryICD10:             "icd10",
		CategoryMedication:        "medications",
		CategorySymptomMapping:    "symptom_mappings",
		CategoryEmergencyProtocol: "emergency_protocols",
	}
	for category, key := range extras {
		if n := r.Counts[category]; n > 0 {
			out[key] = int64(n)
		}
	}
	return out
}

type Loader struct {
	dataDir   string
	provider  embedding.Provider
	index     vectorstore.Index
	logger    logger.ILogger
	metrics   *metrics.Recorder
	BatchSize int
}

func NewLoader(dataDir string, provider embedding.Provider, index vectorstore.Index, log logger.ILogger, rec *metrics.Recorder) *Loader {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Loader{
		dataDir:   dataDir,
		provider:  provider,
		index:     index,
		logger:    log,
		metrics:   rec,
		BatchSize: defaultBatchSize,
	}
}

// Load ingests the knowledge files. Without reset it is a no-op on a
// non-empty index. All files are parsed before anything is written, so a bad
// file never leaves a reset index behind, and a failed embed or upsert leaves
// the index empty.
func (l *Loader) Load(ctx context.Context, reset bool) (Result, error) {
	if !reset {
		current, err := l.index.Count(ctx)
		if err != nil {
			return Result{}, fmt.Errorf("count index: %w", err)
		}
		if current > 0 {
			l.logger.Info("KNOWLEDGE", "Vector store already populated, skipping load", map[string]interface{}{
				"documents": current,
			})
			return Result{AlreadyLoaded: current}, nil
		}
	}

	groups, err := l.readAll()
	if err != nil {
		return Result{}, err
	}

	if reset {
		l.logger.Info("KNOWLEDGE", "Resetting vector store", nil)
		if err := l.index.Reset(ctx); err != nil {
			return Result{}, fmt.Errorf("reset index: %w", err)
		}
	}

	result := Result{Counts: map[string]int{}}
	for _, category := range []string{
		CategorySymptom,
		CategoryDisease,
		CategoryICD10,
		CategoryMedication,
		CategorySymptomMapping,
		CategoryEmergencyProtocol,
	} {
		docs := groups[category]
		if len(docs) == 0 {
			continue
		}
		if err := l.ingest(ctx, docs); err != nil {
			l.discardPartial(ctx, category, err)
			return Result{}, fmt.Errorf("ingest %s: %w", category, err)
		}
		result.Counts[category] = len(docs)
		l.metrics.Ingested(category, len(docs))
		l.logger.Info("KNOWLEDGE", "Ingested category", map[string]interface{}{
			"category": category,
			"count":    len(docs),
		})
	}

	result.Total, err = l.index.Count(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("count index: %w", err)
	}
	l.logger.Info("KNOWLEDGE", "Knowledge load complete", map[string]interface{}{"total": result.Total})
	return result, nil
}

func (l *Loader) readAll() (map[string][]Document, error) {
	var symptoms map[string]Symptom
	if err := l.readJSON(SymptomsFile, &symptoms); err != nil {
		return nil, err
	}
	var diseases map[string]Disease
	if err := l.readJSON(DiseasesFile, &diseases); err != nil {
		return nil, err
	}

	groups := map[string][]Document{
		CategorySymptom: SymptomDocuments(symptoms),
		CategoryDisease: DiseaseDocuments(diseases),
	}

	var facts ReferenceFacts
	err := l.readJSON(ReferenceFile, &facts)
	switch {
	case errors.Is(err, os.ErrNotExist):
		l.logger.Debug("KNOWLEDGE", "No reference facts file", nil)
	case err != nil:
		return nil, err
	default:
		for category, docs := range ReferenceDocuments(facts) {
			groups[category] = docs
		}
	}
	return groups, nil
}

func (l *Loader) readJSON(name string, out interface{}) error {
	path := filepath.Join(l.dataDir, name)
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidData, name, err)
	}
	return nil
}

// discardPartial empties the index after a failed ingest so the next
// non-reset load starts over instead of reporting AlreadyLoaded. A load only
// writes into an index that was empty or has just been reset.
func (l *Loader) discardPartial(ctx context.Context, category string, cause error) {
	l.logger.Warn("KNOWLEDGE", "Ingest failed, discarding partial load", map[string]interface{}{
		"category": category,
		"error":    cause.Error(),
	})
	if err := l.index.Reset(context.WithoutCancel(ctx)); err != nil {
		l.logger.Error("KNOWLEDGE", "Failed to discard partial load", map[string]interface{}{"error": err.Error()})
	}
}

func (l *Loader) ingest(ctx context.Context, docs []Document) error {
	size := l.BatchSize
	if size <= 0 {
		size = defaultBatchSize
	}

	for start := 0; start < len(docs); start += size {
		end := start + size
		if end > len(docs) {
			end = len(docs)
		}
		batch := docs[start:end]

		texts := make([]string, len(batch))
		for i, d := range batch {
			texts[i] = d.Text
		}
		vectors, err := l.provider.EncodeBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed batch: %w", err)
		}

		records := make([]vectorstore.Record, len(batch))
		for i, d := range batch {
			records[i] = vectorstore.Record{
				ID:       d.ID,
				Vector:   vectors[i],
				Text:     d.Text,
				Metadata: d.Metadata,
			}
		}
		if err := l.index.Upsert(ctx, records); err != nil {
			return err
		}
	}
	return nil
}
