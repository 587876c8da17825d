package service

import (
	"context"
	"time"

	"drheal-be/internal/dto"
	"drheal-be/pkg/llm"
	"drheal-be/pkg/metrics"

	"gorm.io/gorm"
)

const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"
	statusUnchecked = "unchecked"

	llmCheckTimeout = 10 * time.Second
)

type IHealthService interface {
	Health() dto.HealthResponse
	Detailed(ctx context.Context, includeLLM bool) *dto.DetailedHealthResponse
}

type healthService struct {
	db       *gorm.DB
	stats    KnowledgeStats
	provider llm.LLMProvider
	metrics  *metrics.Recorder
}

func NewHealthService(db *gorm.DB, stats KnowledgeStats, provider llm.LLMProvider, rec *metrics.Recorder) IHealthService {
	return &healthService{
		db:       db,
		stats:    stats,
		provider: provider,
		metrics:  rec,
	}
}

func (s *healthService) Health() dto.HealthResponse {
	return dto.HealthResponse{Status: statusHealthy}
}

// Detailed checks the database and the similarity index on every call. The
// LLM is only called when includeLLM is set.
func (s *healthService) Detailed(ctx context.Context, includeLLM bool) *dto.DetailedHealthResponse {
	components := map[string]string{
		"database":     componentStatus(s.checkDatabase(ctx)),
		"vector_store": componentStatus(s.checkVectorStore(ctx)),
		"llm_service":  statusUnchecked,
	}
	if includeLLM {
		components["llm_service"] = componentStatus(s.checkLLM(ctx))
	}

	overall := statusHealthy
	for _, status := range components {
		if status == statusUnhealthy {
			overall = statusDegraded
		}
	}

	return &dto.DetailedHealthResponse{
		Status:     overall,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Components: components,
		Metrics:    s.metrics.Snapshot(),
	}
}

func (s *healthService) checkDatabase(ctx context.Context) bool {
	if s.db == nil {
		return false
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return false
	}
	return sqlDB.PingContext(ctx) == nil
}

func (s *healthService) checkVectorStore(ctx context.Context) bool {
	if s.stats == nil {
		return false
	}
	count, err := s.stats.Count(ctx)
	return err == nil && count > 0
}

func (s *healthService) checkLLM(ctx context.Context) bool {
	if s.provider == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, llmCheckTimeout)
	defer cancel()
	res, err := s.provider.Generate(ctx, "test", llm.WithMaxTokens(8))
	return err == nil && len(res) > 0
}

func componentStatus(ok bool) string {
	if ok {
		return statusHealthy
	}
	return statusUnhealthy
}
