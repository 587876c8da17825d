package service

import (
	"context"
	"log"

	"drheal-be/pkg/events"
	pktNats "drheal-be/pkg/nats"
)

const knowledgeIngestedConsumer = "drheal-search-cache"

type EventSubscriber interface {
	Subscribe(ctx context.Context, eventType, durableName string, handler pktNats.EventHandler) error
}

type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

type IKnowledgeEventService interface {
	Start(ctx context.Context) error
}

// knowledgeEventService drops cached search results whenever a knowledge
// load finishes, in this process or in the ingest CLI.
type knowledgeEventService struct {
	subscriber EventSubscriber
	cache      CacheInvalidator
}

func NewKnowledgeEventService(subscriber EventSubscriber, cache CacheInvalidator) IKnowledgeEventService {
	return &knowledgeEventService{
		subscriber: subscriber,
		cache:      cache,
	}
}

func (s *knowledgeEventService) Start(ctx context.Context) error {
	return s.subscriber.Subscribe(ctx, events.TypeKnowledgeIngested, knowledgeIngestedConsumer, s.handleIngested)
}

func (s *knowledgeEventService) handleIngested(ctx context.Context, event events.Event) error {
	log.Printf("[INFO] Knowledge ingested %v, flushing search cache", event.Payload())
	if err := s.cache.Invalidate(ctx); err != nil {
		log.Printf("[ERROR] Failed to flush search cache: %v", err)
		return err
	}
	return nil
}
