package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"drheal-be/internal/dto"
	"drheal-be/internal/entity"
	"drheal-be/internal/pkg/mailer"
	"drheal-be/internal/pkg/serverutils"
	"drheal-be/internal/repository/unitofwork"
	"drheal-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

const (
	emergencySeverity = "severe"
	emergencyFlag     = "true"
)

// AlertNotifier pushes a live message to the open sessions of a user.
type AlertNotifier interface {
	Notify(userId uuid.UUID, kind string, data interface{})
}

const alertKindEmergency = "emergency_alert"

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService writes emergency turns into the medical history and fans
// them out to NATS, the user's live alert streams and the on-call mailbox.
// Every fan-out is optional.
type consumerService struct {
	subscriber     message.Subscriber
	topicName      string
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher events.Publisher
	notifier       AlertNotifier
	emailService   mailer.IEmailService
	alertTo        string
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	eventPublisher events.Publisher,
	notifier AlertNotifier,
	emailService mailer.IEmailService,
	alertTo string,
) IConsumerService {
	return &consumerService{
		subscriber:     subscriber,
		topicName:      topicName,
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
		notifier:       notifier,
		emailService:   emailService,
		alertTo:        alertTo,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.RecordEmergencyMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal medical history record: %v", err)
		msg.Ack()
		return
	}

	userId, err := uuid.Parse(payload.UserId)
	if err != nil {
		log.Printf("[ERROR] Medical history record has invalid user id %q", payload.UserId)
		msg.Ack()
		return
	}

	log.Printf("[INFO] Recording emergency assessment for user %s", payload.UserId)

	symptoms := payload.Query
	assessment := payload.Assessment
	severity := emergencySeverity
	detected := emergencyFlag
	entry := &entity.MedicalHistory{
		Id:                uuid.New(),
		UserId:            userId,
		Symptoms:          &symptoms,
		Severity:          &severity,
		AgentAssessment:   &assessment,
		EmergencyDetected: &detected,
		Date:              time.Now(),
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.MedicalHistoryRepository().Create(ctx, entry); err != nil {
		log.Printf("[ERROR] Failed to store medical history for user %s: %v", payload.UserId, err)
		msg.Nack()
		return
	}

	log.Printf("[SUCCESS] Medical history %s recorded for user %s", entry.Id, payload.UserId)
	msg.Ack()

	cs.announce(ctx, userId, payload, entry)
}

func (cs *consumerService) announce(ctx context.Context, userId uuid.UUID, payload dto.RecordEmergencyMessage, entry *entity.MedicalHistory) {
	if cs.eventPublisher != nil {
		event := events.NewEmergencyDetected(payload.UserId, payload.ConversationId, entry.Id.String(), payload.Query)
		if err := cs.eventPublisher.Publish(ctx, event); err != nil {
			log.Printf("[WARN] Failed to publish %s event: %v", events.TypeEmergencyDetected, err)
		}
	}

	if cs.notifier != nil {
		cs.notifier.Notify(userId, alertKindEmergency, dto.EmergencyAlertNotification{
			HistoryId:      entry.Id.String(),
			ConversationId: payload.ConversationId,
			Query:          payload.Query,
			Advisory:       serverutils.EmergencyAdvisory,
			DetectedAt:     entry.Date.UTC().Format(time.RFC3339),
		})
	}

	if cs.emailService != nil && cs.alertTo != "" {
		alert := mailer.EmergencyAlert{
			UserId:         payload.UserId,
			ConversationId: payload.ConversationId,
			Query:          payload.Query,
			Assessment:     payload.Assessment,
			DetectedAt:     entry.Date,
		}
		if err := cs.emailService.SendEmergencyAlert(cs.alertTo, alert); err != nil {
			log.Printf("[WARN] Failed to send emergency alert: %v", err)
		}
	}
}
