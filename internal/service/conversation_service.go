package service

import (
	"context"
	"log"
	"time"

	"drheal-be/internal/dto"
	"drheal-be/internal/entity"
	"drheal-be/internal/repository/specification"
	"drheal-be/internal/repository/unitofwork"
	"drheal-be/pkg/agent"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	defaultConversationTitle = "New Conversation"
	conversationTitleLength  = 50
)

// QueryProcessor is the agent workflow as seen by the conversation service.
type QueryProcessor interface {
	Process(ctx context.Context, query string) (*agent.AgentState, error)
	DisplayName(id agent.HandlerID) string
}

type IConversationService interface {
	List(ctx context.Context, userId uuid.UUID, page dto.PageQuery) ([]dto.ConversationResponse, error)
	Get(ctx context.Context, userId, id uuid.UUID) (*dto.ConversationDetailResponse, error)
	Delete(ctx context.Context, userId, id uuid.UUID) error
	Chat(ctx context.Context, userId uuid.UUID, req *dto.ConversationChatRequest) (*dto.ConversationChatResponse, error)
}

type conversationService struct {
	uowFactory       unitofwork.RepositoryFactory
	workflow         QueryProcessor
	publisherService IPublisherService
}

func NewConversationService(uowFactory unitofwork.RepositoryFactory, workflow QueryProcessor, publisherService IPublisherService) IConversationService {
	return &conversationService{
		uowFactory:       uowFactory,
		workflow:         workflow,
		publisherService: publisherService,
	}
}

func (s *conversationService) List(ctx context.Context, userId uuid.UUID, page dto.PageQuery) ([]dto.ConversationResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conversations, err := uow.ConversationRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "updated_at", Desc: true},
		specification.Pagination{Limit: page.Limit, Offset: page.Offset},
	)
	if err != nil {
		return nil, err
	}

	res := make([]dto.ConversationResponse, 0, len(conversations))
	for _, c := range conversations {
		count, err := uow.MessageRepository().Count(ctx, specification.ByConversationID{ConversationID: c.Id})
		if err != nil {
			return nil, err
		}
		res = append(res, dto.ConversationResponse{
			Id:           c.Id.String(),
			Title:        conversationTitle(c),
			CreatedAt:    c.CreatedAt.Format(time.RFC3339),
			UpdatedAt:    c.UpdatedAt.Format(time.RFC3339),
			MessageCount: count,
		})
	}
	return res, nil
}

func (s *conversationService) Get(ctx context.Context, userId, id uuid.UUID) (*dto.ConversationDetailResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conversation, err := s.findOwned(ctx, uow, userId, id)
	if err != nil {
		return nil, err
	}

	messages, err := uow.MessageRepository().FindAll(ctx,
		specification.ByConversationID{ConversationID: conversation.Id},
		specification.OrderBy{Field: "timestamp"},
	)
	if err != nil {
		return nil, err
	}

	items := make([]dto.MessageResponse, 0, len(messages))
	for _, m := range messages {
		items = append(items, dto.MessageResponse{
			Id:        m.Id.String(),
			Role:      string(m.Role),
			Content:   m.Content,
			AgentUsed: m.AgentUsed,
			Timestamp: m.Timestamp.Format(time.RFC3339),
		})
	}

	return &dto.ConversationDetailResponse{
		Id:        conversation.Id.String(),
		Title:     conversationTitle(conversation),
		CreatedAt: conversation.CreatedAt.Format(time.RFC3339),
		UpdatedAt: conversation.UpdatedAt.Format(time.RFC3339),
		Messages:  items,
	}, nil
}

func (s *conversationService) Delete(ctx context.Context, userId, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conversation, err := s.findOwned(ctx, uow, userId, id)
	if err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.MessageRepository().DeleteByConversationId(ctx, conversation.Id); err != nil {
		return err
	}
	if err := uow.ConversationRepository().Delete(ctx, conversation.Id); err != nil {
		return err
	}
	return uow.Commit()
}

// Chat stores the user turn, runs the workflow, then stores the assistant
// turn. The user turn stays recorded when the workflow fails.
func (s *conversationService) Chat(ctx context.Context, userId uuid.UUID, req *dto.ConversationChatRequest) (*dto.ConversationChatResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	var conversation *entity.Conversation
	if req.ConversationId != nil && *req.ConversationId != "" {
		id, err := uuid.Parse(*req.ConversationId)
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid conversation id")
		}
		conversation, err = s.findOwned(ctx, uow, userId, id)
		if err != nil {
			return nil, err
		}
	} else {
		title := truncateRunes(req.Query, conversationTitleLength)
		now := time.Now()
		conversation = &entity.Conversation{
			Id:        uuid.New(),
			UserId:    userId,
			Title:     &title,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := uow.ConversationRepository().Create(ctx, conversation); err != nil {
			return nil, err
		}
	}

	userMessage := &entity.Message{
		Id:             uuid.New(),
		ConversationId: conversation.Id,
		Role:           entity.MessageRoleUser,
		Content:        req.Query,
		Timestamp:      time.Now(),
	}
	if err := uow.MessageRepository().Create(ctx, userMessage); err != nil {
		return nil, err
	}

	state, err := s.workflow.Process(ctx, req.Query)
	if err != nil {
		return nil, err
	}

	agentUsed := s.workflow.DisplayName(state.QueryType)
	assistantMessage := &entity.Message{
		Id:             uuid.New(),
		ConversationId: conversation.Id,
		Role:           entity.MessageRoleAssistant,
		Content:        state.FinalResponse,
		AgentUsed:      &agentUsed,
		Timestamp:      time.Now(),
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.MessageRepository().Create(ctx, assistantMessage); err != nil {
		return nil, err
	}
	conversation.UpdatedAt = time.Now()
	if err := uow.ConversationRepository().Update(ctx, conversation); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	if state.QueryType == agent.EmergencyTriage {
		s.recordEmergency(ctx, userId, conversation.Id, req.Query, state.FinalResponse)
	}

	return &dto.ConversationChatResponse{
		ConversationId:       conversation.Id.String(),
		MessageId:            assistantMessage.Id.String(),
		Response:             state.FinalResponse,
		AgentUsed:            agentUsed,
		IsPotentialEmergency: state.IsPotentialEmergency(),
	}, nil
}

func (s *conversationService) recordEmergency(ctx context.Context, userId, conversationId uuid.UUID, query, assessment string) {
	if s.publisherService == nil {
		return
	}
	payload := dto.RecordEmergencyMessage{
		UserId:         userId.String(),
		ConversationId: conversationId.String(),
		Query:          query,
		Assessment:     assessment,
	}
	if err := s.publisherService.Publish(ctx, payload); err != nil {
		log.Printf("[WARN] Failed to publish medical history record for conversation %s: %v", conversationId, err)
	}
}

func (s *conversationService) findOwned(ctx context.Context, uow unitofwork.UnitOfWork, userId, id uuid.UUID) (*entity.Conversation, error) {
	conversation, err := uow.ConversationRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Conversation not found")
	}
	return conversation, nil
}

func conversationTitle(c *entity.Conversation) string {
	if c.Title == nil || *c.Title == "" {
		return defaultConversationTitle
	}
	return *c.Title
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
