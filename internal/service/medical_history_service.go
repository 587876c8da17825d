package service

import (
	"context"
	"time"

	"drheal-be/internal/dto"
	"drheal-be/internal/entity"
	"drheal-be/internal/repository/specification"
	"drheal-be/internal/repository/unitofwork"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IMedicalHistoryService interface {
	List(ctx context.Context, userId uuid.UUID, page dto.PageQuery) ([]dto.MedicalHistoryResponse, error)
	Get(ctx context.Context, userId, id uuid.UUID) (*dto.MedicalHistoryResponse, error)
	Delete(ctx context.Context, userId, id uuid.UUID) error
}

type medicalHistoryService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewMedicalHistoryService(uowFactory unitofwork.RepositoryFactory) IMedicalHistoryService {
	return &medicalHistoryService{uowFactory: uowFactory}
}

func (s *medicalHistoryService) List(ctx context.Context, userId uuid.UUID, page dto.PageQuery) ([]dto.MedicalHistoryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	entries, err := uow.MedicalHistoryRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "date", Desc: true},
		specification.Pagination{Limit: page.Limit, Offset: page.Offset},
	)
	if err != nil {
		return nil, err
	}

	res := make([]dto.MedicalHistoryResponse, 0, len(entries))
	for _, e := range entries {
		res = append(res, toMedicalHistoryResponse(e))
	}
	return res, nil
}

func (s *medicalHistoryService) Get(ctx context.Context, userId, id uuid.UUID) (*dto.MedicalHistoryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	entry, err := s.findOwned(ctx, uow, userId, id)
	if err != nil {
		return nil, err
	}
	res := toMedicalHistoryResponse(entry)
	return &res, nil
}

func (s *medicalHistoryService) Delete(ctx context.Context, userId, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	entry, err := s.findOwned(ctx, uow, userId, id)
	if err != nil {
		return err
	}
	return uow.MedicalHistoryRepository().Delete(ctx, entry.Id)
}

func (s *medicalHistoryService) findOwned(ctx context.Context, uow unitofwork.UnitOfWork, userId, id uuid.UUID) (*entity.MedicalHistory, error) {
	entry, err := uow.MedicalHistoryRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Medical history entry not found")
	}
	return entry, nil
}

func toMedicalHistoryResponse(e *entity.MedicalHistory) dto.MedicalHistoryResponse {
	return dto.MedicalHistoryResponse{
		Id:                e.Id.String(),
		Symptoms:          e.Symptoms,
		Diagnosis:         e.Diagnosis,
		Severity:          e.Severity,
		AgentAssessment:   e.AgentAssessment,
		EmergencyDetected: e.EmergencyDetected,
		Date:              e.Date.Format(time.RFC3339),
	}
}
