package contract

import (
	"context"

	"drheal-be/internal/entity"
	"drheal-be/internal/repository/specification"

	"github.com/google/uuid"
)

type MedicalHistoryRepository interface {
	Create(ctx context.Context, history *entity.MedicalHistory) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.MedicalHistory, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.MedicalHistory, error)
}
