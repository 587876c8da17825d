package implementation

import (
	"context"
	"errors"

	"drheal-be/internal/entity"
	"drheal-be/internal/mapper"
	"drheal-be/internal/model"
	"drheal-be/internal/repository/contract"
	"drheal-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MedicalHistoryRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.MedicalHistoryMapper
}

func NewMedicalHistoryRepository(db *gorm.DB) contract.MedicalHistoryRepository {
	return &MedicalHistoryRepositoryImpl{
		db:     db,
		mapper: mapper.NewMedicalHistoryMapper(),
	}
}

func (r *MedicalHistoryRepositoryImpl) Create(ctx context.Context, history *entity.MedicalHistory) error {
	if history.Id == uuid.Nil {
		history.Id = uuid.New()
	}
	m := r.mapper.ToModel(history)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*history = *r.mapper.ToEntity(m)
	return nil
}

func (r *MedicalHistoryRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.MedicalHistory{}, "id = ?", id).Error
}

func (r *MedicalHistoryRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.MedicalHistory, error) {
	var m model.MedicalHistory
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *MedicalHistoryRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.MedicalHistory, error) {
	var models []*model.MedicalHistory
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.MedicalHistory, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}
