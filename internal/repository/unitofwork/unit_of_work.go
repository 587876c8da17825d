package unitofwork

import (
	"context"

	"drheal-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	ConversationRepository() contract.ConversationRepository
	MessageRepository() contract.MessageRepository
	MedicalHistoryRepository() contract.MedicalHistoryRepository
}
