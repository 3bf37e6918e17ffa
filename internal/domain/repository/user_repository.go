package repository

import (
	"context"

	"smart-clinic-backend/internal/domain/entity"

	"github.com/google/uuid"
)

type UserRepository interface {
	// CreateWithPatientProfile inserts the user account and patient profile
	// in one transaction.
	CreateWithPatientProfile(ctx context.Context, user *entity.User, profile *entity.PatientProfile) error

	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
}
