package repository

import (
	"context"

	"smart-clinic-backend/internal/domain/entity"

	"github.com/google/uuid"
)

type PatientProfileRepository interface {
	// FindByUserID returns the profile with user preloaded, or nil when no
	// such patient exists.
	FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.PatientProfile, error)

	Update(ctx context.Context, profile *entity.PatientProfile) error
}
