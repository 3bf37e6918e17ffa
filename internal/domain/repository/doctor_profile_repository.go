package repository

import (
	"context"

	"smart-clinic-backend/internal/domain/entity"

	"github.com/google/uuid"
)

type DoctorProfileRepository interface {
	// CreateWithUser inserts the doctor's user account and profile in one
	// transaction.
	CreateWithUser(ctx context.Context, profile *entity.DoctorProfile) error

	// FindByUserID returns the profile with user and slot catalog preloaded,
	// or nil when no such doctor exists.
	FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.DoctorProfile, error)

	FindAll(ctx context.Context) ([]entity.DoctorProfile, error)

	// Search filters active doctors by name and specialty (ILIKE substring).
	// The AM/PM part of the filter is applied by the caller against the
	// preloaded catalogs.
	Search(ctx context.Context, filter *entity.DoctorFilter) ([]entity.DoctorProfile, error)

	Update(ctx context.Context, profile *entity.DoctorProfile) error

	// DeleteCascade removes the doctor's appointments, slot catalog, profile
	// and user account in one transaction. Returns affected profile rows.
	DeleteCascade(ctx context.Context, userID uuid.UUID) (int64, error)
}
