package repository

import (
	"context"

	"smart-clinic-backend/internal/domain/entity"

	"github.com/google/uuid"
)

// DoctorSlotRepository is the read side of a doctor's slot catalog plus the
// admin-facing replace operation. The scheduling engine itself never writes
// through this interface.
type DoctorSlotRepository interface {
	// FindByDoctorID returns the doctor's catalog in catalog order
	// (position ascending).
	FindByDoctorID(ctx context.Context, doctorID uuid.UUID) ([]entity.DoctorSlot, error)

	// Replace swaps the doctor's whole catalog for the given ordered labels
	// in one transaction.
	Replace(ctx context.Context, doctorID uuid.UUID, labels []string) error
}
