package repository

import (
	"context"

	"smart-clinic-backend/internal/domain/entity"

	"github.com/google/uuid"
)

type PrescriptionRepository interface {
	Create(ctx context.Context, prescription *entity.Prescription) error
	FindByAppointmentID(ctx context.Context, appointmentID uuid.UUID) ([]entity.Prescription, error)
}
