package repository

import (
	"context"
	"time"

	"smart-clinic-backend/internal/domain/entity"

	"github.com/google/uuid"
)

type AppointmentRepository interface {
	// Create persists a new appointment. If another scheduled appointment
	// already occupies the same (doctor, date, slot) triple the underlying
	// store rejects the insert with a unique constraint violation.
	Create(ctx context.Context, appointment *entity.Appointment) error

	FindByID(ctx context.Context, id uuid.UUID) (*entity.Appointment, error)

	// RescheduleIfScheduled writes the appointment's doctor, time, date and
	// slot label only while the row is still in the scheduled state, so a
	// concurrent cancel or completion is never overwritten. Returns affected
	// rows: 1 = rescheduled, 0 = the appointment already left the scheduled
	// state (or does not exist). Moving onto an occupied slot fails with the
	// same unique constraint violation as Create.
	RescheduleIfScheduled(ctx context.Context, appointment *entity.Appointment) (int64, error)

	// UpdateStatusIfScheduled atomically moves an appointment out of the
	// scheduled state. Returns affected rows: 1 = transitioned, 0 = the
	// appointment was not in scheduled state (or does not exist).
	UpdateStatusIfScheduled(ctx context.Context, id uuid.UUID, status entity.AppointmentStatus) (int64, error)

	// FindScheduledByDoctorAndDate returns the scheduled appointments that
	// occupy slots of a doctor on a calendar date.
	FindScheduledByDoctorAndDate(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]entity.Appointment, error)

	// FindByDoctorAndTimeRange returns all appointments of a doctor with
	// appointment_time within [start, end], any status, patient preloaded.
	FindByDoctorAndTimeRange(ctx context.Context, doctorID uuid.UUID, start, end time.Time) ([]entity.Appointment, error)

	// FindByPatientID returns all appointments of a patient in storage order.
	FindByPatientID(ctx context.Context, patientID uuid.UUID) ([]entity.Appointment, error)

	// FindByPatientFiltered returns a patient's appointments, optionally
	// narrowed by status and/or a case-insensitive doctor-name substring.
	// When status is non-nil results are ordered by appointment_time
	// ascending, otherwise storage order is kept.
	FindByPatientFiltered(ctx context.Context, patientID uuid.UUID, status *entity.AppointmentStatus, doctorName string) ([]entity.Appointment, error)

	// DeleteByDoctorID removes all appointments of a doctor. Used by the
	// doctor cascade delete.
	DeleteByDoctorID(ctx context.Context, doctorID uuid.UUID) error
}
