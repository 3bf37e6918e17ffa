package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"smart-clinic-backend/internal/converter"
	"smart-clinic-backend/internal/delivery/dto"
	"smart-clinic-backend/internal/delivery/http/middleware"
	"smart-clinic-backend/internal/domain/entity"
	"smart-clinic-backend/internal/domain/repository"
	"smart-clinic-backend/internal/service"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
)

var (
	ErrAppointmentNotFound    = errors.New("appointment not found")
	ErrSlotUnavailable        = errors.New("slot is no longer available")
	ErrInvalidAppointmentTime = errors.New("appointment time is invalid")
	ErrNotAppointmentOwner    = errors.New("appointment belongs to another patient")
	ErrNotAppointmentDoctor   = errors.New("appointment belongs to another doctor")
	ErrInvalidTransition      = errors.New("appointment is not in a scheduled state")
	ErrStorageUnavailable     = errors.New("storage unavailable")
	ErrUnauthenticated        = errors.New("missing authentication context")
)

// storageErr wraps unexpected persistence failures so handlers can map them
// to a 503 without matching driver error types.
func storageErr(err error) error {
	return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
}

func isDuplicateKeyError(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && strings.Contains(pgErr.ConstraintName, constraint)
	}
	return false
}

func isForeignKeyError(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503" && strings.Contains(pgErr.ConstraintName, constraint)
	}
	return false
}

type AppointmentUsecase interface {
	Book(ctx context.Context, request *dto.BookAppointmentRequest) (*dto.AppointmentResponse, error)
	Update(ctx context.Context, appointmentID uuid.UUID, request *dto.UpdateAppointmentRequest) (*dto.AppointmentResponse, error)
	Cancel(ctx context.Context, appointmentID uuid.UUID) error
	MarkCompleted(ctx context.Context, appointmentID uuid.UUID) (*dto.AppointmentResponse, error)
}

type appointmentUsecase struct {
	log         *logrus.Logger
	apptRepo    repository.AppointmentRepository
	doctorRepo  repository.DoctorProfileRepository
	patientRepo repository.PatientProfileRepository
	locker      service.SlotLocker
	audit       service.AuditService
}

func NewAppointmentUsecase(
	log *logrus.Logger,
	apptRepo repository.AppointmentRepository,
	doctorRepo repository.DoctorProfileRepository,
	patientRepo repository.PatientProfileRepository,
	locker service.SlotLocker,
	audit service.AuditService,
) AppointmentUsecase {
	return &appointmentUsecase{
		log:         log,
		apptRepo:    apptRepo,
		doctorRepo:  doctorRepo,
		patientRepo: patientRepo,
		locker:      locker,
		audit:       audit,
	}
}

// Book creates a scheduled appointment for the authenticated patient.
// Flow:
// 1. Parse and validate the requested time (must be in the future).
// 2. Resolve the doctor and check the slot exists in their catalog.
// 3. Take the per-slot lock, re-check occupancy, then insert.
// The partial unique index on scheduled slots backs the lock, so a lost
// race surfaces as a duplicate key error and maps to ErrSlotUnavailable.
func (u *appointmentUsecase) Book(ctx context.Context, request *dto.BookAppointmentRequest) (*dto.AppointmentResponse, error) {
	patientID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	patient, err := u.patientRepo.FindByUserID(ctx, patientID)
	if err != nil {
		u.log.Warnf("Failed to find patient %s: %+v", patientID, err)
		return nil, storageErr(err)
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}

	appointmentTime, err := parseAppointmentTime(request.AppointmentTime)
	if err != nil {
		return nil, err
	}

	doctor, err := u.doctorRepo.FindByUserID(ctx, request.DoctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", request.DoctorID, err)
		return nil, storageErr(err)
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	slotLabel := appointmentTime.Format(entity.SlotLabelFormat)
	if !doctor.OffersSlot(slotLabel) {
		return nil, ErrInvalidAppointmentTime
	}

	appointment := &entity.Appointment{
		ID:        uuid.New(),
		DoctorID:  doctor.UserID,
		PatientID: patientID,
		Status:    entity.AppointmentStatusScheduled,
	}
	appointment.SetAppointmentTime(appointmentTime)

	key := service.SlotKey{
		DoctorID:  doctor.UserID,
		Date:      appointment.AppointmentDate.Format("2006-01-02"),
		SlotLabel: slotLabel,
	}

	err = u.locker.WithSlotLock(ctx, key, func(lockCtx context.Context) error {
		taken, err := u.slotOccupied(lockCtx, doctor.UserID, appointment.AppointmentDate, slotLabel, uuid.Nil)
		if err != nil {
			return err
		}
		if taken {
			return ErrSlotUnavailable
		}

		if err := u.apptRepo.Create(lockCtx, appointment); err != nil {
			if isDuplicateKeyError(err, "scheduled_slot") {
				return ErrSlotUnavailable
			}
			u.log.Warnf("Failed to create appointment: %+v", err)
			return storageErr(err)
		}
		return nil
	})
	if errors.Is(err, service.ErrSlotLockNotAcquired) {
		return nil, ErrSlotUnavailable
	}
	if err != nil {
		return nil, err
	}

	u.audit.LogCreate(ctx, &patientID, entity.AuditActionAppointmentBook, "appointment", appointment.ID.String(), appointment)

	return u.loadResponse(ctx, appointment.ID)
}

// Update reschedules a scheduled appointment owned by the caller. The new
// slot is claimed under the same lock discipline as Book, and the write is
// conditional on the row still being scheduled. A cancel or completion that
// commits first wins the race and the reschedule reports ErrInvalidTransition.
func (u *appointmentUsecase) Update(ctx context.Context, appointmentID uuid.UUID, request *dto.UpdateAppointmentRequest) (*dto.AppointmentResponse, error) {
	patientID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	appointment, err := u.apptRepo.FindByID(ctx, appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", appointmentID, err)
		return nil, storageErr(err)
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	if appointment.PatientID != patientID {
		return nil, ErrNotAppointmentOwner
	}
	if !appointment.IsScheduled() {
		return nil, ErrInvalidTransition
	}

	appointmentTime, err := parseAppointmentTime(request.AppointmentTime)
	if err != nil {
		return nil, err
	}

	doctor, err := u.doctorRepo.FindByUserID(ctx, request.DoctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", request.DoctorID, err)
		return nil, storageErr(err)
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	slotLabel := appointmentTime.Format(entity.SlotLabelFormat)
	if !doctor.OffersSlot(slotLabel) {
		return nil, ErrInvalidAppointmentTime
	}

	old := *appointment
	appointment.DoctorID = doctor.UserID
	appointment.SetAppointmentTime(appointmentTime)

	sameSlot := old.DoctorID == appointment.DoctorID &&
		old.AppointmentDate.Equal(appointment.AppointmentDate) &&
		old.SlotLabel == appointment.SlotLabel
	if sameSlot {
		return u.loadResponse(ctx, appointment.ID)
	}

	key := service.SlotKey{
		DoctorID:  doctor.UserID,
		Date:      appointment.AppointmentDate.Format("2006-01-02"),
		SlotLabel: slotLabel,
	}

	err = u.locker.WithSlotLock(ctx, key, func(lockCtx context.Context) error {
		taken, err := u.slotOccupied(lockCtx, doctor.UserID, appointment.AppointmentDate, slotLabel, appointment.ID)
		if err != nil {
			return err
		}
		if taken {
			return ErrSlotUnavailable
		}

		rows, err := u.apptRepo.RescheduleIfScheduled(lockCtx, appointment)
		if err != nil {
			if isDuplicateKeyError(err, "scheduled_slot") {
				return ErrSlotUnavailable
			}
			u.log.Warnf("Failed to update appointment %s: %+v", appointment.ID, err)
			return storageErr(err)
		}
		if rows == 0 {
			return ErrInvalidTransition
		}
		return nil
	})
	if errors.Is(err, service.ErrSlotLockNotAcquired) {
		return nil, ErrSlotUnavailable
	}
	if err != nil {
		return nil, err
	}

	u.audit.LogUpdate(ctx, &patientID, entity.AuditActionAppointmentUpdate, "appointment", appointment.ID.String(), old, appointment)

	return u.loadResponse(ctx, appointment.ID)
}

// Cancel moves a scheduled appointment owned by the caller to cancelled.
// Cancelling is not idempotent. A second cancel fails the conditional
// status update and reports ErrInvalidTransition.
func (u *appointmentUsecase) Cancel(ctx context.Context, appointmentID uuid.UUID) error {
	patientID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return ErrUnauthenticated
	}

	appointment, err := u.apptRepo.FindByID(ctx, appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", appointmentID, err)
		return storageErr(err)
	}
	if appointment == nil {
		return ErrAppointmentNotFound
	}
	if appointment.PatientID != patientID {
		return ErrNotAppointmentOwner
	}

	rows, err := u.apptRepo.UpdateStatusIfScheduled(ctx, appointmentID, entity.AppointmentStatusCancelled)
	if err != nil {
		u.log.Warnf("Failed to cancel appointment %s: %+v", appointmentID, err)
		return storageErr(err)
	}
	if rows == 0 {
		return ErrInvalidTransition
	}

	u.audit.LogUpdate(ctx, &patientID, entity.AuditActionAppointmentCancel, "appointment", appointmentID.String(),
		entity.AppointmentStatusScheduled, entity.AppointmentStatusCancelled)

	return nil
}

// MarkCompleted moves a scheduled appointment to completed. Admins may
// complete any appointment, doctors only their own.
func (u *appointmentUsecase) MarkCompleted(ctx context.Context, appointmentID uuid.UUID) (*dto.AppointmentResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	roleID, ok := middleware.GetRoleIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	appointment, err := u.apptRepo.FindByID(ctx, appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", appointmentID, err)
		return nil, storageErr(err)
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	if roleID == entity.RoleIDDoctor && appointment.DoctorID != userID {
		return nil, ErrNotAppointmentDoctor
	}

	rows, err := u.apptRepo.UpdateStatusIfScheduled(ctx, appointmentID, entity.AppointmentStatusCompleted)
	if err != nil {
		u.log.Warnf("Failed to complete appointment %s: %+v", appointmentID, err)
		return nil, storageErr(err)
	}
	if rows == 0 {
		return nil, ErrInvalidTransition
	}

	u.audit.LogUpdate(ctx, &userID, entity.AuditActionAppointmentComplete, "appointment", appointmentID.String(),
		entity.AppointmentStatusScheduled, entity.AppointmentStatusCompleted)

	return u.loadResponse(ctx, appointmentID)
}

// slotOccupied reports whether another scheduled appointment already holds
// the slot. The exclude id lets a reschedule skip its own row.
func (u *appointmentUsecase) slotOccupied(ctx context.Context, doctorID uuid.UUID, date time.Time, slotLabel string, exclude uuid.UUID) (bool, error) {
	appointments, err := u.apptRepo.FindScheduledByDoctorAndDate(ctx, doctorID, date)
	if err != nil {
		u.log.Warnf("Failed to check slot occupancy for doctor %s: %+v", doctorID, err)
		return false, storageErr(err)
	}
	for _, existing := range appointments {
		if existing.ID != exclude && existing.SlotLabel == slotLabel {
			return true, nil
		}
	}
	return false, nil
}

func (u *appointmentUsecase) loadResponse(ctx context.Context, appointmentID uuid.UUID) (*dto.AppointmentResponse, error) {
	appointment, err := u.apptRepo.FindByID(ctx, appointmentID)
	if err != nil {
		u.log.Warnf("Failed to reload appointment %s: %+v", appointmentID, err)
		return nil, storageErr(err)
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	return converter.AppointmentToResponse(appointment), nil
}

func parseAppointmentTime(value string) (time.Time, error) {
	appointmentTime, err := time.ParseInLocation(dto.AppointmentTimeFormat, value, time.UTC)
	if err != nil {
		return time.Time{}, ErrInvalidAppointmentTime
	}
	if !appointmentTime.After(time.Now().UTC()) {
		return time.Time{}, ErrInvalidAppointmentTime
	}
	return appointmentTime, nil
}
