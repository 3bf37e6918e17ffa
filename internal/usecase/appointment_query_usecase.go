package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"smart-clinic-backend/internal/converter"
	"smart-clinic-backend/internal/delivery/dto"
	"smart-clinic-backend/internal/delivery/http/middleware"
	"smart-clinic-backend/internal/domain/entity"
	"smart-clinic-backend/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidConditionFilter = errors.New("condition must be past or future")
	ErrNotOwnSchedule         = errors.New("doctors can only view their own schedule")
	ErrNotOwnAppointments     = errors.New("patients can only view their own appointments")
)

type AppointmentQueryUsecase interface {
	// DoctorDayAppointments lists a doctor's appointments on a calendar
	// date, optionally narrowed to patients whose name contains the given
	// fragment. Doctors may only query their own schedule.
	DoctorDayAppointments(ctx context.Context, doctorID uuid.UUID, date time.Time, patientName string) (*dto.AppointmentListResponse, error)

	// PatientAppointments lists a patient's own appointments. The condition
	// selects by status, past for completed and future for scheduled, and
	// composes with the doctor name filter.
	PatientAppointments(ctx context.Context, patientID uuid.UUID, condition string, doctorName string) (*dto.AppointmentListResponse, error)
}

type appointmentQueryUsecase struct {
	log      *logrus.Logger
	apptRepo repository.AppointmentRepository
}

func NewAppointmentQueryUsecase(log *logrus.Logger, apptRepo repository.AppointmentRepository) AppointmentQueryUsecase {
	return &appointmentQueryUsecase{
		log:      log,
		apptRepo: apptRepo,
	}
}

func (u *appointmentQueryUsecase) DoctorDayAppointments(ctx context.Context, doctorID uuid.UUID, date time.Time, patientName string) (*dto.AppointmentListResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	roleID, ok := middleware.GetRoleIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	if roleID == entity.RoleIDDoctor && doctorID != userID {
		return nil, ErrNotOwnSchedule
	}

	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24*time.Hour - time.Nanosecond)

	appointments, err := u.apptRepo.FindByDoctorAndTimeRange(ctx, doctorID, start, end)
	if err != nil {
		u.log.Warnf("Failed to list appointments for doctor %s: %+v", doctorID, err)
		return nil, storageErr(err)
	}

	if patientName != "" {
		fragment := strings.ToLower(patientName)
		filtered := appointments[:0]
		for _, appointment := range appointments {
			if strings.Contains(strings.ToLower(appointment.Patient.User.FullName), fragment) {
				filtered = append(filtered, appointment)
			}
		}
		appointments = filtered
	}

	return converter.AppointmentsToListResponse(appointments), nil
}

func (u *appointmentQueryUsecase) PatientAppointments(ctx context.Context, patientID uuid.UUID, condition string, doctorName string) (*dto.AppointmentListResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	if patientID != userID {
		return nil, ErrNotOwnAppointments
	}

	var status *entity.AppointmentStatus
	if condition != "" {
		filter := entity.ConditionFilter(strings.ToLower(condition))
		mapped, ok := filter.Status()
		if !ok {
			return nil, ErrInvalidConditionFilter
		}
		status = &mapped
	}

	var appointments []entity.Appointment
	var err error
	if status == nil && doctorName == "" {
		appointments, err = u.apptRepo.FindByPatientID(ctx, patientID)
	} else {
		appointments, err = u.apptRepo.FindByPatientFiltered(ctx, patientID, status, doctorName)
	}
	if err != nil {
		u.log.Warnf("Failed to list appointments for patient %s: %+v", patientID, err)
		return nil, storageErr(err)
	}

	return converter.AppointmentsToListResponse(appointments), nil
}
