package usecase

import (
	"context"

	"smart-clinic-backend/internal/converter"
	"smart-clinic-backend/internal/delivery/dto"
	"smart-clinic-backend/internal/delivery/http/middleware"
	"smart-clinic-backend/internal/domain/entity"
	"smart-clinic-backend/internal/domain/repository"
	"smart-clinic-backend/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type PrescriptionUsecase interface {
	// CreatePrescription records a prescription for an appointment and
	// completes the visit. Doctors may only prescribe on their own
	// appointments; cancelled appointments cannot receive prescriptions.
	CreatePrescription(ctx context.Context, req *dto.CreatePrescriptionRequest) (*dto.PrescriptionResponse, error)

	// AppointmentPrescriptions lists the prescriptions of one appointment.
	// Patients see only their own appointments, doctors only theirs.
	AppointmentPrescriptions(ctx context.Context, appointmentID uuid.UUID) (*dto.PrescriptionListResponse, error)
}

type prescriptionUsecase struct {
	log              *logrus.Logger
	prescriptionRepo repository.PrescriptionRepository
	apptRepo         repository.AppointmentRepository
	audit            service.AuditService
}

func NewPrescriptionUsecase(
	log *logrus.Logger,
	prescriptionRepo repository.PrescriptionRepository,
	apptRepo repository.AppointmentRepository,
	audit service.AuditService,
) PrescriptionUsecase {
	return &prescriptionUsecase{
		log:              log,
		prescriptionRepo: prescriptionRepo,
		apptRepo:         apptRepo,
		audit:            audit,
	}
}

// CreatePrescription flow:
// 1. Resolve the appointment and check the prescribing doctor owns it.
// 2. Reject cancelled appointments.
// 3. Persist the prescription.
// 4. Move a still-scheduled appointment to completed. An appointment that
//    is already completed stays completed, so follow-up prescriptions on
//    the same visit are allowed.
func (u *prescriptionUsecase) CreatePrescription(ctx context.Context, req *dto.CreatePrescriptionRequest) (*dto.PrescriptionResponse, error) {
	doctorID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	appointment, err := u.apptRepo.FindByID(ctx, req.AppointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", req.AppointmentID, err)
		return nil, storageErr(err)
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	if appointment.DoctorID != doctorID {
		return nil, ErrNotAppointmentDoctor
	}
	if appointment.IsCancelled() {
		return nil, ErrInvalidTransition
	}

	prescription := &entity.Prescription{
		ID:            uuid.New(),
		AppointmentID: appointment.ID,
		PatientName:   appointment.Patient.User.FullName,
		Medication:    req.Medication,
		Dosage:        req.Dosage,
		DoctorNotes:   req.DoctorNotes,
	}

	if err := u.prescriptionRepo.Create(ctx, prescription); err != nil {
		if isForeignKeyError(err, "appointment") {
			return nil, ErrAppointmentNotFound
		}
		u.log.Warnf("Failed to create prescription: %+v", err)
		return nil, storageErr(err)
	}

	if appointment.IsScheduled() {
		if _, err := u.apptRepo.UpdateStatusIfScheduled(ctx, appointment.ID, entity.AppointmentStatusCompleted); err != nil {
			u.log.Warnf("Failed to complete appointment %s: %+v", appointment.ID, err)
			return nil, storageErr(err)
		}
	}

	u.audit.LogCreate(ctx, &doctorID, entity.AuditActionPrescriptionCreate, "prescription", prescription.ID.String(), prescription)

	return converter.PrescriptionToResponse(prescription), nil
}

func (u *prescriptionUsecase) AppointmentPrescriptions(ctx context.Context, appointmentID uuid.UUID) (*dto.PrescriptionListResponse, error) {
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

	switch roleID {
	case entity.RoleIDDoctor:
		if appointment.DoctorID != userID {
			return nil, ErrNotAppointmentDoctor
		}
	case entity.RoleIDPatient:
		if appointment.PatientID != userID {
			return nil, ErrNotAppointmentOwner
		}
	}

	prescriptions, err := u.prescriptionRepo.FindByAppointmentID(ctx, appointmentID)
	if err != nil {
		u.log.Warnf("Failed to list prescriptions for appointment %s: %+v", appointmentID, err)
		return nil, storageErr(err)
	}

	return converter.PrescriptionsToListResponse(prescriptions), nil
}
