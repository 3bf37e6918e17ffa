package usecase

import (
	"context"
	"time"

	"smart-clinic-backend/internal/delivery/dto"
	"smart-clinic-backend/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type AvailabilityUsecase interface {
	// AvailableSlots returns the doctor's free slots on a calendar date:
	// the slot catalog minus the labels occupied by scheduled appointments,
	// in catalog order.
	AvailableSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) (*dto.AvailableSlotsResponse, error)
}

type availabilityUsecase struct {
	log        *logrus.Logger
	doctorRepo repository.DoctorProfileRepository
	slotRepo   repository.DoctorSlotRepository
	apptRepo   repository.AppointmentRepository
}

func NewAvailabilityUsecase(
	log *logrus.Logger,
	doctorRepo repository.DoctorProfileRepository,
	slotRepo repository.DoctorSlotRepository,
	apptRepo repository.AppointmentRepository,
) AvailabilityUsecase {
	return &availabilityUsecase{
		log:        log,
		doctorRepo: doctorRepo,
		slotRepo:   slotRepo,
		apptRepo:   apptRepo,
	}
}

func (u *availabilityUsecase) AvailableSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) (*dto.AvailableSlotsResponse, error) {
	doctor, err := u.doctorRepo.FindByUserID(ctx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return nil, storageErr(err)
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	catalog, err := u.slotRepo.FindByDoctorID(ctx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to load slot catalog for doctor %s: %+v", doctorID, err)
		return nil, storageErr(err)
	}

	appointments, err := u.apptRepo.FindScheduledByDoctorAndDate(ctx, doctorID, date)
	if err != nil {
		u.log.Warnf("Failed to load appointments for doctor %s: %+v", doctorID, err)
		return nil, storageErr(err)
	}

	// Occupancy is exact equality on canonical slot labels. A label matches
	// only itself, never a substring of another label.
	occupied := make(map[string]struct{}, len(appointments))
	for _, appointment := range appointments {
		occupied[appointment.SlotLabel] = struct{}{}
	}

	free := make([]string, 0, len(catalog))
	for _, slot := range catalog {
		if _, taken := occupied[slot.SlotLabel]; !taken {
			free = append(free, slot.SlotLabel)
		}
	}

	return &dto.AvailableSlotsResponse{
		DoctorID: doctorID,
		Date:     date.Format("2006-01-02"),
		Slots:    free,
	}, nil
}
