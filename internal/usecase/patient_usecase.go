package usecase

import (
	"context"
	"errors"

	"smart-clinic-backend/internal/converter"
	"smart-clinic-backend/internal/delivery/dto"
	"smart-clinic-backend/internal/delivery/http/middleware"
	"smart-clinic-backend/internal/domain/entity"
	"smart-clinic-backend/internal/domain/repository"
	"smart-clinic-backend/internal/service"

	"github.com/sirupsen/logrus"
)

var ErrPatientNotFound = errors.New("patient not found")

type PatientUsecase interface {
	// GetProfile returns the authenticated patient's own profile.
	GetProfile(ctx context.Context) (*dto.PatientResponse, error)

	// UpdateProfile updates the authenticated patient's own profile.
	UpdateProfile(ctx context.Context, req *dto.UpdatePatientRequest) (*dto.PatientResponse, error)
}

type patientUsecase struct {
	log         *logrus.Logger
	patientRepo repository.PatientProfileRepository
	audit       service.AuditService
}

func NewPatientUsecase(
	log *logrus.Logger,
	patientRepo repository.PatientProfileRepository,
	audit service.AuditService,
) PatientUsecase {
	return &patientUsecase{
		log:         log,
		patientRepo: patientRepo,
		audit:       audit,
	}
}

func (u *patientUsecase) GetProfile(ctx context.Context) (*dto.PatientResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	profile, err := u.patientRepo.FindByUserID(ctx, userID)
	if err != nil {
		u.log.Warnf("Failed to find patient %s: %+v", userID, err)
		return nil, storageErr(err)
	}
	if profile == nil {
		return nil, ErrPatientNotFound
	}

	return converter.PatientToResponse(profile), nil
}

func (u *patientUsecase) UpdateProfile(ctx context.Context, req *dto.UpdatePatientRequest) (*dto.PatientResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	profile, err := u.patientRepo.FindByUserID(ctx, userID)
	if err != nil {
		u.log.Warnf("Failed to find patient %s: %+v", userID, err)
		return nil, storageErr(err)
	}
	if profile == nil {
		return nil, ErrPatientNotFound
	}

	if req.FullName != "" {
		profile.User.FullName = req.FullName
	}
	if req.PhoneNumber != "" {
		profile.PhoneNumber = req.PhoneNumber
	}
	if req.Address != "" {
		profile.Address = req.Address
	}

	if err := u.patientRepo.Update(ctx, profile); err != nil {
		u.log.Warnf("Failed to update patient %s: %+v", userID, err)
		return nil, storageErr(err)
	}

	u.audit.LogUpdate(ctx, &userID, entity.AuditActionPatientProfileUpdate, "patient", userID.String(), nil, req)

	return converter.PatientToResponse(profile), nil
}
