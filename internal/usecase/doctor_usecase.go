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
	"smart-clinic-backend/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrDoctorNotFound    = errors.New("doctor not found")
	ErrSTRAlreadyExists  = errors.New("STR number already exists")
	ErrInvalidSlotLabel  = errors.New("slot labels must be unique HH:MM times")
	ErrInvalidAmPmFilter = errors.New("availability filter must be AM or PM")
)

type DoctorUsecase interface {
	// CreateDoctor registers a doctor account with profile and slot catalog.
	// Admin only, enforced at the route.
	CreateDoctor(ctx context.Context, req *dto.CreateDoctorRequest) (*dto.DoctorResponse, error)

	GetDoctor(ctx context.Context, doctorID uuid.UUID) (*dto.DoctorResponse, error)
	GetAllDoctors(ctx context.Context) (*dto.DoctorListResponse, error)

	// SearchDoctors filters doctors by name, specialty and AM/PM catalog
	// availability. All present filters compose with AND.
	SearchDoctors(ctx context.Context, filter *entity.DoctorFilter) (*dto.DoctorListResponse, error)

	UpdateDoctor(ctx context.Context, doctorID uuid.UUID, req *dto.UpdateDoctorRequest) (*dto.DoctorResponse, error)

	// ReplaceSlotCatalog swaps the doctor's whole catalog for the given
	// labels, preserving their order. Existing appointments are untouched.
	ReplaceSlotCatalog(ctx context.Context, doctorID uuid.UUID, req *dto.ReplaceSlotCatalogRequest) (*dto.DoctorResponse, error)

	// DeleteDoctor removes the doctor together with their appointments,
	// catalog and user account.
	DeleteDoctor(ctx context.Context, doctorID uuid.UUID) error
}

type doctorUsecase struct {
	log        *logrus.Logger
	doctorRepo repository.DoctorProfileRepository
	slotRepo   repository.DoctorSlotRepository
	audit      service.AuditService
}

func NewDoctorUsecase(
	log *logrus.Logger,
	doctorRepo repository.DoctorProfileRepository,
	slotRepo repository.DoctorSlotRepository,
	audit service.AuditService,
) DoctorUsecase {
	return &doctorUsecase{
		log:        log,
		doctorRepo: doctorRepo,
		slotRepo:   slotRepo,
		audit:      audit,
	}
}

func (u *doctorUsecase) CreateDoctor(ctx context.Context, req *dto.CreateDoctorRequest) (*dto.DoctorResponse, error) {
	labels, err := normalizeSlotLabels(req.Slots)
	if err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	profile := &entity.DoctorProfile{
		UserID:    uuid.New(),
		STRNumber: req.STRNumber,
		Specialty: req.Specialty,
		Biography: req.Biography,
	}
	profile.User = entity.User{
		ID:       profile.UserID,
		Email:    req.Email,
		Password: string(hashedPassword),
		FullName: req.FullName,
		RoleID:   entity.RoleIDDoctor,
		IsActive: true,
	}

	if err := u.doctorRepo.CreateWithUser(ctx, profile); err != nil {
		if isDuplicateKeyError(err, "email") {
			return nil, ErrEmailAlreadyExists
		}
		if isDuplicateKeyError(err, "str_number") {
			return nil, ErrSTRAlreadyExists
		}
		u.log.Warnf("Failed to create doctor: %+v", err)
		return nil, err
	}

	if len(labels) > 0 {
		if err := u.slotRepo.Replace(ctx, profile.UserID, labels); err != nil {
			u.log.Warnf("Failed to create slot catalog for doctor %s: %+v", profile.UserID, err)
			return nil, storageErr(err)
		}
	}

	if actorID, ok := middleware.GetUserIDFromContext(ctx); ok {
		u.audit.LogCreate(ctx, &actorID, entity.AuditActionDoctorCreate, "doctor", profile.UserID.String(), req.Email)
	}

	return u.loadDoctor(ctx, profile.UserID)
}

func (u *doctorUsecase) GetDoctor(ctx context.Context, doctorID uuid.UUID) (*dto.DoctorResponse, error) {
	return u.loadDoctor(ctx, doctorID)
}

func (u *doctorUsecase) GetAllDoctors(ctx context.Context) (*dto.DoctorListResponse, error) {
	doctors, err := u.doctorRepo.FindAll(ctx)
	if err != nil {
		u.log.Warnf("Failed to list doctors: %+v", err)
		return nil, storageErr(err)
	}
	return converter.DoctorsToListResponse(doctors), nil
}

func (u *doctorUsecase) SearchDoctors(ctx context.Context, filter *entity.DoctorFilter) (*dto.DoctorListResponse, error) {
	amOrPm := strings.ToUpper(filter.AmOrPm)
	if amOrPm != "" && amOrPm != "AM" && amOrPm != "PM" {
		return nil, ErrInvalidAmPmFilter
	}

	doctors, err := u.doctorRepo.Search(ctx, filter)
	if err != nil {
		u.log.Warnf("Failed to search doctors: %+v", err)
		return nil, storageErr(err)
	}

	if amOrPm != "" {
		wantMorning := amOrPm == "AM"
		filtered := doctors[:0]
		for _, doctor := range doctors {
			if catalogHasPeriod(doctor.Slots, wantMorning) {
				filtered = append(filtered, doctor)
			}
		}
		doctors = filtered
	}

	return converter.DoctorsToListResponse(doctors), nil
}

func (u *doctorUsecase) UpdateDoctor(ctx context.Context, doctorID uuid.UUID, req *dto.UpdateDoctorRequest) (*dto.DoctorResponse, error) {
	profile, err := u.doctorRepo.FindByUserID(ctx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return nil, storageErr(err)
	}
	if profile == nil {
		return nil, ErrDoctorNotFound
	}

	old := *profile
	if req.FullName != "" {
		profile.User.FullName = req.FullName
	}
	if req.Specialty != "" {
		profile.Specialty = req.Specialty
	}
	if req.Biography != "" {
		profile.Biography = req.Biography
	}

	if err := u.doctorRepo.Update(ctx, profile); err != nil {
		u.log.Warnf("Failed to update doctor %s: %+v", doctorID, err)
		return nil, storageErr(err)
	}

	if actorID, ok := middleware.GetUserIDFromContext(ctx); ok {
		u.audit.LogUpdate(ctx, &actorID, entity.AuditActionDoctorUpdate, "doctor", doctorID.String(), old.Specialty, profile.Specialty)
	}

	return u.loadDoctor(ctx, doctorID)
}

func (u *doctorUsecase) ReplaceSlotCatalog(ctx context.Context, doctorID uuid.UUID, req *dto.ReplaceSlotCatalogRequest) (*dto.DoctorResponse, error) {
	labels, err := normalizeSlotLabels(req.Slots)
	if err != nil {
		return nil, err
	}

	profile, err := u.doctorRepo.FindByUserID(ctx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return nil, storageErr(err)
	}
	if profile == nil {
		return nil, ErrDoctorNotFound
	}

	if err := u.slotRepo.Replace(ctx, doctorID, labels); err != nil {
		u.log.Warnf("Failed to replace slot catalog for doctor %s: %+v", doctorID, err)
		return nil, storageErr(err)
	}

	if actorID, ok := middleware.GetUserIDFromContext(ctx); ok {
		u.audit.LogUpdate(ctx, &actorID, entity.AuditActionDoctorCatalogReplace, "doctor", doctorID.String(),
			slotLabels(profile.Slots), labels)
	}

	return u.loadDoctor(ctx, doctorID)
}

func (u *doctorUsecase) DeleteDoctor(ctx context.Context, doctorID uuid.UUID) error {
	profile, err := u.doctorRepo.FindByUserID(ctx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return storageErr(err)
	}
	if profile == nil {
		return ErrDoctorNotFound
	}

	rows, err := u.doctorRepo.DeleteCascade(ctx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to delete doctor %s: %+v", doctorID, err)
		return storageErr(err)
	}
	if rows == 0 {
		return ErrDoctorNotFound
	}

	if actorID, ok := middleware.GetUserIDFromContext(ctx); ok {
		u.audit.LogDelete(ctx, &actorID, entity.AuditActionDoctorDelete, "doctor", doctorID.String(), profile.User.Email)
	}

	return nil
}

func (u *doctorUsecase) loadDoctor(ctx context.Context, doctorID uuid.UUID) (*dto.DoctorResponse, error) {
	profile, err := u.doctorRepo.FindByUserID(ctx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to load doctor %s: %+v", doctorID, err)
		return nil, storageErr(err)
	}
	if profile == nil {
		return nil, ErrDoctorNotFound
	}
	return converter.DoctorToResponse(profile), nil
}

// normalizeSlotLabels parses each label to confirm the canonical HH:MM form
// and rejects duplicates, preserving input order.
func normalizeSlotLabels(labels []string) ([]string, error) {
	seen := make(map[string]struct{}, len(labels))
	normalized := make([]string, 0, len(labels))
	for _, label := range labels {
		t, err := time.Parse(entity.SlotLabelFormat, label)
		if err != nil {
			return nil, ErrInvalidSlotLabel
		}
		canonical := t.Format(entity.SlotLabelFormat)
		if _, dup := seen[canonical]; dup {
			return nil, ErrInvalidSlotLabel
		}
		seen[canonical] = struct{}{}
		normalized = append(normalized, canonical)
	}
	return normalized, nil
}

func catalogHasPeriod(slots []entity.DoctorSlot, morning bool) bool {
	for i := range slots {
		if slots[i].IsMorning() == morning {
			return true
		}
	}
	return false
}

func slotLabels(slots []entity.DoctorSlot) []string {
	labels := make([]string, 0, len(slots))
	for _, slot := range slots {
		labels = append(labels, slot.SlotLabel)
	}
	return labels
}
