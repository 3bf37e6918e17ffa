package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"smart-clinic-backend/internal/delivery/dto"
	"smart-clinic-backend/internal/domain/entity"

	"github.com/google/uuid"
)

func newPatientUsecaseForTest(t *testing.T) (PatientUsecase, *fakePatientRepo, uuid.UUID) {
	t.Helper()
	patients := newFakePatientRepo()
	patientID := uuid.New()
	patients.patients[patientID] = &entity.PatientProfile{
		UserID:      patientID,
		NIK:         "3171234567890001",
		PhoneNumber: "+62811111111",
		DateOfBirth: time.Date(1990, 4, 12, 0, 0, 0, 0, time.UTC),
		Gender:      "M",
		Address:     "Jakarta",
		User:        entity.User{ID: patientID, Email: "budi@clinic.test", FullName: "Budi Santoso"},
	}
	return NewPatientUsecase(testLogger(), patients, &fakeAuditService{}), patients, patientID
}

func TestGetProfile(t *testing.T) {
	uc, _, patientID := newPatientUsecaseForTest(t)

	response, err := uc.GetProfile(authContext(patientID, entity.RoleIDPatient))
	if err != nil {
		t.Fatalf("GetProfile() failed: %v", err)
	}
	if response.FullName != "Budi Santoso" || response.NIK != "3171234567890001" {
		t.Errorf("profile = %+v", response)
	}

	// The profile is looked up by the authenticated user, never by input.
	if _, err := uc.GetProfile(authContext(uuid.New(), entity.RoleIDPatient)); !errors.Is(err, ErrPatientNotFound) {
		t.Errorf("GetProfile() for stranger error = %v, want %v", err, ErrPatientNotFound)
	}
	if _, err := uc.GetProfile(context.Background()); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("GetProfile() without auth error = %v, want %v", err, ErrUnauthenticated)
	}
}

func TestUpdateProfile(t *testing.T) {
	uc, patients, patientID := newPatientUsecaseForTest(t)

	response, err := uc.UpdateProfile(authContext(patientID, entity.RoleIDPatient), &dto.UpdatePatientRequest{
		PhoneNumber: "+62822222222",
	})
	if err != nil {
		t.Fatalf("UpdateProfile() failed: %v", err)
	}
	if response.PhoneNumber != "+62822222222" {
		t.Errorf("phone = %q, want updated value", response.PhoneNumber)
	}
	// Untouched fields survive a partial update.
	if response.Address != "Jakarta" {
		t.Errorf("address = %q, want unchanged", response.Address)
	}

	stored := patients.patients[patientID]
	if stored.PhoneNumber != "+62822222222" {
		t.Errorf("stored phone = %q, want updated value", stored.PhoneNumber)
	}
}
