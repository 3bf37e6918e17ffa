package usecase

import (
	"errors"
	"testing"
	"time"

	"smart-clinic-backend/internal/domain/entity"

	"github.com/google/uuid"
)

type queryFixture struct {
	uc        AppointmentQueryUsecase
	appts     *fakeAppointmentRepo
	doctorID  uuid.UUID
	patientID uuid.UUID
	day       time.Time
}

func newQueryFixture(t *testing.T) *queryFixture {
	t.Helper()
	fx := &queryFixture{
		appts:     newFakeAppointmentRepo(),
		doctorID:  uuid.New(),
		patientID: uuid.New(),
		day:       time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC),
	}
	fx.uc = NewAppointmentQueryUsecase(testLogger(), fx.appts)
	return fx
}

// seed stores an appointment directly, with names attached the way the
// repository preloads them.
func (fx *queryFixture) seed(label string, status entity.AppointmentStatus, patientName, doctorName string) uuid.UUID {
	appointment := &entity.Appointment{
		ID:        uuid.New(),
		DoctorID:  fx.doctorID,
		PatientID: fx.patientID,
		Status:    status,
		Doctor:    entity.DoctorProfile{UserID: fx.doctorID, User: entity.User{FullName: doctorName}},
		Patient:   entity.PatientProfile{UserID: fx.patientID, User: entity.User{FullName: patientName}},
	}
	clock, _ := time.Parse(entity.SlotLabelFormat, label)
	appointment.SetAppointmentTime(fx.day.Add(time.Duration(clock.Hour())*time.Hour + time.Duration(clock.Minute())*time.Minute))
	fx.appts.appointments[appointment.ID] = appointment
	return appointment.ID
}

func TestDoctorDayAppointments(t *testing.T) {
	fx := newQueryFixture(t)
	fx.seed("10:00", entity.AppointmentStatusScheduled, "Budi Santoso", "Dr. Siti Rahma")
	fx.seed("09:00", entity.AppointmentStatusCancelled, "Rina Wati", "Dr. Siti Rahma")
	fx.seed("14:00", entity.AppointmentStatusCompleted, "Budi Santoso", "Dr. Siti Rahma")

	ctx := authContext(fx.doctorID, entity.RoleIDDoctor)
	response, err := fx.uc.DoctorDayAppointments(ctx, fx.doctorID, fx.day, "")
	if err != nil {
		t.Fatalf("DoctorDayAppointments() failed: %v", err)
	}
	if response.Total != 3 {
		t.Fatalf("total = %d, want 3", response.Total)
	}
	// All statuses are included, ordered by time ascending.
	wantLabels := []string{"09:00", "10:00", "14:00"}
	for i, appointment := range response.Appointments {
		if appointment.SlotLabel != wantLabels[i] {
			t.Errorf("appointment[%d] slot = %q, want %q", i, appointment.SlotLabel, wantLabels[i])
		}
	}
}

func TestDoctorDayAppointmentsPatientNameFilter(t *testing.T) {
	fx := newQueryFixture(t)
	fx.seed("09:00", entity.AppointmentStatusScheduled, "Budi Santoso", "Dr. Siti Rahma")
	fx.seed("10:00", entity.AppointmentStatusScheduled, "Rina Wati", "Dr. Siti Rahma")

	ctx := authContext(fx.doctorID, entity.RoleIDDoctor)
	response, err := fx.uc.DoctorDayAppointments(ctx, fx.doctorID, fx.day, "bUdI")
	if err != nil {
		t.Fatalf("DoctorDayAppointments() failed: %v", err)
	}
	if response.Total != 1 || response.Appointments[0].PatientName != "Budi Santoso" {
		t.Errorf("filtered result = %+v, want just Budi Santoso", response.Appointments)
	}
}

func TestDoctorDayAppointmentsAuthorization(t *testing.T) {
	fx := newQueryFixture(t)
	fx.seed("09:00", entity.AppointmentStatusScheduled, "Budi Santoso", "Dr. Siti Rahma")

	// A doctor cannot read a colleague's schedule.
	otherDoctor := authContext(uuid.New(), entity.RoleIDDoctor)
	if _, err := fx.uc.DoctorDayAppointments(otherDoctor, fx.doctorID, fx.day, ""); !errors.Is(err, ErrNotOwnSchedule) {
		t.Errorf("error = %v, want %v", err, ErrNotOwnSchedule)
	}

	// Admins can read anyone's.
	admin := authContext(uuid.New(), entity.RoleIDAdmin)
	response, err := fx.uc.DoctorDayAppointments(admin, fx.doctorID, fx.day, "")
	if err != nil {
		t.Fatalf("DoctorDayAppointments() as admin failed: %v", err)
	}
	if response.Total != 1 {
		t.Errorf("total = %d, want 1", response.Total)
	}
}

func TestPatientAppointmentsCondition(t *testing.T) {
	fx := newQueryFixture(t)
	fx.seed("09:00", entity.AppointmentStatusCompleted, "Budi Santoso", "Dr. Siti Rahma")
	fx.seed("10:00", entity.AppointmentStatusScheduled, "Budi Santoso", "Dr. Siti Rahma")
	fx.seed("14:00", entity.AppointmentStatusCancelled, "Budi Santoso", "Dr. Siti Rahma")

	ctx := authContext(fx.patientID, entity.RoleIDPatient)

	tests := []struct {
		name       string
		condition  string
		wantStatus entity.AppointmentStatus
	}{
		{"past selects completed", "past", entity.AppointmentStatusCompleted},
		{"future selects scheduled", "future", entity.AppointmentStatusScheduled},
		{"condition is case insensitive", "PAST", entity.AppointmentStatusCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			response, err := fx.uc.PatientAppointments(ctx, fx.patientID, tt.condition, "")
			if err != nil {
				t.Fatalf("PatientAppointments(%q) failed: %v", tt.condition, err)
			}
			if response.Total != 1 {
				t.Fatalf("total = %d, want 1", response.Total)
			}
			if response.Appointments[0].Status != string(tt.wantStatus) {
				t.Errorf("status = %q, want %q", response.Appointments[0].Status, tt.wantStatus)
			}
		})
	}

	t.Run("no condition returns everything", func(t *testing.T) {
		response, err := fx.uc.PatientAppointments(ctx, fx.patientID, "", "")
		if err != nil {
			t.Fatalf("PatientAppointments() failed: %v", err)
		}
		if response.Total != 3 {
			t.Errorf("total = %d, want 3", response.Total)
		}
	})

	t.Run("unknown condition is rejected", func(t *testing.T) {
		if _, err := fx.uc.PatientAppointments(ctx, fx.patientID, "upcoming", ""); !errors.Is(err, ErrInvalidConditionFilter) {
			t.Errorf("error = %v, want %v", err, ErrInvalidConditionFilter)
		}
	})
}

func TestPatientAppointmentsDoctorNameFilter(t *testing.T) {
	fx := newQueryFixture(t)
	fx.seed("09:00", entity.AppointmentStatusScheduled, "Budi Santoso", "Dr. Siti Rahma")

	other := &entity.Appointment{
		ID:        uuid.New(),
		DoctorID:  uuid.New(),
		PatientID: fx.patientID,
		Status:    entity.AppointmentStatusScheduled,
		Doctor:    entity.DoctorProfile{User: entity.User{FullName: "Dr. Agus Wijaya"}},
	}
	other.SetAppointmentTime(fx.day.Add(10 * time.Hour))
	fx.appts.appointments[other.ID] = other

	ctx := authContext(fx.patientID, entity.RoleIDPatient)
	response, err := fx.uc.PatientAppointments(ctx, fx.patientID, "future", "rahma")
	if err != nil {
		t.Fatalf("PatientAppointments() failed: %v", err)
	}
	if response.Total != 1 || response.Appointments[0].DoctorName != "Dr. Siti Rahma" {
		t.Errorf("filtered result = %+v, want just Dr. Siti Rahma", response.Appointments)
	}
}

func TestPatientAppointmentsOwnership(t *testing.T) {
	fx := newQueryFixture(t)
	fx.seed("09:00", entity.AppointmentStatusScheduled, "Budi Santoso", "Dr. Siti Rahma")

	stranger := authContext(uuid.New(), entity.RoleIDPatient)
	if _, err := fx.uc.PatientAppointments(stranger, fx.patientID, "", ""); !errors.Is(err, ErrNotOwnAppointments) {
		t.Errorf("error = %v, want %v", err, ErrNotOwnAppointments)
	}
}
