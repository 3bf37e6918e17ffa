package usecase

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"smart-clinic-backend/internal/delivery/http/middleware"
	"smart-clinic-backend/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// authContext builds a request context the way the auth middleware does.
func authContext(userID uuid.UUID, roleID int) context.Context {
	ctx := context.WithValue(context.Background(), middleware.UserIDKey, userID)
	return context.WithValue(ctx, middleware.RoleIDKey, roleID)
}

// fakeAppointmentRepo is an in-memory appointment store. Create and
// RescheduleIfScheduled enforce the same partial uniqueness rule as the
// scheduled-slot index and surface violations as pgconn errors, so conflict
// mapping is testable.
type fakeAppointmentRepo struct {
	mu           sync.Mutex
	appointments map[uuid.UUID]*entity.Appointment
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{appointments: make(map[uuid.UUID]*entity.Appointment)}
}

func scheduledSlotConflict() error {
	return &pgconn.PgError{Code: "23505", ConstraintName: "uniq_appointments_scheduled_slot"}
}

func (f *fakeAppointmentRepo) holdsSlot(a *entity.Appointment, doctorID uuid.UUID, date, label string) bool {
	return a.Status == entity.AppointmentStatusScheduled &&
		a.DoctorID == doctorID &&
		a.AppointmentDate.Format("2006-01-02") == date &&
		a.SlotLabel == label
}

func (f *fakeAppointmentRepo) Create(ctx context.Context, appointment *entity.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	date := appointment.AppointmentDate.Format("2006-01-02")
	for _, existing := range f.appointments {
		if f.holdsSlot(existing, appointment.DoctorID, date, appointment.SlotLabel) {
			return scheduledSlotConflict()
		}
	}
	stored := *appointment
	f.appointments[appointment.ID] = &stored
	return nil
}

func (f *fakeAppointmentRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	appointment, ok := f.appointments[id]
	if !ok {
		return nil, nil
	}
	copied := *appointment
	return &copied, nil
}

func (f *fakeAppointmentRepo) RescheduleIfScheduled(ctx context.Context, appointment *entity.Appointment) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	current, ok := f.appointments[appointment.ID]
	if !ok || current.Status != entity.AppointmentStatusScheduled {
		return 0, nil
	}
	date := appointment.AppointmentDate.Format("2006-01-02")
	for id, existing := range f.appointments {
		if id != appointment.ID && f.holdsSlot(existing, appointment.DoctorID, date, appointment.SlotLabel) {
			return 0, scheduledSlotConflict()
		}
	}
	current.DoctorID = appointment.DoctorID
	current.AppointmentTime = appointment.AppointmentTime
	current.AppointmentDate = appointment.AppointmentDate
	current.SlotLabel = appointment.SlotLabel
	return 1, nil
}

func (f *fakeAppointmentRepo) UpdateStatusIfScheduled(ctx context.Context, id uuid.UUID, status entity.AppointmentStatus) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	appointment, ok := f.appointments[id]
	if !ok || appointment.Status != entity.AppointmentStatusScheduled {
		return 0, nil
	}
	appointment.Status = status
	return 1, nil
}

func (f *fakeAppointmentRepo) FindScheduledByDoctorAndDate(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]entity.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	day := date.Format("2006-01-02")
	var result []entity.Appointment
	for _, appointment := range f.appointments {
		if appointment.Status == entity.AppointmentStatusScheduled &&
			appointment.DoctorID == doctorID &&
			appointment.AppointmentDate.Format("2006-01-02") == day {
			result = append(result, *appointment)
		}
	}
	sortByTime(result)
	return result, nil
}

func (f *fakeAppointmentRepo) FindByDoctorAndTimeRange(ctx context.Context, doctorID uuid.UUID, start, end time.Time) ([]entity.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []entity.Appointment
	for _, appointment := range f.appointments {
		if appointment.DoctorID == doctorID &&
			!appointment.AppointmentTime.Before(start) &&
			!appointment.AppointmentTime.After(end) {
			result = append(result, *appointment)
		}
	}
	sortByTime(result)
	return result, nil
}

func (f *fakeAppointmentRepo) FindByPatientID(ctx context.Context, patientID uuid.UUID) ([]entity.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []entity.Appointment
	for _, appointment := range f.appointments {
		if appointment.PatientID == patientID {
			result = append(result, *appointment)
		}
	}
	return result, nil
}

func (f *fakeAppointmentRepo) FindByPatientFiltered(ctx context.Context, patientID uuid.UUID, status *entity.AppointmentStatus, doctorName string) ([]entity.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fragment := strings.ToLower(doctorName)
	var result []entity.Appointment
	for _, appointment := range f.appointments {
		if appointment.PatientID != patientID {
			continue
		}
		if status != nil && appointment.Status != *status {
			continue
		}
		if fragment != "" && !strings.Contains(strings.ToLower(appointment.Doctor.User.FullName), fragment) {
			continue
		}
		result = append(result, *appointment)
	}
	if status != nil {
		sortByTime(result)
	}
	return result, nil
}

func (f *fakeAppointmentRepo) DeleteByDoctorID(ctx context.Context, doctorID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, appointment := range f.appointments {
		if appointment.DoctorID == doctorID {
			delete(f.appointments, id)
		}
	}
	return nil
}

func sortByTime(appointments []entity.Appointment) {
	sort.Slice(appointments, func(i, j int) bool {
		return appointments[i].AppointmentTime.Before(appointments[j].AppointmentTime)
	})
}

// fakeDoctorRepo keeps doctor profiles with user and catalog attached. When
// linked to a fakeSlotRepo it mirrors the Slots preload of the real store.
type fakeDoctorRepo struct {
	mu      sync.Mutex
	doctors map[uuid.UUID]*entity.DoctorProfile
	slots   *fakeSlotRepo
}

func newFakeDoctorRepo() *fakeDoctorRepo {
	return &fakeDoctorRepo{doctors: make(map[uuid.UUID]*entity.DoctorProfile)}
}

func (f *fakeDoctorRepo) attachSlots(profile *entity.DoctorProfile) {
	if f.slots == nil {
		return
	}
	if catalog, err := f.slots.FindByDoctorID(context.Background(), profile.UserID); err == nil && len(catalog) > 0 {
		profile.Slots = catalog
	}
}

func (f *fakeDoctorRepo) CreateWithUser(ctx context.Context, profile *entity.DoctorProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := *profile
	f.doctors[profile.UserID] = &stored
	return nil
}

func (f *fakeDoctorRepo) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.DoctorProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	profile, ok := f.doctors[userID]
	if !ok {
		return nil, nil
	}
	copied := *profile
	f.attachSlots(&copied)
	return &copied, nil
}

func (f *fakeDoctorRepo) FindAll(ctx context.Context) ([]entity.DoctorProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []entity.DoctorProfile
	for _, profile := range f.doctors {
		copied := *profile
		f.attachSlots(&copied)
		result = append(result, copied)
	}
	return result, nil
}

func (f *fakeDoctorRepo) Search(ctx context.Context, filter *entity.DoctorFilter) ([]entity.DoctorProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []entity.DoctorProfile
	for _, profile := range f.doctors {
		if !profile.User.IsActive {
			continue
		}
		if filter != nil && filter.Name != "" &&
			!strings.Contains(strings.ToLower(profile.User.FullName), strings.ToLower(filter.Name)) {
			continue
		}
		if filter != nil && filter.Specialty != "" &&
			!strings.Contains(strings.ToLower(profile.Specialty), strings.ToLower(filter.Specialty)) {
			continue
		}
		copied := *profile
		f.attachSlots(&copied)
		result = append(result, copied)
	}
	return result, nil
}

func (f *fakeDoctorRepo) Update(ctx context.Context, profile *entity.DoctorProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := *profile
	f.doctors[profile.UserID] = &stored
	return nil
}

func (f *fakeDoctorRepo) DeleteCascade(ctx context.Context, userID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.doctors[userID]; !ok {
		return 0, nil
	}
	delete(f.doctors, userID)
	return 1, nil
}

// fakeSlotRepo backs the slot catalog.
type fakeSlotRepo struct {
	mu    sync.Mutex
	slots map[uuid.UUID][]entity.DoctorSlot
}

func newFakeSlotRepo() *fakeSlotRepo {
	return &fakeSlotRepo{slots: make(map[uuid.UUID][]entity.DoctorSlot)}
}

func (f *fakeSlotRepo) FindByDoctorID(ctx context.Context, doctorID uuid.UUID) ([]entity.DoctorSlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]entity.DoctorSlot(nil), f.slots[doctorID]...), nil
}

func (f *fakeSlotRepo) Replace(ctx context.Context, doctorID uuid.UUID, labels []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	slots := make([]entity.DoctorSlot, len(labels))
	for i, label := range labels {
		slots[i] = entity.DoctorSlot{DoctorID: doctorID, Position: i, SlotLabel: label}
	}
	f.slots[doctorID] = slots
	return nil
}

// fakePatientRepo keeps patient profiles.
type fakePatientRepo struct {
	mu       sync.Mutex
	patients map[uuid.UUID]*entity.PatientProfile
}

func newFakePatientRepo() *fakePatientRepo {
	return &fakePatientRepo{patients: make(map[uuid.UUID]*entity.PatientProfile)}
}

func (f *fakePatientRepo) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.PatientProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	profile, ok := f.patients[userID]
	if !ok {
		return nil, nil
	}
	copied := *profile
	return &copied, nil
}

func (f *fakePatientRepo) Update(ctx context.Context, profile *entity.PatientProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := *profile
	f.patients[profile.UserID] = &stored
	return nil
}

// fakeAuditService records actions without any storage behind it.
type fakeAuditService struct {
	mu      sync.Mutex
	actions []string
}

func (f *fakeAuditService) record(action string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actions = append(f.actions, action)
	return nil
}

func (f *fakeAuditService) LogCreate(ctx context.Context, userID *uuid.UUID, action, entityName, entityID string, newValue interface{}) error {
	return f.record(action)
}

func (f *fakeAuditService) LogUpdate(ctx context.Context, userID *uuid.UUID, action, entityName, entityID string, oldValue, newValue interface{}) error {
	return f.record(action)
}

func (f *fakeAuditService) LogDelete(ctx context.Context, userID *uuid.UUID, action, entityName, entityID string, oldValue interface{}) error {
	return f.record(action)
}
