package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"smart-clinic-backend/config"
	"smart-clinic-backend/internal/delivery/dto"
	"smart-clinic-backend/internal/domain/entity"
	"smart-clinic-backend/pkg/jwt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
)

// fakeUserRepo enforces the email and nik unique constraints the way the
// database does.
type fakeUserRepo struct {
	mu       sync.Mutex
	users    map[uuid.UUID]*entity.User
	profiles map[uuid.UUID]*entity.PatientProfile
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:    make(map[uuid.UUID]*entity.User),
		profiles: make(map[uuid.UUID]*entity.PatientProfile),
	}
}

func (f *fakeUserRepo) CreateWithPatientProfile(ctx context.Context, user *entity.User, profile *entity.PatientProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return &pgconn.PgError{Code: "23505", ConstraintName: "idx_users_email"}
		}
	}
	for _, existing := range f.profiles {
		if existing.NIK == profile.NIK {
			return &pgconn.PgError{Code: "23505", ConstraintName: "idx_patient_profiles_nik"}
		}
	}
	storedUser := *user
	storedProfile := *profile
	f.users[user.ID] = &storedUser
	f.profiles[user.ID] = &storedProfile
	return nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

type fakeRoleRepo struct {
	roles map[int]*entity.Role
}

func newFakeRoleRepo() *fakeRoleRepo {
	return &fakeRoleRepo{roles: map[int]*entity.Role{
		entity.RoleIDAdmin:   {ID: entity.RoleIDAdmin, RoleName: entity.RoleAdmin},
		entity.RoleIDDoctor:  {ID: entity.RoleIDDoctor, RoleName: entity.RoleDoctor},
		entity.RoleIDPatient: {ID: entity.RoleIDPatient, RoleName: entity.RolePatient},
	}}
}

func (f *fakeRoleRepo) FindByID(ctx context.Context, id int) (*entity.Role, error) {
	role, ok := f.roles[id]
	if !ok {
		return nil, nil
	}
	return role, nil
}

func (f *fakeRoleRepo) FindAll(ctx context.Context) ([]entity.Role, error) {
	var result []entity.Role
	for _, role := range f.roles {
		result = append(result, *role)
	}
	return result, nil
}

func newAuthUsecaseForTest(users *fakeUserRepo) AuthUsecase {
	jwtService := jwt.NewJWTService(config.JWTConfig{
		Secret:        "test-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: 7 * 24 * time.Hour,
	})
	return NewAuthUsecase(testLogger(), users, newFakeRoleRepo(), jwtService, nil, &fakeAuditService{})
}

func registerRequest() *dto.RegisterPatientRequest {
	return &dto.RegisterPatientRequest{
		Email:       "budi@clinic.test",
		Password:    "super-secret",
		FullName:    "Budi Santoso",
		NIK:         "3171234567890001",
		PhoneNumber: "+62811111111",
		DateOfBirth: "1990-04-12",
		Gender:      "M",
		Address:     "Jakarta",
	}
}

func TestRegisterPatient(t *testing.T) {
	users := newFakeUserRepo()
	uc := newAuthUsecaseForTest(users)

	response, err := uc.RegisterPatient(context.Background(), registerRequest())
	if err != nil {
		t.Fatalf("RegisterPatient() failed: %v", err)
	}
	if response.Role != entity.RolePatient {
		t.Errorf("role = %q, want patient", response.Role)
	}

	stored := users.users[response.ID]
	if stored == nil {
		t.Fatal("user not persisted")
	}
	if stored.RoleID != entity.RoleIDPatient {
		t.Errorf("role id = %d, want %d", stored.RoleID, entity.RoleIDPatient)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("super-secret")); err != nil {
		t.Error("stored password is not the bcrypt hash of the input")
	}

	profile := users.profiles[response.ID]
	if profile == nil {
		t.Fatal("patient profile not persisted")
	}
	if got := profile.DateOfBirth.Format("2006-01-02"); got != "1990-04-12" {
		t.Errorf("date of birth = %q, want 1990-04-12", got)
	}
}

func TestRegisterPatientErrors(t *testing.T) {
	users := newFakeUserRepo()
	uc := newAuthUsecaseForTest(users)

	if _, err := uc.RegisterPatient(context.Background(), registerRequest()); err != nil {
		t.Fatalf("first RegisterPatient() failed: %v", err)
	}

	t.Run("duplicate email", func(t *testing.T) {
		req := registerRequest()
		req.NIK = "3171234567890002"
		if _, err := uc.RegisterPatient(context.Background(), req); !errors.Is(err, ErrEmailAlreadyExists) {
			t.Errorf("error = %v, want %v", err, ErrEmailAlreadyExists)
		}
	})

	t.Run("duplicate nik", func(t *testing.T) {
		req := registerRequest()
		req.Email = "other@clinic.test"
		if _, err := uc.RegisterPatient(context.Background(), req); !errors.Is(err, ErrNIKAlreadyExists) {
			t.Errorf("error = %v, want %v", err, ErrNIKAlreadyExists)
		}
	})

	t.Run("bad date of birth", func(t *testing.T) {
		req := registerRequest()
		req.Email = "other2@clinic.test"
		req.NIK = "3171234567890003"
		req.DateOfBirth = "12-04-1990"
		if _, err := uc.RegisterPatient(context.Background(), req); !errors.Is(err, ErrInvalidDateFormat) {
			t.Errorf("error = %v, want %v", err, ErrInvalidDateFormat)
		}
	})
}

func TestGetCurrentUser(t *testing.T) {
	users := newFakeUserRepo()
	uc := newAuthUsecaseForTest(users)

	created, err := uc.RegisterPatient(context.Background(), registerRequest())
	if err != nil {
		t.Fatalf("RegisterPatient() failed: %v", err)
	}

	response, err := uc.GetCurrentUser(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetCurrentUser() failed: %v", err)
	}
	if response.Email != "budi@clinic.test" {
		t.Errorf("email = %q", response.Email)
	}
	if response.Role != entity.RolePatient {
		t.Errorf("role = %q, want patient", response.Role)
	}

	if _, err := uc.GetCurrentUser(context.Background(), uuid.New()); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetCurrentUser(unknown) error = %v, want %v", err, ErrUserNotFound)
	}
}
