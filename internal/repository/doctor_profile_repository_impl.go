package repository

import (
	"context"
	"errors"

	"smart-clinic-backend/internal/domain/entity"
	domainRepo "smart-clinic-backend/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type doctorProfileRepository struct {
	db *gorm.DB
}

func NewDoctorProfileRepository(db *gorm.DB) domainRepo.DoctorProfileRepository {
	return &doctorProfileRepository{db: db}
}

func (r *doctorProfileRepository) CreateWithUser(ctx context.Context, profile *entity.DoctorProfile) error {
	// GORM association inserts the user row and the profile row together.
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *doctorProfileRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.DoctorProfile, error) {
	var profile entity.DoctorProfile
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Slots", func(db *gorm.DB) *gorm.DB {
			return db.Order("doctor_slots.position ASC")
		}).
		Where("user_id = ?", userID).
		First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *doctorProfileRepository) FindAll(ctx context.Context) ([]entity.DoctorProfile, error) {
	var profiles []entity.DoctorProfile
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Slots", func(db *gorm.DB) *gorm.DB {
			return db.Order("doctor_slots.position ASC")
		}).
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

// Search returns doctors with an active user account, filtered by optional
// name and specialty substrings. The AM/PM catalog filter is applied by the
// usecase on the preloaded slots.
func (r *doctorProfileRepository) Search(ctx context.Context, filter *entity.DoctorFilter) ([]entity.DoctorProfile, error) {
	query := r.db.WithContext(ctx).
		Joins("JOIN users ON users.id = doctor_profiles.user_id").
		Where("users.is_active = ?", true)

	if filter != nil {
		if filter.Name != "" {
			query = query.Where("users.full_name ILIKE ?", "%"+filter.Name+"%")
		}
		if filter.Specialty != "" {
			query = query.Where("doctor_profiles.specialty ILIKE ?", "%"+filter.Specialty+"%")
		}
	}

	var profiles []entity.DoctorProfile
	err := query.
		Preload("User").
		Preload("Slots", func(db *gorm.DB) *gorm.DB {
			return db.Order("doctor_slots.position ASC")
		}).
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *doctorProfileRepository) Update(ctx context.Context, profile *entity.DoctorProfile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("User", "Slots").Save(profile).Error; err != nil {
			return err
		}
		if profile.User.ID == uuid.Nil {
			return nil
		}
		return tx.Model(&entity.User{}).
			Where("id = ?", profile.UserID).
			Update("full_name", profile.User.FullName).Error
	})
}

// DeleteCascade removes everything owned by the doctor in one transaction:
// appointments, slot catalog, profile, user account.
func (r *doctorProfileRepository) DeleteCascade(ctx context.Context, userID uuid.UUID) (int64, error) {
	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("doctor_id = ?", userID).Delete(&entity.Appointment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("doctor_id = ?", userID).Delete(&entity.DoctorSlot{}).Error; err != nil {
			return err
		}
		result := tx.Where("user_id = ?", userID).Delete(&entity.DoctorProfile{})
		if result.Error != nil {
			return result.Error
		}
		affected = result.RowsAffected
		return tx.Where("id = ?", userID).Delete(&entity.User{}).Error
	})
	return affected, err
}
