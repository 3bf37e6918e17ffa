package repository

import (
	"context"

	"smart-clinic-backend/internal/domain/entity"
	domainRepo "smart-clinic-backend/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type doctorSlotRepository struct {
	db *gorm.DB
}

func NewDoctorSlotRepository(db *gorm.DB) domainRepo.DoctorSlotRepository {
	return &doctorSlotRepository{db: db}
}

func (r *doctorSlotRepository) FindByDoctorID(ctx context.Context, doctorID uuid.UUID) ([]entity.DoctorSlot, error) {
	var slots []entity.DoctorSlot
	err := r.db.WithContext(ctx).
		Where("doctor_id = ?", doctorID).
		Order("position ASC").
		Find(&slots).Error
	if err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *doctorSlotRepository) Replace(ctx context.Context, doctorID uuid.UUID, labels []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("doctor_id = ?", doctorID).Delete(&entity.DoctorSlot{}).Error; err != nil {
			return err
		}
		if len(labels) == 0 {
			return nil
		}
		slots := make([]entity.DoctorSlot, len(labels))
		for i, label := range labels {
			slots[i] = entity.DoctorSlot{
				DoctorID:  doctorID,
				Position:  i,
				SlotLabel: label,
			}
		}
		return tx.Create(&slots).Error
	})
}
