package entity

import "github.com/google/uuid"

// DoctorProfile represents doctor-specific profile data
type DoctorProfile struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	STRNumber string    `gorm:"column:str_number;type:varchar(50);uniqueIndex;not null" json:"str_number"`
	Specialty string    `gorm:"type:varchar(100);not null;index" json:"specialty"`
	Biography string    `gorm:"type:text" json:"biography,omitempty"`

	// Relationships
	User  User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Slots []DoctorSlot `gorm:"foreignKey:DoctorID" json:"slots,omitempty"`
}

func (DoctorProfile) TableName() string {
	return "doctor_profiles"
}

// OffersSlot reports whether the given canonical slot label is part of this
// doctor's catalog.
func (d *DoctorProfile) OffersSlot(label string) bool {
	for _, slot := range d.Slots {
		if slot.SlotLabel == label {
			return true
		}
	}
	return false
}
