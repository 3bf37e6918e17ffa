package entity

import (
	"time"

	"github.com/google/uuid"
)

// SlotLabelFormat is the canonical time-of-day format for catalog slots,
// e.g. "09:00". Availability comparisons are exact string equality on
// labels in this format, never substring containment.
const SlotLabelFormat = "15:04"

// DoctorSlot is one bookable time-of-day entry in a doctor's catalog.
// The catalog is date-independent: the same labels apply to every calendar
// date. Catalog order is Position ascending.
type DoctorSlot struct {
	ID        int       `gorm:"primaryKey;autoIncrement" json:"id"`
	DoctorID  uuid.UUID `gorm:"type:uuid;not null;index" json:"doctor_id"`
	Position  int       `gorm:"not null" json:"position"`
	SlotLabel string    `gorm:"type:varchar(5);not null" json:"slot_label"`

	// Relationships
	Doctor DoctorProfile `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

func (DoctorSlot) TableName() string {
	return "doctor_slots"
}

// IsMorning reports whether the slot starts before noon. Used by the
// AM/PM doctor filter.
func (s *DoctorSlot) IsMorning() bool {
	t, err := time.Parse(SlotLabelFormat, s.SlotLabel)
	if err != nil {
		return false
	}
	return t.Hour() < 12
}
