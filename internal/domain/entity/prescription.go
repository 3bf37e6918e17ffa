package entity

import (
	"time"

	"github.com/google/uuid"
)

// Prescription is issued by a doctor for a completed appointment
type Prescription struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	AppointmentID uuid.UUID `gorm:"type:uuid;not null;index" json:"appointment_id"`
	PatientName   string    `gorm:"type:varchar(255);not null" json:"patient_name"`
	Medication    string    `gorm:"type:varchar(255);not null" json:"medication"`
	Dosage        string    `gorm:"type:varchar(100);not null" json:"dosage"`
	DoctorNotes   string    `gorm:"type:text" json:"doctor_notes,omitempty"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relationships
	Appointment Appointment `gorm:"foreignKey:AppointmentID" json:"appointment,omitempty"`
}

func (Prescription) TableName() string {
	return "prescriptions"
}
