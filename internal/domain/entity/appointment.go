package entity

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentStatus represents the lifecycle state of an appointment
type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

// AppointmentDuration is the fixed length of every appointment.
const AppointmentDuration = time.Hour

// Appointment represents a patient's booked slot with a doctor.
//
// AppointmentDate and SlotLabel are derived from AppointmentTime when the
// record is written. They are stored as their own columns so the partial
// unique index on (doctor_id, appointment_date, slot_label) for scheduled
// rows can enforce at-most-one booking per doctor per slot per date.
type Appointment struct {
	ID              uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	DoctorID        uuid.UUID         `gorm:"type:uuid;not null;index" json:"doctor_id"`
	PatientID       uuid.UUID         `gorm:"type:uuid;not null;index" json:"patient_id"`
	AppointmentTime time.Time         `gorm:"not null;index" json:"appointment_time"`
	AppointmentDate time.Time         `gorm:"type:date;not null" json:"appointment_date"`
	SlotLabel       string            `gorm:"type:varchar(5);not null" json:"slot_label"`
	Status          AppointmentStatus `gorm:"type:varchar(20);not null;default:'scheduled';index" json:"status"`
	CreatedAt       time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Doctor  DoctorProfile  `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
	Patient PatientProfile `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// SetAppointmentTime sets the timestamp and keeps the derived date and slot
// label columns consistent with it.
func (a *Appointment) SetAppointmentTime(t time.Time) {
	a.AppointmentTime = t
	a.AppointmentDate = t.Truncate(24 * time.Hour)
	a.SlotLabel = t.Format(SlotLabelFormat)
}

// EndTime returns the appointment end, one hour after the start.
func (a *Appointment) EndTime() time.Time {
	return a.AppointmentTime.Add(AppointmentDuration)
}

// IsScheduled checks if the appointment is still scheduled
func (a *Appointment) IsScheduled() bool {
	return a.Status == AppointmentStatusScheduled
}

// IsCompleted checks if the appointment has been completed
func (a *Appointment) IsCompleted() bool {
	return a.Status == AppointmentStatusCompleted
}

// IsCancelled checks if the appointment has been cancelled
func (a *Appointment) IsCancelled() bool {
	return a.Status == AppointmentStatusCancelled
}

// CanTransitionTo reports whether moving to the given status is a legal
// state change. Scheduled may move to completed or cancelled; completed and
// cancelled are terminal.
func (a *Appointment) CanTransitionTo(next AppointmentStatus) bool {
	if a.Status != AppointmentStatusScheduled {
		return false
	}
	return next == AppointmentStatusCompleted || next == AppointmentStatusCancelled
}
