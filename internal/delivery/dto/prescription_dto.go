package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreatePrescriptionRequest struct {
	AppointmentID uuid.UUID `json:"appointment_id" validate:"required"`
	Medication    string    `json:"medication" validate:"required,max=255"`
	Dosage        string    `json:"dosage" validate:"required,max=100"`
	DoctorNotes   string    `json:"doctor_notes" validate:"omitempty"`
}

// Response DTOs

type PrescriptionResponse struct {
	ID            uuid.UUID `json:"id"`
	AppointmentID uuid.UUID `json:"appointment_id"`
	PatientName   string    `json:"patient_name"`
	Medication    string    `json:"medication"`
	Dosage        string    `json:"dosage"`
	DoctorNotes   string    `json:"doctor_notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type PrescriptionListResponse struct {
	Prescriptions []PrescriptionResponse `json:"prescriptions"`
	Total         int                    `json:"total"`
}
