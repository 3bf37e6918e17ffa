package dto

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentTimeFormat is the wire format for appointment timestamps.
const AppointmentTimeFormat = "2006-01-02 15:04"

// Request DTOs

type BookAppointmentRequest struct {
	DoctorID        uuid.UUID `json:"doctor_id" validate:"required"`
	AppointmentTime string    `json:"appointment_time" validate:"required,datetime=2006-01-02 15:04"`
}

type UpdateAppointmentRequest struct {
	DoctorID        uuid.UUID `json:"doctor_id" validate:"required"`
	AppointmentTime string    `json:"appointment_time" validate:"required,datetime=2006-01-02 15:04"`
}

// Response DTOs

type AppointmentResponse struct {
	ID              uuid.UUID `json:"id"`
	DoctorID        uuid.UUID `json:"doctor_id"`
	DoctorName      string    `json:"doctor_name,omitempty"`
	PatientID       uuid.UUID `json:"patient_id"`
	PatientName     string    `json:"patient_name,omitempty"`
	AppointmentTime time.Time `json:"appointment_time"`
	AppointmentDate string    `json:"appointment_date"`
	SlotLabel       string    `json:"slot_label"`
	EndTime         time.Time `json:"end_time"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}

type AvailableSlotsResponse struct {
	DoctorID uuid.UUID `json:"doctor_id"`
	Date     string    `json:"date"`
	Slots    []string  `json:"slots"`
}
