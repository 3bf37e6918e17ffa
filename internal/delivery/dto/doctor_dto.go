package dto

import (
	"github.com/google/uuid"
)

// Request DTOs

type CreateDoctorRequest struct {
	Email     string   `json:"email" validate:"required,email"`
	Password  string   `json:"password" validate:"required,min=8"`
	FullName  string   `json:"full_name" validate:"required,min=3,max=255"`
	STRNumber string   `json:"str_number" validate:"required,max=50"`
	Specialty string   `json:"specialty" validate:"required,max=100"`
	Biography string   `json:"biography" validate:"omitempty"`
	Slots     []string `json:"slots" validate:"omitempty,dive,datetime=15:04"`
}

type UpdateDoctorRequest struct {
	FullName  string `json:"full_name" validate:"omitempty,min=3,max=255"`
	Specialty string `json:"specialty" validate:"omitempty,max=100"`
	Biography string `json:"biography" validate:"omitempty"`
}

type ReplaceSlotCatalogRequest struct {
	Slots []string `json:"slots" validate:"required,min=1,dive,datetime=15:04"`
}

// Response DTOs

type DoctorResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	STRNumber string    `json:"str_number"`
	Specialty string    `json:"specialty"`
	Biography string    `json:"biography,omitempty"`
	IsActive  bool      `json:"is_active"`
	Slots     []string  `json:"slots,omitempty"`
}

type DoctorListResponse struct {
	Doctors []DoctorResponse `json:"doctors"`
	Total   int              `json:"total"`
}
