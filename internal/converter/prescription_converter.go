package converter

import (
	"smart-clinic-backend/internal/delivery/dto"
	"smart-clinic-backend/internal/domain/entity"
)

// PrescriptionToResponse converts a Prescription entity to PrescriptionResponse DTO
func PrescriptionToResponse(prescription *entity.Prescription) *dto.PrescriptionResponse {
	if prescription == nil {
		return nil
	}

	return &dto.PrescriptionResponse{
		ID:            prescription.ID,
		AppointmentID: prescription.AppointmentID,
		PatientName:   prescription.PatientName,
		Medication:    prescription.Medication,
		Dosage:        prescription.Dosage,
		DoctorNotes:   prescription.DoctorNotes,
		CreatedAt:     prescription.CreatedAt,
	}
}

// PrescriptionsToListResponse converts a slice of Prescription entities to a list DTO
func PrescriptionsToListResponse(prescriptions []entity.Prescription) *dto.PrescriptionListResponse {
	responses := make([]dto.PrescriptionResponse, len(prescriptions))
	for i := range prescriptions {
		responses[i] = *PrescriptionToResponse(&prescriptions[i])
	}
	return &dto.PrescriptionListResponse{
		Prescriptions: responses,
		Total:         len(responses),
	}
}
