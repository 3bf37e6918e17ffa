package converter

import (
	"smart-clinic-backend/internal/delivery/dto"
	"smart-clinic-backend/internal/domain/entity"
)

// DoctorToResponse converts a DoctorProfile entity to DoctorResponse DTO
func DoctorToResponse(profile *entity.DoctorProfile) *dto.DoctorResponse {
	if profile == nil {
		return nil
	}

	slots := make([]string, len(profile.Slots))
	for i, slot := range profile.Slots {
		slots[i] = slot.SlotLabel
	}

	return &dto.DoctorResponse{
		ID:        profile.UserID,
		Email:     profile.User.Email,
		FullName:  profile.User.FullName,
		STRNumber: profile.STRNumber,
		Specialty: profile.Specialty,
		Biography: profile.Biography,
		IsActive:  profile.User.IsActive,
		Slots:     slots,
	}
}

// DoctorsToListResponse converts a slice of DoctorProfile entities to a list DTO
func DoctorsToListResponse(profiles []entity.DoctorProfile) *dto.DoctorListResponse {
	responses := make([]dto.DoctorResponse, len(profiles))
	for i := range profiles {
		responses[i] = *DoctorToResponse(&profiles[i])
	}
	return &dto.DoctorListResponse{
		Doctors: responses,
		Total:   len(responses),
	}
}
