package converter

import (
	"smart-clinic-backend/internal/delivery/dto"
	"smart-clinic-backend/internal/domain/entity"
)

// AppointmentToResponse converts an Appointment entity to AppointmentResponse DTO
func AppointmentToResponse(appointment *entity.Appointment) *dto.AppointmentResponse {
	if appointment == nil {
		return nil
	}

	response := &dto.AppointmentResponse{
		ID:              appointment.ID,
		DoctorID:        appointment.DoctorID,
		PatientID:       appointment.PatientID,
		AppointmentTime: appointment.AppointmentTime,
		AppointmentDate: appointment.AppointmentDate.Format("2006-01-02"),
		SlotLabel:       appointment.SlotLabel,
		EndTime:         appointment.EndTime(),
		Status:          string(appointment.Status),
		CreatedAt:       appointment.CreatedAt,
		UpdatedAt:       appointment.UpdatedAt,
	}

	// Include names when the relations were preloaded
	if appointment.Doctor.User.FullName != "" {
		response.DoctorName = appointment.Doctor.User.FullName
	}
	if appointment.Patient.User.FullName != "" {
		response.PatientName = appointment.Patient.User.FullName
	}

	return response
}

// AppointmentsToListResponse converts a slice of Appointment entities to a list DTO
func AppointmentsToListResponse(appointments []entity.Appointment) *dto.AppointmentListResponse {
	responses := make([]dto.AppointmentResponse, len(appointments))
	for i := range appointments {
		responses[i] = *AppointmentToResponse(&appointments[i])
	}
	return &dto.AppointmentListResponse{
		Appointments: responses,
		Total:        len(responses),
	}
}
