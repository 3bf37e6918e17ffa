package repository

import (
	"context"
	"errors"
	"time"

	"smart-clinic-backend/internal/domain/entity"
	domainRepo "smart-clinic-backend/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type appointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) domainRepo.AppointmentRepository {
	return &appointmentRepository{db: db}
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *entity.Appointment) error {
	return r.db.WithContext(ctx).Create(appointment).Error
}

func (r *appointmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := r.db.WithContext(ctx).
		Preload("Doctor.User").
		Preload("Patient.User").
		Where("id = ?", id).
		First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

// RescheduleIfScheduled guards the reschedule write with the same WHERE
// status = 'scheduled' clause as UpdateStatusIfScheduled. Without it a
// reschedule racing a cancel or completion would write the stale scheduled
// status back and resurrect a terminal appointment.
func (r *appointmentRepository) RescheduleIfScheduled(ctx context.Context, appointment *entity.Appointment) (int64, error) {
	result := r.db.WithContext(ctx).Model(&entity.Appointment{}).
		Where("id = ? AND status = ?", appointment.ID, entity.AppointmentStatusScheduled).
		Updates(map[string]interface{}{
			"doctor_id":        appointment.DoctorID,
			"appointment_time": appointment.AppointmentTime,
			"appointment_date": appointment.AppointmentDate,
			"slot_label":       appointment.SlotLabel,
		})
	return result.RowsAffected, result.Error
}

// UpdateStatusIfScheduled is the compare-and-swap that drives the status
// state machine: the WHERE clause guarantees a row can only ever leave the
// scheduled state once, no matter how many writers race.
func (r *appointmentRepository) UpdateStatusIfScheduled(ctx context.Context, id uuid.UUID, status entity.AppointmentStatus) (int64, error) {
	result := r.db.WithContext(ctx).Model(&entity.Appointment{}).
		Where("id = ? AND status = ?", id, entity.AppointmentStatusScheduled).
		Update("status", status)
	return result.RowsAffected, result.Error
}

func (r *appointmentRepository) FindScheduledByDoctorAndDate(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := r.db.WithContext(ctx).
		Where("doctor_id = ? AND appointment_date = ? AND status = ?",
			doctorID, date.Format("2006-01-02"), entity.AppointmentStatusScheduled).
		Order("appointment_time ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) FindByDoctorAndTimeRange(ctx context.Context, doctorID uuid.UUID, start, end time.Time) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := r.db.WithContext(ctx).
		Preload("Patient.User").
		Where("doctor_id = ? AND appointment_time BETWEEN ? AND ?", doctorID, start, end).
		Order("appointment_time ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) FindByPatientID(ctx context.Context, patientID uuid.UUID) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := r.db.WithContext(ctx).
		Preload("Doctor.User").
		Where("patient_id = ?", patientID).
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) FindByPatientFiltered(ctx context.Context, patientID uuid.UUID, status *entity.AppointmentStatus, doctorName string) ([]entity.Appointment, error) {
	query := r.db.WithContext(ctx).
		Preload("Doctor.User").
		Where("appointments.patient_id = ?", patientID)

	if doctorName != "" {
		query = query.
			Joins("JOIN doctor_profiles ON doctor_profiles.user_id = appointments.doctor_id").
			Joins("JOIN users ON users.id = doctor_profiles.user_id").
			Where("users.full_name ILIKE ?", "%"+doctorName+"%")
	}

	if status != nil {
		query = query.
			Where("appointments.status = ?", *status).
			Order("appointments.appointment_time ASC")
	}

	var appointments []entity.Appointment
	if err := query.Find(&appointments).Error; err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) DeleteByDoctorID(ctx context.Context, doctorID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("doctor_id = ?", doctorID).
		Delete(&entity.Appointment{}).Error
}
