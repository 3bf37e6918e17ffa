package entity

// ConditionFilter classifies a patient's appointments for patient-facing
// queries. "past" maps to completed status and "future" to scheduled status;
// the mapping is by status rather than wall clock so results do not depend
// on when the query runs.
type ConditionFilter string

const (
	ConditionPast   ConditionFilter = "past"
	ConditionFuture ConditionFilter = "future"
)

// Status returns the appointment status a condition filter selects.
func (c ConditionFilter) Status() (AppointmentStatus, bool) {
	switch c {
	case ConditionPast:
		return AppointmentStatusCompleted, true
	case ConditionFuture:
		return AppointmentStatusScheduled, true
	default:
		return "", false
	}
}

// DoctorFilter is a domain-level filter for searching doctors.
// Used by repository layer to avoid coupling with delivery DTOs.
type DoctorFilter struct {
	Name      string // Filter by doctor name (ILIKE)
	Specialty string // Filter by specialty (ILIKE)
	AmOrPm    string // "AM" or "PM" catalog availability, empty for any
}
