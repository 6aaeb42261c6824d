package appointment

import "time"

// Appointment statuses.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Appointment maps to the appointments table. DoctorID references the users
// table.
type Appointment struct {
	ID                  int64     `db:"id" json:"id"`
	UserID              int64     `db:"user_id" json:"user_id"`
	DoctorID            int64     `db:"doctor_id" json:"doctor_id"`
	OrganizationID      int64     `db:"organization_id" json:"organization_id"`
	AppointmentDatetime time.Time `db:"appointment_datetime" json:"appointment_datetime"`
	Type                string    `db:"type" json:"type"`
	Purpose             *string   `db:"purpose" json:"purpose,omitempty"`
	Duration            *string   `db:"duration" json:"duration,omitempty"`
	Note                *string   `db:"note" json:"note,omitempty"`
	Status              string    `db:"status" json:"status"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time `db:"updated_at" json:"updated_at"`
}

// Prescription is one medication course issued when an appointment is
// completed. Duration is in days; the start and end dates are derived from it
// at completion time.
type Prescription struct {
	ID               int64     `db:"id" json:"id"`
	AppointmentID    int64     `db:"appointment_id" json:"appointment_id"`
	MedicationID     int64     `db:"medication_id" json:"medication_id"`
	Dosage           string    `db:"dosage" json:"dosage"`
	Frequency        string    `db:"frequency" json:"frequency"`
	Duration         int       `db:"duration" json:"duration"`
	PrescriptionDate time.Time `db:"prescription_date" json:"prescription_date"`
	StartDate        time.Time `db:"start_date" json:"start_date"`
	EndDate          time.Time `db:"end_date" json:"end_date"`
}

// Patient is the slim user view returned by the doctor's patient list.
type Patient struct {
	ID      int64  `db:"id" json:"id"`
	Name    string `db:"name" json:"name"`
	Email   string `db:"email" json:"email"`
	ICNo    string `db:"icno" json:"icno"`
	Contact string `db:"contact" json:"contact"`
}

// ValidStatus reports whether s is a known appointment status.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}
