package medication

import "time"

// Medication is a catalogue entry maintained by the platform operator.
type Medication struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Description  string    `db:"description" json:"description"`
	Ingredient   string    `db:"ingredient" json:"ingredient"`
	Form         string    `db:"form" json:"form"`
	Usage        string    `db:"usage" json:"usage"`
	Strength     string    `db:"strength" json:"strength"`
	Manufacturer string    `db:"manufacturer" json:"manufacturer"`
	Price        float64   `db:"price" json:"price"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Prescribed is a catalogue entry joined with the prescription that put it on
// a patient's plan.
type Prescribed struct {
	Medication
	AppointmentID    int64     `json:"appointment_id"`
	Dosage           string    `json:"dosage"`
	Frequency        string    `json:"frequency"`
	DurationDays     int       `json:"duration_days"`
	PrescriptionDate time.Time `json:"prescription_date"`
	StartDate        time.Time `json:"start_date"`
	EndDate          time.Time `json:"end_date"`
}
