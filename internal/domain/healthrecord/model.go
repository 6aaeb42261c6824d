package healthrecord

import "time"

// HealthRecord is the one-to-one clinical record attached to every account.
// All clinical fields start out null and are filled in over time.
type HealthRecord struct {
	ID              int64     `db:"id" json:"id"`
	UserID          int64     `db:"user_id" json:"user_id"`
	HealthCondition *string   `db:"health_condition" json:"health_condition"`
	BloodType       *string   `db:"blood_type" json:"blood_type"`
	Allergic        *string   `db:"allergic" json:"allergic"`
	Diseases        *string   `db:"diseases" json:"diseases"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}
