package account

import "time"

// User roles. Staff sub-roles (doctor, nurse, pharmacist) and admin are
// assigned by collaborated organizations; e-admin is the platform operator.
const (
	RolePlatformAdmin = "e-admin"
	RoleAdmin         = "admin"
	RoleUser          = "user"
	RoleDoctor        = "doctor"
	RoleNurse         = "nurse"
	RolePharmacist    = "pharmacist"
)

// Account statuses.
const (
	StatusPending    = "pending"
	StatusActive     = "active"
	StatusTerminated = "terminated"
)

// PlatformOrganizationID is the distinguished "no organization" tenant every
// self-registered user belongs to.
const PlatformOrganizationID int64 = 1

// User maps to the users table.
type User struct {
	ID             int64     `db:"id" json:"id"`
	OrganizationID int64     `db:"organization_id" json:"organization_id"`
	Name           string    `db:"name" json:"name"`
	Email          string    `db:"email" json:"email"`
	ICNo           string    `db:"icno" json:"icno"`
	Contact        string    `db:"contact" json:"contact"`
	PasswordHash   string    `db:"password_hash" json:"-"`
	Role           string    `db:"user_role" json:"user_role"`
	Status         string    `db:"status" json:"status"`
	ProfileImg     *string   `db:"profile_img" json:"profile_img,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// ValidStatus reports whether s is one of the known account statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusActive, StatusTerminated:
		return true
	}
	return false
}
