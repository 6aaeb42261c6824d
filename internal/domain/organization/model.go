package organization

import "time"

// PlatformOrganizationID is the reserved "no organization" tenant. It never
// appears in listings or collaboration flows.
const PlatformOrganizationID int64 = 1

// Organization maps to the organizations table.
type Organization struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Code      string    `db:"code" json:"code"`
	Type      string    `db:"type" json:"type"`
	Address   *string   `db:"address" json:"address,omitempty"`
	Latitude  *float64  `db:"latitude" json:"latitude,omitempty"`
	Longitude *float64  `db:"longitude" json:"longitude,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Location is a branch address of an organization.
type Location struct {
	ID             int64    `db:"id" json:"id"`
	OrganizationID int64    `db:"organization_id" json:"organization_id"`
	Address        string   `db:"address" json:"address"`
	Latitude       *float64 `db:"latitude" json:"latitude,omitempty"`
	Longitude      *float64 `db:"longitude" json:"longitude,omitempty"`
}
