package organization

import (
	"context"

	"github.com/ehealth/ehealth/pkg/pagination"
)

type Repository interface {
	Create(ctx context.Context, o *Organization) error
	GetByID(ctx context.Context, id int64) (*Organization, error)
	GetByCode(ctx context.Context, code string) (*Organization, error)
	Update(ctx context.Context, o *Organization) error
	// List returns a page of organizations, excluding the platform tenant.
	List(ctx context.Context, p pagination.Params) ([]*Organization, int64, error)
	// ListAll returns every organization except the platform tenant.
	ListAll(ctx context.Context) ([]*Organization, error)
	AddLocation(ctx context.Context, l *Location) error
	ListLocations(ctx context.Context, organizationID int64) ([]*Location, error)
}
