package purchase

import (
	"context"

	"github.com/ehealth/ehealth/pkg/pagination"
)

type Repository interface {
	Create(ctx context.Context, rec *Record) error
	GetByID(ctx context.Context, id int64) (*Record, error)
	Delete(ctx context.Context, id int64) error
	ListByUser(ctx context.Context, userID int64) ([]*Record, error)
	// ListByOrganization pages through the sales logged by an
	// organization's pharmacists.
	ListByOrganization(ctx context.Context, organizationID int64, p pagination.Params) ([]*Record, int64, error)
	Statistics(ctx context.Context, organizationID int64) (*Statistics, error)
}
