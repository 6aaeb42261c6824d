package medication

import (
	"context"

	"github.com/ehealth/ehealth/pkg/pagination"
)

type Repository interface {
	Create(ctx context.Context, m *Medication) error
	GetByID(ctx context.Context, id int64) (*Medication, error)
	Update(ctx context.Context, m *Medication) error
	List(ctx context.Context, p pagination.Params) ([]*Medication, int64, error)
	SearchByName(ctx context.Context, query string) ([]*Medication, error)
	// ListPrescribedForUser flattens every prescription of the user's
	// appointments, newest course first.
	ListPrescribedForUser(ctx context.Context, userID int64) ([]*Prescribed, error)
}
