package healthrecord

import "context"

type Repository interface {
	// Insert creates a blank record for the user. A second insert for the
	// same user fails with errs.ErrConflict.
	Insert(ctx context.Context, userID int64) (*HealthRecord, error)
	GetByUserID(ctx context.Context, userID int64) (*HealthRecord, error)
	Update(ctx context.Context, rec *HealthRecord) error
}
