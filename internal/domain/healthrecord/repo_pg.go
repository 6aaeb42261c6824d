package healthrecord

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ehealth/ehealth/internal/domain/errs"
	"github.com/ehealth/ehealth/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const recordCols = `id, user_id, health_condition, blood_type, allergic, diseases, created_at, updated_at`

func scanRecord(row pgx.Row) (*HealthRecord, error) {
	rec := &HealthRecord{}
	err := row.Scan(&rec.ID, &rec.UserID, &rec.HealthCondition, &rec.BloodType,
		&rec.Allergic, &rec.Diseases, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan health record: %w", err)
	}
	return rec, nil
}

func (r *repoPG) Insert(ctx context.Context, userID int64) (*HealthRecord, error) {
	rec := &HealthRecord{UserID: userID}
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO health_records (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING
		RETURNING id, created_at, updated_at`, userID,
	).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
	// DO NOTHING returns no row when the record already exists; the insert is
	// skipped without poisoning a surrounding transaction
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("health record already exists for user %d: %w", userID, errs.ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("insert health record: %w", err)
	}
	return rec, nil
}

func (r *repoPG) GetByUserID(ctx context.Context, userID int64) (*HealthRecord, error) {
	return scanRecord(r.conn(ctx).QueryRow(ctx,
		`SELECT `+recordCols+` FROM health_records WHERE user_id = $1`, userID))
}

func (r *repoPG) Update(ctx context.Context, rec *HealthRecord) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE health_records SET
			health_condition=$2, blood_type=$3, allergic=$4, diseases=$5, updated_at=NOW()
		WHERE user_id = $1`,
		rec.UserID, rec.HealthCondition, rec.BloodType, rec.Allergic, rec.Diseases,
	)
	if err != nil {
		return fmt.Errorf("update health record for user %d: %w", rec.UserID, err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
