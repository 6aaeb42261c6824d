package organization

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ehealth/ehealth/internal/domain/errs"
	"github.com/ehealth/ehealth/internal/platform/db"
	"github.com/ehealth/ehealth/pkg/pagination"
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

const orgCols = `id, name, code, type, address, latitude, longitude, created_at, updated_at`

func scanOrganization(row pgx.Row) (*Organization, error) {
	o := &Organization{}
	err := row.Scan(&o.ID, &o.Name, &o.Code, &o.Type, &o.Address, &o.Latitude, &o.Longitude, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan organization: %w", err)
	}
	return o, nil
}

func (r *repoPG) Create(ctx context.Context, o *Organization) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO organizations (name, code, type, address, latitude, longitude)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id, created_at, updated_at`,
		o.Name, o.Code, o.Type, o.Address, o.Latitude, o.Longitude,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if db.IsUniqueViolation(err) {
		return fmt.Errorf("organization code already registered: %w", errs.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("create organization: %w", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*Organization, error) {
	return scanOrganization(r.conn(ctx).QueryRow(ctx,
		`SELECT `+orgCols+` FROM organizations WHERE id = $1`, id))
}

func (r *repoPG) GetByCode(ctx context.Context, code string) (*Organization, error) {
	return scanOrganization(r.conn(ctx).QueryRow(ctx,
		`SELECT `+orgCols+` FROM organizations WHERE code = $1`, code))
}

func (r *repoPG) Update(ctx context.Context, o *Organization) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE organizations SET
			name=$2, type=$3, address=$4, latitude=$5, longitude=$6, updated_at=NOW()
		WHERE id = $1`,
		o.ID, o.Name, o.Type, o.Address, o.Latitude, o.Longitude,
	)
	if err != nil {
		return fmt.Errorf("update organization %d: %w", o.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, p pagination.Params) ([]*Organization, int64, error) {
	var total int64
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM organizations WHERE id <> $1`, PlatformOrganizationID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count organizations: %w", err)
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+orgCols+` FROM organizations
		WHERE id <> $1
		ORDER BY name
		LIMIT $2 OFFSET $3`, PlatformOrganizationID, p.Limit, p.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list organizations: %w", err)
	}
	defer rows.Close()

	var orgs []*Organization
	for rows.Next() {
		o, err := scanOrganization(rows)
		if err != nil {
			return nil, 0, err
		}
		orgs = append(orgs, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate organizations: %w", err)
	}
	return orgs, total, nil
}

func (r *repoPG) ListAll(ctx context.Context) ([]*Organization, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+orgCols+` FROM organizations
		WHERE id <> $1
		ORDER BY id`, PlatformOrganizationID)
	if err != nil {
		return nil, fmt.Errorf("list all organizations: %w", err)
	}
	defer rows.Close()

	var orgs []*Organization
	for rows.Next() {
		o, err := scanOrganization(rows)
		if err != nil {
			return nil, err
		}
		orgs = append(orgs, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate organizations: %w", err)
	}
	return orgs, nil
}

func (r *repoPG) AddLocation(ctx context.Context, l *Location) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO locations (organization_id, address, latitude, longitude)
		VALUES ($1,$2,$3,$4)
		RETURNING id`,
		l.OrganizationID, l.Address, l.Latitude, l.Longitude,
	).Scan(&l.ID)
	if err != nil {
		return fmt.Errorf("add location: %w", err)
	}
	return nil
}

func (r *repoPG) ListLocations(ctx context.Context, organizationID int64) ([]*Location, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, organization_id, address, latitude, longitude
		FROM locations WHERE organization_id = $1 ORDER BY id`, organizationID)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()

	var locs []*Location
	for rows.Next() {
		l := &Location{}
		if err := rows.Scan(&l.ID, &l.OrganizationID, &l.Address, &l.Latitude, &l.Longitude); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		locs = append(locs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate locations: %w", err)
	}
	return locs, nil
}
