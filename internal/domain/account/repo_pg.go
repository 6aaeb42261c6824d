package account

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

type userRepoPG struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) UserRepository {
	return &userRepoPG{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *userRepoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const userCols = `id, organization_id, name, email, icno, contact, password_hash, user_role, status, profile_img, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	u := &User{}
	err := row.Scan(
		&u.ID, &u.OrganizationID, &u.Name, &u.Email, &u.ICNo, &u.Contact,
		&u.PasswordHash, &u.Role, &u.Status, &u.ProfileImg, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

func scanUsers(rows pgx.Rows) ([]*User, error) {
	defer rows.Close()
	var users []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

func (r *userRepoPG) Create(ctx context.Context, u *User) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO users (organization_id, name, email, icno, contact, password_hash, user_role, status, profile_img)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id, created_at, updated_at`,
		u.OrganizationID, u.Name, u.Email, u.ICNo, u.Contact, u.PasswordHash, u.Role, u.Status, u.ProfileImg,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if db.IsUniqueViolation(err) {
		return fmt.Errorf("email or identity number already registered: %w", errs.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *userRepoPG) GetByID(ctx context.Context, id int64) (*User, error) {
	return scanUser(r.conn(ctx).QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id = $1`, id))
}

func (r *userRepoPG) GetByEmail(ctx context.Context, email string) (*User, error) {
	return scanUser(r.conn(ctx).QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE email = $1`, email))
}

func (r *userRepoPG) Update(ctx context.Context, u *User) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE users SET
			name=$2, email=$3, icno=$4, contact=$5, profile_img=$6, updated_at=NOW()
		WHERE id = $1`,
		u.ID, u.Name, u.Email, u.ICNo, u.Contact, u.ProfileImg,
	)
	if db.IsUniqueViolation(err) {
		return fmt.Errorf("email or identity number already registered: %w", errs.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("update user %d: %w", u.ID, err)
	}
	return nil
}

func (r *userRepoPG) UpdateStatus(ctx context.Context, id int64, status string) error {
	tag, err := r.conn(ctx).Exec(ctx, `UPDATE users SET status=$2, updated_at=NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update user %d status: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *userRepoPG) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	tag, err := r.conn(ctx).Exec(ctx, `UPDATE users SET password_hash=$2, updated_at=NOW() WHERE id = $1`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update user %d password: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *userRepoPG) SearchUsersByICNo(ctx context.Context, icno string) ([]*User, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+userCols+` FROM users
		WHERE icno LIKE '%' || $1 || '%' AND user_role = $2
		ORDER BY name`, icno, RoleUser)
	if err != nil {
		return nil, fmt.Errorf("search users by icno: %w", err)
	}
	return scanUsers(rows)
}

func (r *userRepoPG) ListByOrganization(ctx context.Context, organizationID int64) ([]*User, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+userCols+` FROM users WHERE organization_id = $1 ORDER BY created_at`, organizationID)
	if err != nil {
		return nil, fmt.Errorf("list users by organization: %w", err)
	}
	return scanUsers(rows)
}

func (r *userRepoPG) ListByRoleAndOrganization(ctx context.Context, organizationID int64, role string) ([]*User, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+userCols+` FROM users
		WHERE organization_id = $1 AND user_role = $2 ORDER BY created_at`, organizationID, role)
	if err != nil {
		return nil, fmt.Errorf("list users by role and organization: %w", err)
	}
	return scanUsers(rows)
}

func (r *userRepoPG) ListPendingByOrganization(ctx context.Context, organizationID int64) ([]*User, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+userCols+` FROM users
		WHERE organization_id = $1 AND status = $2 ORDER BY created_at`, organizationID, StatusPending)
	if err != nil {
		return nil, fmt.Errorf("list pending users: %w", err)
	}
	return scanUsers(rows)
}

func (r *userRepoPG) FirstAdmin(ctx context.Context, organizationID int64) (*User, error) {
	return scanUser(r.conn(ctx).QueryRow(ctx, `
		SELECT `+userCols+` FROM users
		WHERE organization_id = $1 AND user_role = $2
		ORDER BY created_at ASC LIMIT 1`, organizationID, RoleAdmin))
}

func (r *userRepoPG) TerminateByOrganization(ctx context.Context, organizationID int64) ([]int64, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		UPDATE users SET status=$2, updated_at=NOW()
		WHERE organization_id = $1
		RETURNING id`, organizationID, StatusTerminated)
	if err != nil {
		return nil, fmt.Errorf("terminate users of organization %d: %w", organizationID, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan terminated user id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate terminated user ids: %w", err)
	}
	return ids, nil
}
