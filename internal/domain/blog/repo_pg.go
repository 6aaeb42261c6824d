package blog

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

const blogCols = `id, user_id, title, content, banner, status, created_at, updated_at`

func scanBlogpost(row pgx.Row) (*Blogpost, error) {
	b := &Blogpost{}
	err := row.Scan(&b.ID, &b.UserID, &b.Title, &b.Content, &b.Banner, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan blogpost: %w", err)
	}
	return b, nil
}

func scanBlogposts(rows pgx.Rows) ([]*Blogpost, error) {
	defer rows.Close()
	var posts []*Blogpost
	for rows.Next() {
		b, err := scanBlogpost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blogposts: %w", err)
	}
	return posts, nil
}

func (r *repoPG) Create(ctx context.Context, b *Blogpost) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO blogposts (user_id, title, content, banner, status)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, created_at, updated_at`,
		b.UserID, b.Title, b.Content, b.Banner, b.Status,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create blogpost: %w", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*Blogpost, error) {
	return scanBlogpost(r.conn(ctx).QueryRow(ctx,
		`SELECT `+blogCols+` FROM blogposts WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, b *Blogpost) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE blogposts SET title=$2, content=$3, banner=$4, updated_at=NOW()
		WHERE id = $1`,
		b.ID, b.Title, b.Content, b.Banner,
	)
	if err != nil {
		return fmt.Errorf("update blogpost %d: %w", b.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM blogposts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete blogpost %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *repoPG) UpdateStatus(ctx context.Context, id int64, status string) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE blogposts SET status=$2, updated_at=NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update blogpost %d status: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *repoPG) ListByStatus(ctx context.Context, status string) ([]*Blogpost, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+blogCols+` FROM blogposts
		WHERE status = $1 ORDER BY created_at DESC`, status)
	if err != nil {
		return nil, fmt.Errorf("list blogposts by status: %w", err)
	}
	return scanBlogposts(rows)
}

func (r *repoPG) ListByUser(ctx context.Context, userID int64) ([]*Blogpost, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+blogCols+` FROM blogposts
		WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list blogposts by user: %w", err)
	}
	return scanBlogposts(rows)
}

func (r *repoPG) SearchByTitle(ctx context.Context, query string) ([]*Blogpost, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+blogCols+` FROM blogposts
		WHERE title ILIKE '%' || $1 || '%' AND status = $2
		ORDER BY created_at DESC`, query, StatusPublished)
	if err != nil {
		return nil, fmt.Errorf("search blogposts: %w", err)
	}
	return scanBlogposts(rows)
}

func (r *repoPG) TerminateByUserIDs(ctx context.Context, userIDs []int64) error {
	if len(userIDs) == 0 {
		return nil
	}
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE blogposts SET status=$2, updated_at=NOW()
		WHERE user_id = ANY($1)`, userIDs, StatusTerminated)
	if err != nil {
		return fmt.Errorf("terminate blogposts: %w", err)
	}
	return nil
}
