package purchase

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

const recordCols = `id, user_id, pharmacist_id, medication_id, date_purchase, quantity, total_payment, created_at, updated_at`

func scanRecord(row pgx.Row) (*Record, error) {
	rec := &Record{}
	err := row.Scan(&rec.ID, &rec.UserID, &rec.PharmacistID, &rec.MedicationID,
		&rec.DatePurchase, &rec.Quantity, &rec.TotalPayment, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan purchase record: %w", err)
	}
	return rec, nil
}

func scanRecords(rows pgx.Rows) ([]*Record, error) {
	defer rows.Close()
	var recs []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate purchase records: %w", err)
	}
	return recs, nil
}

func (r *repoPG) Create(ctx context.Context, rec *Record) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO purchase_records (user_id, pharmacist_id, medication_id, date_purchase, quantity, total_payment)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id, created_at, updated_at`,
		rec.UserID, rec.PharmacistID, rec.MedicationID, rec.DatePurchase, rec.Quantity, rec.TotalPayment,
	).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create purchase record: %w", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*Record, error) {
	return scanRecord(r.conn(ctx).QueryRow(ctx,
		`SELECT `+recordCols+` FROM purchase_records WHERE id = $1`, id))
}

func (r *repoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM purchase_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete purchase record %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *repoPG) ListByUser(ctx context.Context, userID int64) ([]*Record, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+recordCols+` FROM purchase_records
		WHERE user_id = $1 ORDER BY date_purchase DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list purchases by user: %w", err)
	}
	return scanRecords(rows)
}

func (r *repoPG) ListByOrganization(ctx context.Context, organizationID int64, p pagination.Params) ([]*Record, int64, error) {
	var total int64
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*)
		FROM purchase_records pr
		JOIN users ph ON ph.id = pr.pharmacist_id
		WHERE ph.organization_id = $1`, organizationID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count organization purchases: %w", err)
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT pr.id, pr.user_id, pr.pharmacist_id, pr.medication_id,
		       pr.date_purchase, pr.quantity, pr.total_payment, pr.created_at, pr.updated_at
		FROM purchase_records pr
		JOIN users ph ON ph.id = pr.pharmacist_id
		WHERE ph.organization_id = $1
		ORDER BY pr.date_purchase DESC
		LIMIT $2 OFFSET $3`, organizationID, p.Limit, p.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list organization purchases: %w", err)
	}
	recs, err := scanRecords(rows)
	if err != nil {
		return nil, 0, err
	}
	return recs, total, nil
}

func (r *repoPG) Statistics(ctx context.Context, organizationID int64) (*Statistics, error) {
	stats := &Statistics{}
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(pr.total_payment), 0),
		       COALESCE(SUM(pr.total_payment) FILTER (WHERE pr.date_purchase::date = CURRENT_DATE), 0)
		FROM purchase_records pr
		JOIN users ph ON ph.id = pr.pharmacist_id
		WHERE ph.organization_id = $1`, organizationID,
	).Scan(&stats.TotalPurchases, &stats.TotalSales, &stats.TodaySales)
	if err != nil {
		return nil, fmt.Errorf("purchase totals: %w", err)
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT pr.date_purchase::date AS day, SUM(pr.total_payment)
		FROM purchase_records pr
		JOIN users ph ON ph.id = pr.pharmacist_id
		WHERE ph.organization_id = $1
		  AND pr.date_purchase >= CURRENT_DATE - INTERVAL '1 month'
		GROUP BY day
		ORDER BY day`, organizationID)
	if err != nil {
		return nil, fmt.Errorf("daily sales: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		d := &DailySales{}
		if err := rows.Scan(&d.Day, &d.Total); err != nil {
			return nil, fmt.Errorf("scan daily sales: %w", err)
		}
		stats.DailyLastMonth = append(stats.DailyLastMonth, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily sales: %w", err)
	}

	medRows, err := r.conn(ctx).Query(ctx, `
		SELECT m.id, m.name, SUM(pr.quantity), SUM(pr.total_payment)
		FROM purchase_records pr
		JOIN users ph ON ph.id = pr.pharmacist_id
		JOIN medications m ON m.id = pr.medication_id
		WHERE ph.organization_id = $1
		GROUP BY m.id, m.name
		ORDER BY SUM(pr.total_payment) DESC`, organizationID)
	if err != nil {
		return nil, fmt.Errorf("sales by medication: %w", err)
	}
	defer medRows.Close()
	for medRows.Next() {
		ms := &MedicationSales{}
		if err := medRows.Scan(&ms.MedicationID, &ms.Name, &ms.Quantity, &ms.Total); err != nil {
			return nil, fmt.Errorf("scan medication sales: %w", err)
		}
		stats.ByMedication = append(stats.ByMedication, ms)
	}
	if err := medRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate medication sales: %w", err)
	}
	return stats, nil
}
