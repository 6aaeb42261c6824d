package medication

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

const medicationCols = `id, name, description, ingredient, form, usage, strength, manufacturer, price, created_at, updated_at`

func scanMedication(row pgx.Row) (*Medication, error) {
	m := &Medication{}
	err := row.Scan(&m.ID, &m.Name, &m.Description, &m.Ingredient, &m.Form, &m.Usage,
		&m.Strength, &m.Manufacturer, &m.Price, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan medication: %w", err)
	}
	return m, nil
}

func scanMedications(rows pgx.Rows) ([]*Medication, error) {
	defer rows.Close()
	var meds []*Medication
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, err
		}
		meds = append(meds, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate medications: %w", err)
	}
	return meds, nil
}

func (r *repoPG) Create(ctx context.Context, m *Medication) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO medications (name, description, ingredient, form, usage, strength, manufacturer, price)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id, created_at, updated_at`,
		m.Name, m.Description, m.Ingredient, m.Form, m.Usage, m.Strength, m.Manufacturer, m.Price,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create medication: %w", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*Medication, error) {
	return scanMedication(r.conn(ctx).QueryRow(ctx,
		`SELECT `+medicationCols+` FROM medications WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, m *Medication) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE medications SET
			name=$2, description=$3, ingredient=$4, form=$5, usage=$6,
			strength=$7, manufacturer=$8, price=$9, updated_at=NOW()
		WHERE id = $1`,
		m.ID, m.Name, m.Description, m.Ingredient, m.Form, m.Usage, m.Strength, m.Manufacturer, m.Price,
	)
	if err != nil {
		return fmt.Errorf("update medication %d: %w", m.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, p pagination.Params) ([]*Medication, int64, error) {
	var total int64
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM medications`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count medications: %w", err)
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+medicationCols+` FROM medications
		ORDER BY name LIMIT $1 OFFSET $2`, p.Limit, p.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list medications: %w", err)
	}
	meds, err := scanMedications(rows)
	if err != nil {
		return nil, 0, err
	}
	return meds, total, nil
}

func (r *repoPG) SearchByName(ctx context.Context, query string) ([]*Medication, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+medicationCols+` FROM medications
		WHERE name ILIKE '%' || $1 || '%' ORDER BY name`, query)
	if err != nil {
		return nil, fmt.Errorf("search medications: %w", err)
	}
	return scanMedications(rows)
}

func (r *repoPG) ListPrescribedForUser(ctx context.Context, userID int64) ([]*Prescribed, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT m.id, m.name, m.description, m.ingredient, m.form, m.usage,
		       m.strength, m.manufacturer, m.price, m.created_at, m.updated_at,
		       p.appointment_id, p.dosage, p.frequency, p.duration,
		       p.prescription_date, p.start_date, p.end_date
		FROM prescriptions p
		JOIN appointments a ON a.id = p.appointment_id
		JOIN medications m ON m.id = p.medication_id
		WHERE a.user_id = $1
		ORDER BY p.start_date DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list prescribed medications: %w", err)
	}
	defer rows.Close()

	var out []*Prescribed
	for rows.Next() {
		pm := &Prescribed{}
		err := rows.Scan(&pm.ID, &pm.Name, &pm.Description, &pm.Ingredient, &pm.Form, &pm.Usage,
			&pm.Strength, &pm.Manufacturer, &pm.Price, &pm.CreatedAt, &pm.UpdatedAt,
			&pm.AppointmentID, &pm.Dosage, &pm.Frequency, &pm.DurationDays,
			&pm.PrescriptionDate, &pm.StartDate, &pm.EndDate)
		if err != nil {
			return nil, fmt.Errorf("scan prescribed medication: %w", err)
		}
		out = append(out, pm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate prescribed medications: %w", err)
	}
	return out, nil
}
