package appointment

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

const appointmentCols = `id, user_id, doctor_id, organization_id, appointment_datetime, type, purpose, duration, note, status, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	a := &Appointment{}
	err := row.Scan(&a.ID, &a.UserID, &a.DoctorID, &a.OrganizationID, &a.AppointmentDatetime,
		&a.Type, &a.Purpose, &a.Duration, &a.Note, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan appointment: %w", err)
	}
	return a, nil
}

func scanAppointments(rows pgx.Rows) ([]*Appointment, error) {
	defer rows.Close()
	var appts []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appts = append(appts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate appointments: %w", err)
	}
	return appts, nil
}

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO appointments (user_id, doctor_id, organization_id, appointment_datetime, type, purpose, duration, note, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id, created_at, updated_at`,
		a.UserID, a.DoctorID, a.OrganizationID, a.AppointmentDatetime, a.Type, a.Purpose, a.Duration, a.Note, a.Status,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create appointment: %w", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*Appointment, error) {
	return scanAppointment(r.conn(ctx).QueryRow(ctx,
		`SELECT `+appointmentCols+` FROM appointments WHERE id = $1`, id))
}

func (r *repoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete appointment %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *repoPG) UpdateStatus(ctx context.Context, id int64, status string) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE appointments SET status=$2, updated_at=NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update appointment %d status: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *repoPG) ListForUser(ctx context.Context, userID int64) ([]*Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+appointmentCols+` FROM appointments
		WHERE user_id = $1 ORDER BY appointment_datetime DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list appointments for user: %w", err)
	}
	return scanAppointments(rows)
}

func (r *repoPG) ListForDoctor(ctx context.Context, doctorID int64) ([]*Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+appointmentCols+` FROM appointments
		WHERE doctor_id = $1 ORDER BY appointment_datetime DESC`, doctorID)
	if err != nil {
		return nil, fmt.Errorf("list appointments for doctor: %w", err)
	}
	return scanAppointments(rows)
}

func (r *repoPG) ListByOrganization(ctx context.Context, organizationID int64, p pagination.Params) ([]*Appointment, int64, error) {
	var total int64
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM appointments WHERE organization_id = $1`, organizationID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count appointments: %w", err)
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+appointmentCols+` FROM appointments
		WHERE organization_id = $1
		ORDER BY appointment_datetime DESC
		LIMIT $2 OFFSET $3`, organizationID, p.Limit, p.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list appointments by organization: %w", err)
	}
	appts, err := scanAppointments(rows)
	if err != nil {
		return nil, 0, err
	}
	return appts, total, nil
}

func (r *repoPG) AddPrescription(ctx context.Context, p *Prescription) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO prescriptions (appointment_id, medication_id, dosage, frequency, duration, prescription_date, start_date, end_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id`,
		p.AppointmentID, p.MedicationID, p.Dosage, p.Frequency, p.Duration,
		p.PrescriptionDate, p.StartDate, p.EndDate,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("add prescription: %w", err)
	}
	return nil
}

func (r *repoPG) ListPrescriptions(ctx context.Context, appointmentID int64) ([]*Prescription, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, appointment_id, medication_id, dosage, frequency, duration, prescription_date, start_date, end_date
		FROM prescriptions WHERE appointment_id = $1 ORDER BY id`, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("list prescriptions: %w", err)
	}
	defer rows.Close()

	var out []*Prescription
	for rows.Next() {
		p := &Prescription{}
		err := rows.Scan(&p.ID, &p.AppointmentID, &p.MedicationID, &p.Dosage, &p.Frequency,
			&p.Duration, &p.PrescriptionDate, &p.StartDate, &p.EndDate)
		if err != nil {
			return nil, fmt.Errorf("scan prescription: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate prescriptions: %w", err)
	}
	return out, nil
}

func (r *repoPG) PatientsByDoctor(ctx context.Context, doctorID int64) ([]*Patient, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT DISTINCT u.id, u.name, u.email, u.icno, u.contact
		FROM appointments a
		JOIN users u ON u.id = a.user_id
		WHERE a.doctor_id = $1
		ORDER BY u.name`, doctorID)
	if err != nil {
		return nil, fmt.Errorf("list patients by doctor: %w", err)
	}
	defer rows.Close()

	var out []*Patient
	for rows.Next() {
		p := &Patient{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Email, &p.ICNo, &p.Contact); err != nil {
			return nil, fmt.Errorf("scan patient: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate patients: %w", err)
	}
	return out, nil
}
