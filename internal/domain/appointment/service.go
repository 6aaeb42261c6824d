package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/ehealth/ehealth/internal/domain/errs"
	"github.com/ehealth/ehealth/pkg/pagination"
)

// TxRunner executes a function inside one database transaction. Satisfied by
// db.Runner.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Service struct {
	tx   TxRunner
	repo Repository
	now  func() time.Time
}

func NewService(tx TxRunner, repo Repository) *Service {
	return &Service{tx: tx, repo: repo, now: time.Now}
}

// BookInput is a new appointment request.
type BookInput struct {
	DoctorID            int64     `json:"doctor_id"`
	OrganizationID      int64     `json:"organization_id"`
	AppointmentDatetime time.Time `json:"appointment_datetime"`
	Type                string    `json:"type"`
	Purpose             *string   `json:"purpose"`
	Duration            *string   `json:"duration"`
	Note                *string   `json:"note"`
}

func (in *BookInput) validate() error {
	switch {
	case in.DoctorID == 0:
		return fmt.Errorf("doctor_id is required: %w", errs.ErrValidation)
	case in.OrganizationID == 0:
		return fmt.Errorf("organization_id is required: %w", errs.ErrValidation)
	case in.AppointmentDatetime.IsZero():
		return fmt.Errorf("appointment_datetime is required: %w", errs.ErrValidation)
	case in.Type == "":
		return fmt.Errorf("type is required: %w", errs.ErrValidation)
	}
	return nil
}

// Book files a patient's appointment request. It stays pending until the
// organization confirms it.
func (s *Service) Book(ctx context.Context, userID int64, in *BookInput) (*Appointment, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	a := &Appointment{
		UserID:              userID,
		DoctorID:            in.DoctorID,
		OrganizationID:      in.OrganizationID,
		AppointmentDatetime: in.AppointmentDatetime,
		Type:                in.Type,
		Purpose:             in.Purpose,
		Duration:            in.Duration,
		Note:                in.Note,
		Status:              StatusPending,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// AdminBook books on behalf of a patient. Walk-ins are booked by the front
// desk, so the appointment is confirmed immediately and pinned to the
// admin's own organization.
func (s *Service) AdminBook(ctx context.Context, organizationID, patientID int64, in *BookInput) (*Appointment, error) {
	in.OrganizationID = organizationID
	if err := in.validate(); err != nil {
		return nil, err
	}
	if patientID == 0 {
		return nil, fmt.Errorf("user_id is required: %w", errs.ErrValidation)
	}
	a := &Appointment{
		UserID:              patientID,
		DoctorID:            in.DoctorID,
		OrganizationID:      organizationID,
		AppointmentDatetime: in.AppointmentDatetime,
		Type:                in.Type,
		Purpose:             in.Purpose,
		Duration:            in.Duration,
		Note:                in.Note,
		Status:              StatusConfirmed,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Detail is an appointment with its prescriptions.
type Detail struct {
	*Appointment
	Prescriptions []*Prescription `json:"prescriptions"`
}

// Get returns the appointment with its prescriptions. Only the patient, the
// assigned doctor, or organization staff may see it.
func (s *Service) Get(ctx context.Context, id, actorID, actorOrgID int64, role string) (*Detail, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(a, actorID, actorOrgID, role) {
		return nil, fmt.Errorf("appointment %d: %w", id, errs.ErrUnauthorized)
	}
	prescriptions, err := s.repo.ListPrescriptions(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Detail{Appointment: a, Prescriptions: prescriptions}, nil
}

func canView(a *Appointment, actorID, actorOrgID int64, role string) bool {
	switch {
	case a.UserID == actorID || a.DoctorID == actorID:
		return true
	case role == "e-admin":
		return true
	case a.OrganizationID == actorOrgID && (role == "admin" || role == "nurse" || role == "pharmacist"):
		return true
	}
	return false
}

// ListForActor returns a doctor's schedule or a patient's own appointments,
// newest first.
func (s *Service) ListForActor(ctx context.Context, actorID int64, role string) ([]*Appointment, error) {
	if role == "doctor" {
		return s.repo.ListForDoctor(ctx, actorID)
	}
	return s.repo.ListForUser(ctx, actorID)
}

// Cancel removes a pending appointment. Only the patient who booked it may
// cancel, and confirmed or completed visits stay on record.
func (s *Service) Cancel(ctx context.Context, id, actorID int64) error {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if a.UserID != actorID {
		return fmt.Errorf("appointment %d: %w", id, errs.ErrUnauthorized)
	}
	if a.Status != StatusPending {
		return fmt.Errorf("only pending appointments can be cancelled: %w", errs.ErrValidation)
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListByOrganization(ctx context.Context, organizationID int64, p pagination.Params) ([]*Appointment, int64, error) {
	return s.repo.ListByOrganization(ctx, organizationID, p)
}

// PrescriptionInput is one medication course issued at completion.
type PrescriptionInput struct {
	MedicationID int64  `json:"medication_id"`
	Dosage       string `json:"dosage"`
	Frequency    string `json:"frequency"`
	DurationDays int    `json:"duration_days"`
}

// Complete marks the visit completed and files its prescriptions in one
// transaction. Courses start immediately; the end date is duration days out.
func (s *Service) Complete(ctx context.Context, id, doctorID int64, prescriptions []*PrescriptionInput) (*Detail, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.DoctorID != doctorID {
		return nil, fmt.Errorf("appointment %d: %w", id, errs.ErrUnauthorized)
	}
	if a.Status == StatusCompleted {
		return nil, fmt.Errorf("appointment %d is already completed: %w", id, errs.ErrConflict)
	}
	for _, p := range prescriptions {
		if p.MedicationID == 0 {
			return nil, fmt.Errorf("medication_id is required: %w", errs.ErrValidation)
		}
		if p.DurationDays <= 0 {
			return nil, fmt.Errorf("duration_days must be positive: %w", errs.ErrValidation)
		}
	}

	now := s.now()
	filed := make([]*Prescription, 0, len(prescriptions))
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.repo.UpdateStatus(ctx, id, StatusCompleted); err != nil {
			return err
		}
		for _, in := range prescriptions {
			p := &Prescription{
				AppointmentID:    id,
				MedicationID:     in.MedicationID,
				Dosage:           in.Dosage,
				Frequency:        in.Frequency,
				Duration:         in.DurationDays,
				PrescriptionDate: now,
				StartDate:        now,
				EndDate:          now.AddDate(0, 0, in.DurationDays),
			}
			if err := s.repo.AddPrescription(ctx, p); err != nil {
				return err
			}
			filed = append(filed, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	a.Status = StatusCompleted
	return &Detail{Appointment: a, Prescriptions: filed}, nil
}

// UpdateStatus moves an appointment between pending, confirmed and cancelled.
// Completion goes through Complete so prescriptions are filed with it.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status string) error {
	if !ValidStatus(status) || status == StatusCompleted {
		return fmt.Errorf("invalid status %q: %w", status, errs.ErrValidation)
	}
	return s.repo.UpdateStatus(ctx, id, status)
}

func (s *Service) Prescriptions(ctx context.Context, appointmentID int64) ([]*Prescription, error) {
	if _, err := s.repo.GetByID(ctx, appointmentID); err != nil {
		return nil, err
	}
	return s.repo.ListPrescriptions(ctx, appointmentID)
}

func (s *Service) PatientsByDoctor(ctx context.Context, doctorID int64) ([]*Patient, error) {
	return s.repo.PatientsByDoctor(ctx, doctorID)
}
