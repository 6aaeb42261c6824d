package appointment

import (
	"context"

	"github.com/ehealth/ehealth/pkg/pagination"
)

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id int64) (*Appointment, error)
	Delete(ctx context.Context, id int64) error
	UpdateStatus(ctx context.Context, id int64, status string) error
	ListForUser(ctx context.Context, userID int64) ([]*Appointment, error)
	ListForDoctor(ctx context.Context, doctorID int64) ([]*Appointment, error)
	ListByOrganization(ctx context.Context, organizationID int64, p pagination.Params) ([]*Appointment, int64, error)
	AddPrescription(ctx context.Context, p *Prescription) error
	ListPrescriptions(ctx context.Context, appointmentID int64) ([]*Prescription, error)
	// PatientsByDoctor returns the distinct patients a doctor has seen.
	PatientsByDoctor(ctx context.Context, doctorID int64) ([]*Patient, error)
}
