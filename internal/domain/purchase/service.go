package purchase

import (
	"context"
	"fmt"
	"time"

	"github.com/ehealth/ehealth/internal/domain/errs"
	"github.com/ehealth/ehealth/pkg/pagination"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Input is a sale to log. DatePurchase defaults to now.
type Input struct {
	UserID       int64      `json:"user_id"`
	MedicationID int64      `json:"medication_id"`
	DatePurchase *time.Time `json:"date_purchase"`
	Quantity     int        `json:"quantity"`
	TotalPayment float64    `json:"total_payment"`
}

// Create logs a sale under the acting pharmacist.
func (s *Service) Create(ctx context.Context, pharmacistID int64, in *Input) (*Record, error) {
	switch {
	case in.UserID == 0:
		return nil, fmt.Errorf("user_id is required: %w", errs.ErrValidation)
	case in.MedicationID == 0:
		return nil, fmt.Errorf("medication_id is required: %w", errs.ErrValidation)
	case in.Quantity <= 0:
		return nil, fmt.Errorf("quantity must be positive: %w", errs.ErrValidation)
	case in.TotalPayment < 0:
		return nil, fmt.Errorf("total_payment must not be negative: %w", errs.ErrValidation)
	}
	when := s.now()
	if in.DatePurchase != nil {
		when = *in.DatePurchase
	}
	rec := &Record{
		UserID:       in.UserID,
		PharmacistID: pharmacistID,
		MedicationID: in.MedicationID,
		DatePurchase: when,
		Quantity:     in.Quantity,
		TotalPayment: in.TotalPayment,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Delete removes a sale. Only the pharmacist who logged it may delete it.
func (s *Service) Delete(ctx context.Context, id, pharmacistID int64) error {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if rec.PharmacistID != pharmacistID {
		return fmt.Errorf("purchase record %d: %w", id, errs.ErrUnauthorized)
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListForUser(ctx context.Context, userID int64) ([]*Record, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) ListByOrganization(ctx context.Context, organizationID int64, p pagination.Params) ([]*Record, int64, error) {
	return s.repo.ListByOrganization(ctx, organizationID, p)
}

func (s *Service) Statistics(ctx context.Context, organizationID int64) (*Statistics, error) {
	return s.repo.Statistics(ctx, organizationID)
}
