package healthrecord

import (
	"context"
	"errors"

	"github.com/ehealth/ehealth/internal/domain/errs"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Ensure creates the blank record for a user if it does not exist yet. An
// existing record makes Ensure a no-op, so concurrent callers racing on the
// same user both succeed.
func (s *Service) Ensure(ctx context.Context, userID int64) error {
	_, err := s.repo.Insert(ctx, userID)
	if errors.Is(err, errs.ErrConflict) {
		return nil
	}
	return err
}

func (s *Service) GetByUserID(ctx context.Context, userID int64) (*HealthRecord, error) {
	return s.repo.GetByUserID(ctx, userID)
}

// UpdateInput carries the editable clinical fields. Nil pointers leave the
// stored value untouched; explicit empty strings clear nothing either, the
// clinical fields are free text.
type UpdateInput struct {
	HealthCondition *string `json:"health_condition"`
	BloodType       *string `json:"blood_type"`
	Allergic        *string `json:"allergic"`
	Diseases        *string `json:"diseases"`
}

func (s *Service) Update(ctx context.Context, userID int64, in *UpdateInput) (*HealthRecord, error) {
	rec, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.HealthCondition != nil {
		rec.HealthCondition = in.HealthCondition
	}
	if in.BloodType != nil {
		rec.BloodType = in.BloodType
	}
	if in.Allergic != nil {
		rec.Allergic = in.Allergic
	}
	if in.Diseases != nil {
		rec.Diseases = in.Diseases
	}
	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}
