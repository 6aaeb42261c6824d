package medication

import (
	"context"
	"fmt"
	"strings"

	"github.com/ehealth/ehealth/internal/domain/errs"
	"github.com/ehealth/ehealth/pkg/pagination"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Input carries the catalogue fields of a medication.
type Input struct {
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Ingredient   string  `json:"ingredient"`
	Form         string  `json:"form"`
	Usage        string  `json:"usage"`
	Strength     string  `json:"strength"`
	Manufacturer string  `json:"manufacturer"`
	Price        float64 `json:"price"`
}

func (in *Input) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	switch {
	case in.Name == "":
		return fmt.Errorf("name is required: %w", errs.ErrValidation)
	case in.Price < 0:
		return fmt.Errorf("price must not be negative: %w", errs.ErrValidation)
	}
	return nil
}

func (s *Service) Create(ctx context.Context, in *Input) (*Medication, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	m := &Medication{
		Name:         in.Name,
		Description:  in.Description,
		Ingredient:   in.Ingredient,
		Form:         in.Form,
		Usage:        in.Usage,
		Strength:     in.Strength,
		Manufacturer: in.Manufacturer,
		Price:        in.Price,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) Update(ctx context.Context, id int64, in *Input) (*Medication, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	m.Name = in.Name
	m.Description = in.Description
	m.Ingredient = in.Ingredient
	m.Form = in.Form
	m.Usage = in.Usage
	m.Strength = in.Strength
	m.Manufacturer = in.Manufacturer
	m.Price = in.Price
	if err := s.repo.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Medication, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, p pagination.Params) ([]*Medication, int64, error) {
	return s.repo.List(ctx, p)
}

func (s *Service) Search(ctx context.Context, query string) ([]*Medication, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("search query is required: %w", errs.ErrValidation)
	}
	return s.repo.SearchByName(ctx, query)
}

// PrescribedForUser returns the user's medication plan, the prescriptions of
// all their appointments flattened into one list.
func (s *Service) PrescribedForUser(ctx context.Context, userID int64) ([]*Prescribed, error) {
	return s.repo.ListPrescribedForUser(ctx, userID)
}
