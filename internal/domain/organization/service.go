package organization

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

// Details is an organization together with its branch locations.
type Details struct {
	*Organization
	Locations []*Location `json:"locations"`
}

func (s *Service) Get(ctx context.Context, id int64) (*Details, error) {
	if id == PlatformOrganizationID {
		return nil, errs.ErrNotFound
	}
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	locs, err := s.repo.ListLocations(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Details{Organization: o, Locations: locs}, nil
}

func (s *Service) List(ctx context.Context, p pagination.Params) ([]*Organization, int64, error) {
	return s.repo.List(ctx, p)
}

// LocationInput is a new branch address for the caller's organization.
type LocationInput struct {
	Address   string   `json:"address"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (s *Service) AddLocation(ctx context.Context, organizationID int64, in *LocationInput) (*Location, error) {
	if strings.TrimSpace(in.Address) == "" {
		return nil, fmt.Errorf("address is required: %w", errs.ErrValidation)
	}
	l := &Location{
		OrganizationID: organizationID,
		Address:        in.Address,
		Latitude:       in.Latitude,
		Longitude:      in.Longitude,
	}
	if err := s.repo.AddLocation(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// UpdateInput carries the editable organization fields. Nil pointers leave
// the stored value untouched.
type UpdateInput struct {
	Name      *string  `json:"name"`
	Type      *string  `json:"type"`
	Address   *string  `json:"address"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (s *Service) Update(ctx context.Context, id int64, in *UpdateInput) (*Organization, error) {
	if id == PlatformOrganizationID {
		return nil, errs.ErrNotFound
	}
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		o.Name = strings.TrimSpace(*in.Name)
	}
	if in.Type != nil {
		o.Type = *in.Type
	}
	if in.Address != nil {
		o.Address = in.Address
	}
	if in.Latitude != nil {
		o.Latitude = in.Latitude
	}
	if in.Longitude != nil {
		o.Longitude = in.Longitude
	}
	if err := s.repo.Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}
