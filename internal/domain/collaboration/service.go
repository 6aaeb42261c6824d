package collaboration

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ehealth/ehealth/internal/domain/account"
	"github.com/ehealth/ehealth/internal/domain/errs"
	"github.com/ehealth/ehealth/internal/domain/organization"
	"github.com/ehealth/ehealth/internal/platform/auth"
)

// TxRunner executes a function inside one database transaction. Satisfied by
// db.Runner.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// HealthRecordCreator provisions a blank health record. Ensure must be
// idempotent.
type HealthRecordCreator interface {
	Ensure(ctx context.Context, userID int64) error
}

// BlogTerminator sweeps the blogposts of terminated authors.
type BlogTerminator interface {
	TerminateByUserIDs(ctx context.Context, userIDs []int64) error
}

// Service drives the collaboration lifecycle: an organization files a
// request, the platform operator approves or declines it, and a whole
// organization can later be stopped or brought back.
type Service struct {
	tx      TxRunner
	users   account.UserRepository
	orgs    organization.Repository
	blogs   BlogTerminator
	records HealthRecordCreator
}

func NewService(tx TxRunner, users account.UserRepository, orgs organization.Repository,
	blogs BlogTerminator, records HealthRecordCreator) *Service {
	return &Service{tx: tx, users: users, orgs: orgs, blogs: blogs, records: records}
}

// RequestInput is a collaboration request: the organization to register and
// its founding admin account.
type RequestInput struct {
	OrganizationName string   `json:"organization_name"`
	OrganizationCode string   `json:"organization_code"`
	OrganizationType string   `json:"organization_type"`
	Address          *string  `json:"address"`
	Latitude         *float64 `json:"latitude"`
	Longitude        *float64 `json:"longitude"`

	AdminName     string `json:"admin_name"`
	AdminEmail    string `json:"admin_email"`
	AdminICNo     string `json:"admin_icno"`
	AdminContact  string `json:"admin_contact"`
	AdminPassword string `json:"admin_password"`
}

func (in *RequestInput) validate() error {
	in.OrganizationName = strings.TrimSpace(in.OrganizationName)
	in.OrganizationCode = strings.TrimSpace(in.OrganizationCode)
	in.AdminEmail = strings.ToLower(strings.TrimSpace(in.AdminEmail))
	switch {
	case in.OrganizationName == "":
		return fmt.Errorf("organization name is required: %w", errs.ErrValidation)
	case in.OrganizationCode == "":
		return fmt.Errorf("organization code is required: %w", errs.ErrValidation)
	case in.OrganizationType == "":
		return fmt.Errorf("organization type is required: %w", errs.ErrValidation)
	case strings.TrimSpace(in.AdminName) == "":
		return fmt.Errorf("admin name is required: %w", errs.ErrValidation)
	case in.AdminEmail == "" || !strings.Contains(in.AdminEmail, "@"):
		return fmt.Errorf("a valid admin email is required: %w", errs.ErrValidation)
	case in.AdminICNo == "":
		return fmt.Errorf("admin identity number is required: %w", errs.ErrValidation)
	case len(in.AdminPassword) < 8:
		return fmt.Errorf("admin password must be at least 8 characters: %w", errs.ErrValidation)
	}
	return nil
}

// Result pairs the created organization with its pending admin.
type Result struct {
	Organization *organization.Organization `json:"organization"`
	Admin        *account.User              `json:"admin"`
}

// CreateRequest registers the organization and its pending admin account in
// one transaction. The admin cannot log in until the platform operator
// approves the request.
func (s *Service) CreateRequest(ctx context.Context, in *RequestInput) (*Result, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(in.AdminPassword)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	org := &organization.Organization{
		Name:      in.OrganizationName,
		Code:      in.OrganizationCode,
		Type:      in.OrganizationType,
		Address:   in.Address,
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
	}
	admin := &account.User{
		Name:         strings.TrimSpace(in.AdminName),
		Email:        in.AdminEmail,
		ICNo:         in.AdminICNo,
		Contact:      in.AdminContact,
		PasswordHash: hash,
		Role:         account.RoleAdmin,
		Status:       account.StatusPending,
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.orgs.Create(ctx, org); err != nil {
			return err
		}
		admin.OrganizationID = org.ID
		return s.users.Create(ctx, admin)
	})
	if err != nil {
		return nil, err
	}
	return &Result{Organization: org, Admin: admin}, nil
}

// pendingUser loads the subject of a collaboration decision. An absent user
// and a user whose status is no longer pending are both reported as not
// found, so callers cannot probe which accounts exist.
func (s *Service) pendingUser(ctx context.Context, userID int64) (*account.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.Status != account.StatusPending {
		return nil, errs.ErrNotFound
	}
	return u, nil
}

// Approve activates a pending user and provisions their health record,
// atomically. A user that is absent or no longer pending is a 404.
func (s *Service) Approve(ctx context.Context, userID int64) (*account.User, error) {
	u, err := s.pendingUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.users.UpdateStatus(ctx, u.ID, account.StatusActive); err != nil {
			return err
		}
		return s.records.Ensure(ctx, u.ID)
	})
	if err != nil {
		return nil, err
	}
	u.Status = account.StatusActive
	return u, nil
}

// Decline terminates a pending user's account.
func (s *Service) Decline(ctx context.Context, userID int64) (*account.User, error) {
	u, err := s.pendingUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdateStatus(ctx, u.ID, account.StatusTerminated); err != nil {
		return nil, err
	}
	u.Status = account.StatusTerminated
	return u, nil
}

// Stop terminates every member of an organization and all of their
// blogposts in one transaction. Either the whole organization is swept or
// nothing changes.
func (s *Service) Stop(ctx context.Context, organizationID int64) error {
	if organizationID == account.PlatformOrganizationID {
		return errs.ErrNotFound
	}
	if _, err := s.orgs.GetByID(ctx, organizationID); err != nil {
		return err
	}
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		ids, err := s.users.TerminateByOrganization(ctx, organizationID)
		if err != nil {
			return err
		}
		return s.blogs.TerminateByUserIDs(ctx, ids)
	})
}

// Recollaborate reactivates a stopped organization by restoring its founding
// admin, who can then re-register the rest of the staff.
func (s *Service) Recollaborate(ctx context.Context, organizationID int64) (*account.User, error) {
	if organizationID == account.PlatformOrganizationID {
		return nil, errs.ErrNotFound
	}
	admin, err := s.users.FirstAdmin(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdateStatus(ctx, admin.ID, account.StatusActive); err != nil {
		return nil, err
	}
	admin.Status = account.StatusActive
	return admin, nil
}

// PendingRequest is an organization that still has members awaiting review.
type PendingRequest struct {
	Organization *organization.Organization `json:"organization"`
	Pending      []*account.User            `json:"pending_users"`
}

// ListPending returns the organizations with at least one pending member,
// each carrying only its pending members.
func (s *Service) ListPending(ctx context.Context) ([]*PendingRequest, error) {
	orgs, err := s.orgs.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	var out []*PendingRequest
	for _, org := range orgs {
		pending, err := s.users.ListPendingByOrganization(ctx, org.ID)
		if err != nil && !errors.Is(err, errs.ErrNotFound) {
			return nil, err
		}
		if len(pending) == 0 {
			continue
		}
		out = append(out, &PendingRequest{Organization: org, Pending: pending})
	}
	return out, nil
}
