package account

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ehealth/ehealth/internal/domain/errs"
	"github.com/ehealth/ehealth/internal/platform/auth"
)

// HealthRecordCreator provisions the blank health record attached to every
// account. Ensure must be idempotent.
type HealthRecordCreator interface {
	Ensure(ctx context.Context, userID int64) error
}

type Service struct {
	users   UserRepository
	records HealthRecordCreator
	tokens  *auth.TokenIssuer
}

func NewService(users UserRepository, records HealthRecordCreator, tokens *auth.TokenIssuer) *Service {
	return &Service{users: users, records: records, tokens: tokens}
}

// RegisterInput carries the fields common to every registration flow.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	ICNo     string `json:"icno"`
	Contact  string `json:"contact"`
	Password string `json:"password"`
	Role     string `json:"user_role"`
	Status   string `json:"status"`
}

func (in *RegisterInput) validate() error {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	switch {
	case in.Name == "":
		return fmt.Errorf("name is required: %w", errs.ErrValidation)
	case in.Email == "" || !strings.Contains(in.Email, "@"):
		return fmt.Errorf("a valid email is required: %w", errs.ErrValidation)
	case in.ICNo == "":
		return fmt.Errorf("identity number is required: %w", errs.ErrValidation)
	case len(in.Password) < 8:
		return fmt.Errorf("password must be at least 8 characters: %w", errs.ErrValidation)
	}
	return nil
}

func (s *Service) create(ctx context.Context, in *RegisterInput, organizationID int64, requestedStatus string) (*User, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	policy := SelectCreationPolicy(in.Role, requestedStatus, organizationID)
	u := &User{
		OrganizationID: organizationID,
		Name:           in.Name,
		Email:          in.Email,
		ICNo:           in.ICNo,
		Contact:        in.Contact,
		PasswordHash:   hash,
		Role:           policy.Role,
		Status:         policy.Status,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	if err := s.records.Ensure(ctx, u.ID); err != nil {
		return nil, fmt.Errorf("provision health record: %w", err)
	}
	return u, nil
}

// Register creates a self-service account in the platform organization.
func (s *Service) Register(ctx context.Context, in *RegisterInput) (*User, error) {
	in.Role = RoleUser
	return s.create(ctx, in, PlatformOrganizationID, StatusActive)
}

// RegisterAdmin creates a platform operator account. The creation policy
// upgrades the requested admin role to e-admin.
func (s *Service) RegisterAdmin(ctx context.Context, in *RegisterInput) (*User, error) {
	in.Role = RoleAdmin
	return s.create(ctx, in, PlatformOrganizationID, StatusActive)
}

// RegisterStaff creates a staff account inside the admin's own organization.
// Allowed roles are the clinical staff roles plus admin. The requested status
// is stored verbatim, defaulting to active when omitted.
func (s *Service) RegisterStaff(ctx context.Context, in *RegisterInput, organizationID int64) (*User, error) {
	switch in.Role {
	case RoleAdmin, RoleDoctor, RoleNurse, RolePharmacist:
	default:
		return nil, fmt.Errorf("role must be one of admin, doctor, nurse or pharmacist: %w", errs.ErrValidation)
	}
	if in.Status == "" {
		in.Status = StatusActive
	}
	if !ValidStatus(in.Status) {
		return nil, fmt.Errorf("unknown status %q: %w", in.Status, errs.ErrValidation)
	}
	return s.create(ctx, in, organizationID, in.Status)
}

// Login authenticates credentials after the account passes the ordered status
// checks. Gate failures and bad credentials come back as *GateError so the
// handler can surface the exact message and HTTP status.
func (s *Service) Login(ctx context.Context, email, password string) (*User, string, *auth.Claims, error) {
	u, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil && !errors.Is(err, errs.ErrNotFound) {
		return nil, "", nil, err
	}
	if gerr := CheckLoginStatus(u); gerr != nil {
		return nil, "", nil, gerr
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, "", nil, &GateError{Code: http.StatusUnauthorized, Message: "Unauthorized"}
	}

	token, claims, err := s.tokens.Issue(u.ID, u.Role, u.OrganizationID)
	if err != nil {
		return nil, "", nil, err
	}
	return u, token, claims, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	return s.users.GetByID(ctx, id)
}

// ProfileUpdate carries the editable profile fields. Nil pointers leave the
// stored value untouched.
type ProfileUpdate struct {
	Name       *string `json:"name"`
	Email      *string `json:"email"`
	ICNo       *string `json:"icno"`
	Contact    *string `json:"contact"`
	ProfileImg *string `json:"profile_img"`
}

func (s *Service) UpdateProfile(ctx context.Context, id int64, in *ProfileUpdate) (*User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		u.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		u.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.ICNo != nil {
		u.ICNo = *in.ICNo
	}
	if in.Contact != nil {
		u.Contact = *in.Contact
	}
	if in.ProfileImg != nil {
		u.ProfileImg = in.ProfileImg
	}
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// ChangePassword verifies the current password before storing the new hash.
func (s *Service) ChangePassword(ctx context.Context, id int64, current, next string) error {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(u.PasswordHash, current) {
		return &GateError{Code: http.StatusForbidden, Message: "Current password is incorrect"}
	}
	if len(next) < 8 {
		return fmt.Errorf("password must be at least 8 characters: %w", errs.ErrValidation)
	}
	hash, err := auth.HashPassword(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.UpdatePassword(ctx, id, hash)
}

func (s *Service) UpdateStatus(ctx context.Context, id int64, status string) error {
	if !ValidStatus(status) {
		return fmt.Errorf("unknown status %q: %w", status, errs.ErrValidation)
	}
	return s.users.UpdateStatus(ctx, id, status)
}

// SearchPatients finds accounts with the plain user role by partial identity
// number match.
func (s *Service) SearchPatients(ctx context.Context, icno string) ([]*User, error) {
	if strings.TrimSpace(icno) == "" {
		return nil, fmt.Errorf("icno is required: %w", errs.ErrValidation)
	}
	return s.users.SearchUsersByICNo(ctx, icno)
}

// ListMembers returns the members of an organization excluding its founding
// admin and the caller, which is what the staff directory shows.
func (s *Service) ListMembers(ctx context.Context, organizationID, actingUserID int64) ([]*User, error) {
	members, err := s.users.ListByOrganization(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	var firstAdminID int64
	if fa, err := s.users.FirstAdmin(ctx, organizationID); err == nil {
		firstAdminID = fa.ID
	} else if !errors.Is(err, errs.ErrNotFound) {
		return nil, err
	}

	out := members[:0]
	for _, m := range members {
		if m.ID == firstAdminID || m.ID == actingUserID {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// ListMembersByRole returns an organization's members holding a single role.
func (s *Service) ListMembersByRole(ctx context.Context, organizationID int64, role string) ([]*User, error) {
	return s.users.ListByRoleAndOrganization(ctx, organizationID, role)
}
