package account

import "context"

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u *User) error
	UpdateStatus(ctx context.Context, id int64, status string) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	SearchUsersByICNo(ctx context.Context, icno string) ([]*User, error)
	ListByOrganization(ctx context.Context, organizationID int64) ([]*User, error)
	ListByRoleAndOrganization(ctx context.Context, organizationID int64, role string) ([]*User, error)
	ListPendingByOrganization(ctx context.Context, organizationID int64) ([]*User, error)
	FirstAdmin(ctx context.Context, organizationID int64) (*User, error)
	TerminateByOrganization(ctx context.Context, organizationID int64) ([]int64, error)
}
