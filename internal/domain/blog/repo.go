package blog

import "context"

type Repository interface {
	Create(ctx context.Context, b *Blogpost) error
	GetByID(ctx context.Context, id int64) (*Blogpost, error)
	Update(ctx context.Context, b *Blogpost) error
	Delete(ctx context.Context, id int64) error
	UpdateStatus(ctx context.Context, id int64, status string) error
	ListByStatus(ctx context.Context, status string) ([]*Blogpost, error)
	ListByUser(ctx context.Context, userID int64) ([]*Blogpost, error)
	SearchByTitle(ctx context.Context, query string) ([]*Blogpost, error)
	// TerminateByUserIDs marks every post of the given authors terminated.
	TerminateByUserIDs(ctx context.Context, userIDs []int64) error
}
