package blog

import (
	"context"
	"fmt"
	"strings"

	"github.com/ehealth/ehealth/internal/domain/errs"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateInput is a new blogpost. Status defaults to draft when omitted.
type CreateInput struct {
	Title   string  `json:"title"`
	Content string  `json:"content"`
	Banner  *string `json:"banner"`
	Status  string  `json:"status"`
}

func (s *Service) Create(ctx context.Context, userID int64, in *CreateInput) (*Blogpost, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, fmt.Errorf("title is required: %w", errs.ErrValidation)
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, fmt.Errorf("content is required: %w", errs.ErrValidation)
	}
	if in.Status == "" {
		in.Status = StatusDraft
	}
	if in.Status != StatusDraft && in.Status != StatusPublished {
		return nil, fmt.Errorf("status must be draft or published: %w", errs.ErrValidation)
	}

	b := &Blogpost{
		UserID:  userID,
		Title:   in.Title,
		Content: in.Content,
		Banner:  in.Banner,
		Status:  in.Status,
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Blogpost, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateInput carries the editable blogpost fields.
type UpdateInput struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
	Banner  *string `json:"banner"`
}

// Update edits a post. Only the author may edit.
func (s *Service) Update(ctx context.Context, id, actingUserID int64, in *UpdateInput) (*Blogpost, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.UserID != actingUserID {
		return nil, fmt.Errorf("not the author of blogpost %d: %w", id, errs.ErrUnauthorized)
	}
	if in.Title != nil {
		b.Title = strings.TrimSpace(*in.Title)
	}
	if in.Content != nil {
		b.Content = *in.Content
	}
	if in.Banner != nil {
		b.Banner = in.Banner
	}
	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Delete removes a post. Only the author may delete.
func (s *Service) Delete(ctx context.Context, id, actingUserID int64) error {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if b.UserID != actingUserID {
		return fmt.Errorf("not the author of blogpost %d: %w", id, errs.ErrUnauthorized)
	}
	return s.repo.Delete(ctx, id)
}

// UpdateStatus moves a post between draft and published. Only the author may
// change it, and terminated posts stay terminated.
func (s *Service) UpdateStatus(ctx context.Context, id, actingUserID int64, status string) (*Blogpost, error) {
	if status != StatusDraft && status != StatusPublished {
		return nil, fmt.Errorf("status must be draft or published: %w", errs.ErrValidation)
	}
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.UserID != actingUserID {
		return nil, fmt.Errorf("not the author of blogpost %d: %w", id, errs.ErrUnauthorized)
	}
	if b.Status == StatusTerminated {
		return nil, fmt.Errorf("blogpost %d is terminated: %w", id, errs.ErrValidation)
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	b.Status = status
	return b, nil
}

func (s *Service) ListPublished(ctx context.Context) ([]*Blogpost, error) {
	return s.repo.ListByStatus(ctx, StatusPublished)
}

func (s *Service) ListOwn(ctx context.Context, userID int64) ([]*Blogpost, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) Search(ctx context.Context, query string) ([]*Blogpost, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("search query is required: %w", errs.ErrValidation)
	}
	return s.repo.SearchByTitle(ctx, query)
}
