package healthrecord

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ehealth/ehealth/internal/domain/errs"
)

type mockRepo struct {
	byUser  map[int64]*HealthRecord
	inserts int
	nextID  int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{byUser: make(map[int64]*HealthRecord)}
}

func (m *mockRepo) Insert(_ context.Context, userID int64) (*HealthRecord, error) {
	m.inserts++
	if _, ok := m.byUser[userID]; ok {
		return nil, errs.ErrConflict
	}
	m.nextID++
	rec := &HealthRecord{ID: m.nextID, UserID: userID, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	m.byUser[userID] = rec
	cp := *rec
	return &cp, nil
}

func (m *mockRepo) GetByUserID(_ context.Context, userID int64) (*HealthRecord, error) {
	rec, ok := m.byUser[userID]
	if !ok {
		return nil, errs.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, rec *HealthRecord) error {
	if _, ok := m.byUser[rec.UserID]; !ok {
		return errs.ErrNotFound
	}
	cp := *rec
	m.byUser[rec.UserID] = &cp
	return nil
}

func TestEnsureIsIdempotent(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	ctx := context.Background()

	if err := svc.Ensure(ctx, 42); err != nil {
		t.Fatalf("first ensure: %v", err)
	}
	if err := svc.Ensure(ctx, 42); err != nil {
		t.Fatalf("second ensure must succeed: %v", err)
	}
	if len(repo.byUser) != 1 {
		t.Fatalf("expected exactly one record, got %d", len(repo.byUser))
	}
	if repo.inserts != 2 {
		t.Errorf("expected 2 insert attempts, got %d", repo.inserts)
	}
}

func TestEnsureCreatesBlankRecord(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	if err := svc.Ensure(context.Background(), 7); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	rec, err := svc.GetByUserID(context.Background(), 7)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.HealthCondition != nil || rec.BloodType != nil || rec.Allergic != nil || rec.Diseases != nil {
		t.Errorf("new record must be blank: %+v", rec)
	}
}

func TestUpdatePartialFields(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	ctx := context.Background()

	if err := svc.Ensure(ctx, 7); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	blood := "O+"
	if _, err := svc.Update(ctx, 7, &UpdateInput{BloodType: &blood}); err != nil {
		t.Fatalf("first update: %v", err)
	}
	allergic := "penicillin"
	rec, err := svc.Update(ctx, 7, &UpdateInput{Allergic: &allergic})
	if err != nil {
		t.Fatalf("second update: %v", err)
	}
	if rec.BloodType == nil || *rec.BloodType != "O+" {
		t.Error("blood type lost on partial update")
	}
	if rec.Allergic == nil || *rec.Allergic != "penicillin" {
		t.Error("allergic field not updated")
	}
}

func TestUpdateMissingRecord(t *testing.T) {
	svc := NewService(newMockRepo())

	_, err := svc.Update(context.Background(), 99, &UpdateInput{})
	if !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
