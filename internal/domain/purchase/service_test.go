package purchase

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/ehealth/ehealth/internal/domain/errs"
	"github.com/ehealth/ehealth/pkg/pagination"
)

type mockRepo struct {
	recs   map[int64]*Record
	nextID int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{recs: make(map[int64]*Record)}
}

func (m *mockRepo) Create(_ context.Context, rec *Record) error {
	m.nextID++
	rec.ID = m.nextID
	rec.CreatedAt = time.Now()
	rec.UpdatedAt = rec.CreatedAt
	cp := *rec
	m.recs[rec.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id int64) (*Record, error) {
	rec, ok := m.recs[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (m *mockRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.recs[id]; !ok {
		return errs.ErrNotFound
	}
	delete(m.recs, id)
	return nil
}

func (m *mockRepo) ListByUser(_ context.Context, userID int64) ([]*Record, error) {
	var out []*Record
	for _, rec := range m.recs {
		if rec.UserID == userID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DatePurchase.After(out[j].DatePurchase) })
	return out, nil
}

func (m *mockRepo) ListByOrganization(_ context.Context, orgID int64, p pagination.Params) ([]*Record, int64, error) {
	var out []*Record
	for _, rec := range m.recs {
		cp := *rec
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}

func (m *mockRepo) Statistics(_ context.Context, orgID int64) (*Statistics, error) {
	return &Statistics{}, nil
}

func TestCreateDefaultsDateToNow(t *testing.T) {
	svc := NewService(newMockRepo())
	fixed := time.Date(2026, 8, 29, 15, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	rec, err := svc.Create(context.Background(), 9, &Input{
		UserID: 5, MedicationID: 11, Quantity: 2, TotalPayment: 11.00,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !rec.DatePurchase.Equal(fixed) {
		t.Errorf("expected purchase date %v, got %v", fixed, rec.DatePurchase)
	}
	if rec.PharmacistID != 9 {
		t.Errorf("expected pharmacist 9, got %d", rec.PharmacistID)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(newMockRepo())

	cases := []*Input{
		{MedicationID: 11, Quantity: 1},
		{UserID: 5, Quantity: 1},
		{UserID: 5, MedicationID: 11, Quantity: 0},
		{UserID: 5, MedicationID: 11, Quantity: 1, TotalPayment: -1},
	}
	for i, in := range cases {
		if _, err := svc.Create(context.Background(), 9, in); !errors.Is(err, errs.ErrValidation) {
			t.Errorf("case %d: expected validation error, got %v", i, err)
		}
	}
}

func TestDeleteOnlyOwnRecords(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()

	rec, err := svc.Create(ctx, 9, &Input{UserID: 5, MedicationID: 11, Quantity: 1, TotalPayment: 5})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Delete(ctx, rec.ID, 10); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if err := svc.Delete(ctx, rec.ID, 9); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if err := svc.Delete(ctx, rec.ID, 9); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestListForUserNewestFirst(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()

	early := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	svc.Create(ctx, 9, &Input{UserID: 5, MedicationID: 11, Quantity: 1, TotalPayment: 5, DatePurchase: &early})
	svc.Create(ctx, 9, &Input{UserID: 5, MedicationID: 12, Quantity: 1, TotalPayment: 8, DatePurchase: &late})

	recs, err := svc.ListForUser(ctx, 5)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 2 || !recs[0].DatePurchase.After(recs[1].DatePurchase) {
		t.Errorf("expected newest first, got %+v", recs)
	}
}
