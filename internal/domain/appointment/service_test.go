package appointment

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/ehealth/ehealth/internal/domain/errs"
	"github.com/ehealth/ehealth/pkg/pagination"
)

type fakeTx struct{}

func (fakeTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockRepo struct {
	appts         map[int64]*Appointment
	prescriptions map[int64][]*Prescription
	nextID        int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		appts:         make(map[int64]*Appointment),
		prescriptions: make(map[int64][]*Prescription),
	}
}

func (m *mockRepo) Create(_ context.Context, a *Appointment) error {
	m.nextID++
	a.ID = m.nextID
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	cp := *a
	m.appts[a.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id int64) (*Appointment, error) {
	a, ok := m.appts[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.appts[id]; !ok {
		return errs.ErrNotFound
	}
	delete(m.appts, id)
	return nil
}

func (m *mockRepo) UpdateStatus(_ context.Context, id int64, status string) error {
	a, ok := m.appts[id]
	if !ok {
		return errs.ErrNotFound
	}
	a.Status = status
	return nil
}

func (m *mockRepo) ListForUser(_ context.Context, userID int64) ([]*Appointment, error) {
	var out []*Appointment
	for _, a := range m.appts {
		if a.UserID == userID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].AppointmentDatetime.After(out[j].AppointmentDatetime)
	})
	return out, nil
}

func (m *mockRepo) ListForDoctor(_ context.Context, doctorID int64) ([]*Appointment, error) {
	var out []*Appointment
	for _, a := range m.appts {
		if a.DoctorID == doctorID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].AppointmentDatetime.After(out[j].AppointmentDatetime)
	})
	return out, nil
}

func (m *mockRepo) ListByOrganization(_ context.Context, orgID int64, p pagination.Params) ([]*Appointment, int64, error) {
	var out []*Appointment
	for _, a := range m.appts {
		if a.OrganizationID == orgID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, int64(len(out)), nil
}

func (m *mockRepo) AddPrescription(_ context.Context, p *Prescription) error {
	m.nextID++
	p.ID = m.nextID
	cp := *p
	m.prescriptions[p.AppointmentID] = append(m.prescriptions[p.AppointmentID], &cp)
	return nil
}

func (m *mockRepo) ListPrescriptions(_ context.Context, appointmentID int64) ([]*Prescription, error) {
	return m.prescriptions[appointmentID], nil
}

func (m *mockRepo) PatientsByDoctor(_ context.Context, doctorID int64) ([]*Patient, error) {
	seen := make(map[int64]bool)
	var out []*Patient
	for _, a := range m.appts {
		if a.DoctorID == doctorID && !seen[a.UserID] {
			seen[a.UserID] = true
			out = append(out, &Patient{ID: a.UserID})
		}
	}
	return out, nil
}

func newTestService() (*Service, *mockRepo) {
	repo := newMockRepo()
	svc := NewService(fakeTx{}, repo)
	return svc, repo
}

func validBooking() *BookInput {
	return &BookInput{
		DoctorID:            3,
		OrganizationID:      7,
		AppointmentDatetime: time.Date(2026, 9, 15, 10, 0, 0, 0, time.UTC),
		Type:                "consultation",
	}
}

func TestBookStartsPending(t *testing.T) {
	svc, _ := newTestService()

	a, err := svc.Book(context.Background(), 5, validBooking())
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if a.Status != StatusPending {
		t.Errorf("expected pending, got %s", a.Status)
	}
	if a.UserID != 5 {
		t.Errorf("expected user 5, got %d", a.UserID)
	}
}

func TestBookValidation(t *testing.T) {
	svc, _ := newTestService()

	in := validBooking()
	in.DoctorID = 0
	if _, err := svc.Book(context.Background(), 5, in); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAdminBookConfirmedInOwnOrganization(t *testing.T) {
	svc, _ := newTestService()

	in := validBooking()
	in.OrganizationID = 99 // admin's own org must win
	a, err := svc.AdminBook(context.Background(), 7, 5, in)
	if err != nil {
		t.Fatalf("admin book: %v", err)
	}
	if a.Status != StatusConfirmed {
		t.Errorf("expected confirmed, got %s", a.Status)
	}
	if a.OrganizationID != 7 {
		t.Errorf("expected org 7, got %d", a.OrganizationID)
	}
}

func TestGetAccessControl(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	a, _ := svc.Book(ctx, 5, validBooking())

	if _, err := svc.Get(ctx, a.ID, 5, 1, "user"); err != nil {
		t.Errorf("patient must see own appointment: %v", err)
	}
	if _, err := svc.Get(ctx, a.ID, 3, 7, "doctor"); err != nil {
		t.Errorf("assigned doctor must see the appointment: %v", err)
	}
	if _, err := svc.Get(ctx, a.ID, 77, 7, "nurse"); err != nil {
		t.Errorf("organization staff must see the appointment: %v", err)
	}
	if _, err := svc.Get(ctx, a.ID, 88, 2, "user"); !errors.Is(err, errs.ErrUnauthorized) {
		t.Errorf("stranger must not see the appointment, got %v", err)
	}
}

func TestListForActorNewestFirst(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	early := validBooking()
	early.AppointmentDatetime = time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	late := validBooking()
	late.AppointmentDatetime = time.Date(2026, 9, 20, 9, 0, 0, 0, time.UTC)

	svc.Book(ctx, 5, early)
	svc.Book(ctx, 5, late)

	appts, err := svc.ListForActor(ctx, 5, "user")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(appts) != 2 || !appts[0].AppointmentDatetime.After(appts[1].AppointmentDatetime) {
		t.Errorf("expected newest first, got %+v", appts)
	}

	// the doctor sees the same visits through their own schedule
	schedule, err := svc.ListForActor(ctx, 3, "doctor")
	if err != nil {
		t.Fatalf("doctor list: %v", err)
	}
	if len(schedule) != 2 {
		t.Errorf("expected 2 scheduled visits, got %d", len(schedule))
	}
}

func TestCancelOnlyOwnerAndPending(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	a, _ := svc.Book(ctx, 5, validBooking())
	if err := svc.Cancel(ctx, a.ID, 6); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}

	repo.appts[a.ID].Status = StatusConfirmed
	if err := svc.Cancel(ctx, a.ID, 5); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("confirmed appointment must not be cancellable, got %v", err)
	}

	repo.appts[a.ID].Status = StatusPending
	if err := svc.Cancel(ctx, a.ID, 5); err != nil {
		t.Fatalf("cancel: %v", err)
	}
}

func TestCompleteFilesPrescriptions(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	fixed := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	a, _ := svc.Book(ctx, 5, validBooking())
	detail, err := svc.Complete(ctx, a.ID, 3, []*PrescriptionInput{
		{MedicationID: 11, Dosage: "500mg", Frequency: "3x daily", DurationDays: 7},
		{MedicationID: 12, Dosage: "10ml", Frequency: "at night", DurationDays: 14},
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if detail.Status != StatusCompleted {
		t.Errorf("expected completed, got %s", detail.Status)
	}
	if len(detail.Prescriptions) != 2 {
		t.Fatalf("expected 2 prescriptions, got %d", len(detail.Prescriptions))
	}
	first := detail.Prescriptions[0]
	if !first.StartDate.Equal(fixed) {
		t.Errorf("course must start at completion time, got %v", first.StartDate)
	}
	if !first.EndDate.Equal(fixed.AddDate(0, 0, 7)) {
		t.Errorf("course must end duration days out, got %v", first.EndDate)
	}
	if got := repo.appts[a.ID].Status; got != StatusCompleted {
		t.Errorf("stored status not updated: %s", got)
	}
}

func TestCompleteOnlyAssignedDoctor(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	a, _ := svc.Book(ctx, 5, validBooking())
	_, err := svc.Complete(ctx, a.ID, 99, nil)
	if !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestCompleteTwice(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	a, _ := svc.Book(ctx, 5, validBooking())
	if _, err := svc.Complete(ctx, a.ID, 3, nil); err != nil {
		t.Fatalf("first complete: %v", err)
	}
	_, err := svc.Complete(ctx, a.ID, 3, nil)
	if !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("second complete must conflict, got %v", err)
	}
}

func TestUpdateStatusRejectsCompleted(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	a, _ := svc.Book(ctx, 5, validBooking())
	if err := svc.UpdateStatus(ctx, a.ID, StatusCompleted); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("completed must go through Complete, got %v", err)
	}
	if err := svc.UpdateStatus(ctx, a.ID, StatusConfirmed); err != nil {
		t.Fatalf("confirm: %v", err)
	}
}
