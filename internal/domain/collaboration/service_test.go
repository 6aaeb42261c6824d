package collaboration

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/ehealth/ehealth/internal/domain/account"
	"github.com/ehealth/ehealth/internal/domain/errs"
	"github.com/ehealth/ehealth/internal/domain/organization"
	"github.com/ehealth/ehealth/pkg/pagination"
)

type fakeTx struct {
	calls int
}

func (f *fakeTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

type mockUserRepo struct {
	users  map[int64]*account.User
	nextID int64
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[int64]*account.User)}
}

func (m *mockUserRepo) Create(_ context.Context, u *account.User) error {
	for _, existing := range m.users {
		if existing.Email == u.Email || existing.ICNo == u.ICNo {
			return errs.ErrConflict
		}
	}
	m.nextID++
	u.ID = m.nextID
	u.CreatedAt = time.Now()
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id int64) (*account.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*account.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (m *mockUserRepo) Update(_ context.Context, u *account.User) error {
	if _, ok := m.users[u.ID]; !ok {
		return errs.ErrNotFound
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *mockUserRepo) UpdateStatus(_ context.Context, id int64, status string) error {
	u, ok := m.users[id]
	if !ok {
		return errs.ErrNotFound
	}
	u.Status = status
	return nil
}

func (m *mockUserRepo) UpdatePassword(_ context.Context, id int64, hash string) error {
	u, ok := m.users[id]
	if !ok {
		return errs.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (m *mockUserRepo) SearchUsersByICNo(_ context.Context, icno string) ([]*account.User, error) {
	var out []*account.User
	for _, u := range m.users {
		if u.Role == account.RoleUser && strings.Contains(u.ICNo, icno) {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockUserRepo) ListByOrganization(_ context.Context, orgID int64) ([]*account.User, error) {
	var out []*account.User
	for _, u := range m.users {
		if u.OrganizationID == orgID {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockUserRepo) ListByRoleAndOrganization(_ context.Context, orgID int64, role string) ([]*account.User, error) {
	var out []*account.User
	for _, u := range m.users {
		if u.OrganizationID == orgID && u.Role == role {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockUserRepo) ListPendingByOrganization(_ context.Context, orgID int64) ([]*account.User, error) {
	var out []*account.User
	for _, u := range m.users {
		if u.OrganizationID == orgID && u.Status == account.StatusPending {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockUserRepo) FirstAdmin(_ context.Context, orgID int64) (*account.User, error) {
	var first *account.User
	for _, u := range m.users {
		if u.OrganizationID == orgID && u.Role == account.RoleAdmin {
			if first == nil || u.ID < first.ID {
				first = u
			}
		}
	}
	if first == nil {
		return nil, errs.ErrNotFound
	}
	cp := *first
	return &cp, nil
}

func (m *mockUserRepo) TerminateByOrganization(_ context.Context, orgID int64) ([]int64, error) {
	var ids []int64
	for _, u := range m.users {
		if u.OrganizationID == orgID {
			u.Status = account.StatusTerminated
			ids = append(ids, u.ID)
		}
	}
	return ids, nil
}

type mockOrgRepo struct {
	orgs   map[int64]*organization.Organization
	nextID int64
}

func newMockOrgRepo() *mockOrgRepo {
	return &mockOrgRepo{orgs: make(map[int64]*organization.Organization)}
}

func (m *mockOrgRepo) Create(_ context.Context, o *organization.Organization) error {
	for _, existing := range m.orgs {
		if existing.Code == o.Code {
			return errs.ErrConflict
		}
	}
	m.nextID++
	o.ID = m.nextID
	cp := *o
	m.orgs[o.ID] = &cp
	return nil
}

func (m *mockOrgRepo) GetByID(_ context.Context, id int64) (*organization.Organization, error) {
	o, ok := m.orgs[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *mockOrgRepo) GetByCode(_ context.Context, code string) (*organization.Organization, error) {
	for _, o := range m.orgs {
		if o.Code == code {
			cp := *o
			return &cp, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (m *mockOrgRepo) Update(_ context.Context, o *organization.Organization) error {
	if _, ok := m.orgs[o.ID]; !ok {
		return errs.ErrNotFound
	}
	cp := *o
	m.orgs[o.ID] = &cp
	return nil
}

func (m *mockOrgRepo) List(_ context.Context, p pagination.Params) ([]*organization.Organization, int64, error) {
	all, _ := m.ListAll(context.Background())
	return all, int64(len(all)), nil
}

func (m *mockOrgRepo) ListAll(_ context.Context) ([]*organization.Organization, error) {
	var all []*organization.Organization
	for _, o := range m.orgs {
		if o.ID == organization.PlatformOrganizationID {
			continue
		}
		cp := *o
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all, nil
}

func (m *mockOrgRepo) AddLocation(_ context.Context, l *organization.Location) error { return nil }

func (m *mockOrgRepo) ListLocations(_ context.Context, orgID int64) ([]*organization.Location, error) {
	return nil, nil
}

type mockBlogs struct {
	terminated map[int64]bool
}

func newMockBlogs() *mockBlogs {
	return &mockBlogs{terminated: make(map[int64]bool)}
}

func (m *mockBlogs) TerminateByUserIDs(_ context.Context, userIDs []int64) error {
	for _, id := range userIDs {
		m.terminated[id] = true
	}
	return nil
}

type mockRecords struct {
	ensured map[int64]int
}

func newMockRecords() *mockRecords {
	return &mockRecords{ensured: make(map[int64]int)}
}

func (m *mockRecords) Ensure(_ context.Context, userID int64) error {
	m.ensured[userID]++
	return nil
}

type fixture struct {
	svc     *Service
	tx      *fakeTx
	users   *mockUserRepo
	orgs    *mockOrgRepo
	blogs   *mockBlogs
	records *mockRecords
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		tx:      &fakeTx{},
		users:   newMockUserRepo(),
		orgs:    newMockOrgRepo(),
		blogs:   newMockBlogs(),
		records: newMockRecords(),
	}
	f.svc = NewService(f.tx, f.users, f.orgs, f.blogs, f.records)
	// organizations.id = 1 is the reserved platform tenant
	if err := f.orgs.Create(context.Background(), &organization.Organization{
		Name: "No Organization", Code: "PLATFORM", Type: "platform",
	}); err != nil {
		t.Fatalf("seed platform organization: %v", err)
	}
	return f
}

func validRequest() *RequestInput {
	return &RequestInput{
		OrganizationName: "Klinik Sihat",
		OrganizationCode: "KS01",
		OrganizationType: "clinic",
		AdminName:        "Dr. Lim",
		AdminEmail:       "lim@klinik-sihat.test",
		AdminICNo:        "800505-10-1234",
		AdminContact:     "+60387654321",
		AdminPassword:    "sturdy password",
	}
}

func (f *fixture) fileRequest(t *testing.T) *Result {
	t.Helper()
	res, err := f.svc.CreateRequest(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	return res
}

func TestCreateRequestCreatesPendingAdmin(t *testing.T) {
	f := newFixture(t)

	res := f.fileRequest(t)
	if res.Admin.Status != account.StatusPending || res.Admin.Role != account.RoleAdmin {
		t.Errorf("admin must be a pending admin, got %s/%s", res.Admin.Role, res.Admin.Status)
	}
	if res.Admin.OrganizationID != res.Organization.ID {
		t.Errorf("admin belongs to org %d, want %d", res.Admin.OrganizationID, res.Organization.ID)
	}
	if res.Organization.ID == organization.PlatformOrganizationID {
		t.Error("new organization must not reuse the platform id")
	}
	if f.tx.calls != 1 {
		t.Errorf("expected one transaction, got %d", f.tx.calls)
	}
}

func TestCreateRequestDuplicateCode(t *testing.T) {
	f := newFixture(t)

	f.fileRequest(t)
	in := validRequest()
	in.AdminEmail = "other@klinik-sihat.test"
	in.AdminICNo = "800505-10-9999"
	_, err := f.svc.CreateRequest(context.Background(), in)
	if !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("expected conflict on duplicate code, got %v", err)
	}
}

func TestApproveActivatesAdminAndEnsuresHealthRecord(t *testing.T) {
	f := newFixture(t)
	res := f.fileRequest(t)

	approved, err := f.svc.Approve(context.Background(), res.Admin.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.ID != res.Admin.ID || approved.Status != account.StatusActive {
		t.Errorf("approve must return the activated user, got %d/%s", approved.ID, approved.Status)
	}
	u, _ := f.users.GetByID(context.Background(), res.Admin.ID)
	if u.Status != account.StatusActive {
		t.Errorf("expected active, got %s", u.Status)
	}
	if f.records.ensured[res.Admin.ID] != 1 {
		t.Errorf("health record not provisioned: %v", f.records.ensured)
	}
}

func TestApproveMissingRequest(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Approve(context.Background(), 999)
	if !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestApproveTwiceSecondIsNotFound(t *testing.T) {
	f := newFixture(t)
	res := f.fileRequest(t)

	if _, err := f.svc.Approve(context.Background(), res.Admin.ID); err != nil {
		t.Fatalf("first approve: %v", err)
	}
	_, err := f.svc.Approve(context.Background(), res.Admin.ID)
	if !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("second approve must be not found, got %v", err)
	}
	if f.records.ensured[res.Admin.ID] != 1 {
		t.Errorf("health record must be provisioned exactly once, got %d", f.records.ensured[res.Admin.ID])
	}
}

func TestApprovePendingStaffMember(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := f.fileRequest(t)
	if _, err := f.svc.Approve(ctx, res.Admin.ID); err != nil {
		t.Fatalf("approve admin: %v", err)
	}

	// any pending account is a decidable request, not only the founding admin
	nurse := &account.User{
		OrganizationID: res.Organization.ID,
		Name:           "Nurse", Email: "nurse@klinik-sihat.test", ICNo: "n1",
		Role: account.RoleNurse, Status: account.StatusPending,
	}
	if err := f.users.Create(ctx, nurse); err != nil {
		t.Fatalf("seed nurse: %v", err)
	}

	approved, err := f.svc.Approve(ctx, nurse.ID)
	if err != nil {
		t.Fatalf("approve pending nurse: %v", err)
	}
	if approved.Status != account.StatusActive {
		t.Errorf("expected active, got %s", approved.Status)
	}
	if f.records.ensured[nurse.ID] != 1 {
		t.Errorf("health record not provisioned for nurse: %v", f.records.ensured)
	}
}

func TestDeclineTerminatesAdmin(t *testing.T) {
	f := newFixture(t)
	res := f.fileRequest(t)

	declined, err := f.svc.Decline(context.Background(), res.Admin.ID)
	if err != nil {
		t.Fatalf("decline: %v", err)
	}
	if declined.Status != account.StatusTerminated {
		t.Errorf("decline must return the terminated user, got %s", declined.Status)
	}
	u, _ := f.users.GetByID(context.Background(), res.Admin.ID)
	if u.Status != account.StatusTerminated {
		t.Errorf("expected terminated, got %s", u.Status)
	}
	// a declined request can no longer be approved
	if _, err := f.svc.Approve(context.Background(), res.Admin.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("approve after decline must be not found, got %v", err)
	}
}

func TestStopSweepsWholeOrganization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := f.fileRequest(t)
	if _, err := f.svc.Approve(ctx, res.Admin.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}

	doctor := &account.User{
		OrganizationID: res.Organization.ID,
		Name:           "Doctor", Email: "d@klinik-sihat.test", ICNo: "d1",
		Role: account.RoleDoctor, Status: account.StatusActive,
	}
	if err := f.users.Create(ctx, doctor); err != nil {
		t.Fatalf("seed doctor: %v", err)
	}
	outsider := &account.User{
		OrganizationID: account.PlatformOrganizationID,
		Name:           "Outsider", Email: "o@example.com", ICNo: "o1",
		Role: account.RoleUser, Status: account.StatusActive,
	}
	if err := f.users.Create(ctx, outsider); err != nil {
		t.Fatalf("seed outsider: %v", err)
	}

	if err := f.svc.Stop(ctx, res.Organization.ID); err != nil {
		t.Fatalf("stop: %v", err)
	}

	for _, id := range []int64{res.Admin.ID, doctor.ID} {
		u, _ := f.users.GetByID(ctx, id)
		if u.Status != account.StatusTerminated {
			t.Errorf("member %d should be terminated, got %s", id, u.Status)
		}
		if !f.blogs.terminated[id] {
			t.Errorf("blogposts of member %d should be terminated", id)
		}
	}
	u, _ := f.users.GetByID(ctx, outsider.ID)
	if u.Status != account.StatusActive {
		t.Errorf("outsider must be untouched, got %s", u.Status)
	}
	if f.blogs.terminated[outsider.ID] {
		t.Error("outsider blogposts must be untouched")
	}
}

func TestStopPlatformOrganization(t *testing.T) {
	f := newFixture(t)

	err := f.svc.Stop(context.Background(), account.PlatformOrganizationID)
	if !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("platform organization must not be stoppable, got %v", err)
	}
}

func TestStopUnknownOrganization(t *testing.T) {
	f := newFixture(t)

	err := f.svc.Stop(context.Background(), 404)
	if !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRecollaborateRestoresFirstAdminOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := f.fileRequest(t)
	if _, err := f.svc.Approve(ctx, res.Admin.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}

	nurse := &account.User{
		OrganizationID: res.Organization.ID,
		Name:           "Nurse", Email: "n@klinik-sihat.test", ICNo: "n1",
		Role: account.RoleNurse, Status: account.StatusActive,
	}
	if err := f.users.Create(ctx, nurse); err != nil {
		t.Fatalf("seed nurse: %v", err)
	}
	if err := f.svc.Stop(ctx, res.Organization.ID); err != nil {
		t.Fatalf("stop: %v", err)
	}

	restored, err := f.svc.Recollaborate(ctx, res.Organization.ID)
	if err != nil {
		t.Fatalf("recollaborate: %v", err)
	}
	if restored.ID != res.Admin.ID {
		t.Errorf("recollaborate must return the first admin, got %d", restored.ID)
	}
	admin, _ := f.users.GetByID(ctx, res.Admin.ID)
	if admin.Status != account.StatusActive {
		t.Errorf("first admin should be active, got %s", admin.Status)
	}
	u, _ := f.users.GetByID(ctx, nurse.ID)
	if u.Status != account.StatusTerminated {
		t.Errorf("staff stay terminated until re-registered, got %s", u.Status)
	}
}

func TestRecollaborateWithoutAdmin(t *testing.T) {
	f := newFixture(t)
	org := &organization.Organization{Name: "Ghost", Code: "GH01", Type: "clinic"}
	if err := f.orgs.Create(context.Background(), org); err != nil {
		t.Fatalf("seed organization: %v", err)
	}

	_, err := f.svc.Recollaborate(context.Background(), org.ID)
	if !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListPendingOnlyOrganizationsWithPendingMembers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.fileRequest(t)

	second := validRequest()
	second.OrganizationName = "Farmasi Bakti"
	second.OrganizationCode = "FB01"
	second.AdminEmail = "admin@farmasi-bakti.test"
	second.AdminICNo = "750101-05-4321"
	res2, err := f.svc.CreateRequest(ctx, second)
	if err != nil {
		t.Fatalf("second request: %v", err)
	}
	if _, err := f.svc.Approve(ctx, res2.Admin.ID); err != nil {
		t.Fatalf("approve second: %v", err)
	}

	pending, err := f.svc.ListPending(ctx)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected one organization with pending members, got %d", len(pending))
	}
	if pending[0].Organization.ID != first.Organization.ID {
		t.Errorf("wrong organization listed: %d", pending[0].Organization.ID)
	}
	if len(pending[0].Pending) != 1 || pending[0].Pending[0].ID != first.Admin.ID {
		t.Errorf("unexpected pending members: %+v", pending[0].Pending)
	}
}

func TestCreateRequestValidation(t *testing.T) {
	f := newFixture(t)

	in := validRequest()
	in.OrganizationCode = ""
	if _, err := f.svc.CreateRequest(context.Background(), in); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	in = validRequest()
	in.AdminPassword = "short"
	if _, err := f.svc.CreateRequest(context.Background(), in); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
