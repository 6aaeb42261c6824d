package account

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ehealth/ehealth/internal/platform/auth"
)

func newTestHandler(t *testing.T) (*Handler, *mockUserRepo) {
	t.Helper()
	repo := newMockUserRepo()
	tokens := auth.NewTokenIssuer([]byte("test-secret-test-secret-test-secret!"), "ehealth-test", time.Hour)
	svc := NewService(repo, &mockRecordCreator{}, tokens)
	revocations, err := auth.NewRevocationStore(context.Background(), "")
	if err != nil {
		t.Fatalf("revocation store: %v", err)
	}
	return NewHandler(svc, revocations), repo
}

func postJSON(h echo.HandlerFunc, body string) (*httptest.ResponseRecorder, error) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	err := h(e.NewContext(req, rec))
	return rec, err
}

func TestLoginHandlerNoAccount(t *testing.T) {
	h, _ := newTestHandler(t)

	_, err := postJSON(h.Login, `{"email":"nobody@example.com","password":"x"}`)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected HTTP error, got %v", err)
	}
	if httpErr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", httpErr.Code)
	}
	if httpErr.Message != "No account found." {
		t.Errorf("unexpected message: %v", httpErr.Message)
	}
}

func TestLoginHandlerPendingAccount(t *testing.T) {
	h, repo := newTestHandler(t)
	u := &User{
		OrganizationID: 2, Name: "Dr. Lim", Email: "lim@example.com", ICNo: "ic",
		Role: RoleAdmin, Status: StatusPending,
	}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, err := postJSON(h.Login, `{"email":"lim@example.com","password":"x"}`)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected HTTP error, got %v", err)
	}
	if httpErr.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", httpErr.Code)
	}
	if httpErr.Message != "This account is currently under review, please wait for 1 to 3 working days." {
		t.Errorf("unexpected message: %v", httpErr.Message)
	}
}

func TestLoginHandlerSuccess(t *testing.T) {
	h, repo := newTestHandler(t)
	hash, _ := auth.HashPassword("correct horse")
	u := &User{
		OrganizationID: PlatformOrganizationID, Name: "Aina", Email: "aina@example.com", ICNo: "ic",
		PasswordHash: hash, Role: RoleUser, Status: StatusActive,
	}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("seed: %v", err)
	}

	rec, err := postJSON(h.Login, `{"email":"aina@example.com","password":"correct horse"}`)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		User        *User  `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.AccessToken == "" || body.TokenType != "Bearer" {
		t.Errorf("unexpected token fields: %+v", body)
	}
	if body.User == nil || body.User.Email != "aina@example.com" {
		t.Errorf("unexpected user: %+v", body.User)
	}
	if strings.Contains(rec.Body.String(), "password_hash") {
		t.Error("password hash must never be serialized")
	}
}

func TestRegisterHandlerValidation(t *testing.T) {
	h, _ := newTestHandler(t)

	_, err := postJSON(h.RegisterUser, `{"name":"","email":"bad","icno":"x","password":"short"}`)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected HTTP error, got %v", err)
	}
	if httpErr.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", httpErr.Code)
	}
}

func TestRegisterHandlerCreated(t *testing.T) {
	h, _ := newTestHandler(t)

	rec, err := postJSON(h.RegisterUser,
		`{"name":"Aina","email":"aina@example.com","icno":"990101-14-5678","contact":"+60123456789","password":"correct horse"}`)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "User registered successfully") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}
