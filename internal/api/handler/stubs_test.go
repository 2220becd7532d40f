package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/ksalp/portal/internal/core/domain"
	"github.com/ksalp/portal/internal/core/ports"
)

type stubSessions struct {
	signInFn  func(ctx context.Context, in ports.SignInInput) (*domain.Login, error)
	signedOut []string
}

func (s *stubSessions) SignIn(ctx context.Context, in ports.SignInInput) (*domain.Login, error) {
	return s.signInFn(ctx, in)
}

func (s *stubSessions) Validate(context.Context, string, string) (*domain.User, error) {
	return nil, nil
}

func (s *stubSessions) SignOut(_ context.Context, token string) error {
	if token == "" {
		return domain.ErrLoginNotFound
	}
	s.signedOut = append(s.signedOut, token)
	return nil
}

type stubRegistration struct {
	beginFn   func(ctx context.Context, in ports.RegistrationInput) (*domain.MailCheck, error)
	confirmFn func(ctx context.Context, code string) (*domain.User, error)
}

func (s *stubRegistration) Begin(ctx context.Context, in ports.RegistrationInput) (*domain.MailCheck, error) {
	return s.beginFn(ctx, in)
}

func (s *stubRegistration) Confirm(ctx context.Context, code string) (*domain.User, error) {
	return s.confirmFn(ctx, code)
}

type stubAccounts struct {
	updateFn   func(ctx context.Context, id string, up domain.UserUpdate) (*domain.User, error)
	passwordFn func(ctx context.Context, id, oldPassword, newPassword string) error
}

func (s *stubAccounts) Create(context.Context, domain.NewUserParams) (*domain.User, error) {
	panic("not used")
}

func (s *stubAccounts) Load(context.Context, string) (*domain.User, error) {
	panic("not used")
}

func (s *stubAccounts) LoadByEmail(context.Context, string) (*domain.User, error) {
	panic("not used")
}

func (s *stubAccounts) Save(context.Context, *domain.User) error {
	panic("not used")
}

func (s *stubAccounts) Update(ctx context.Context, id string, up domain.UserUpdate) (*domain.User, error) {
	return s.updateFn(ctx, id, up)
}

func (s *stubAccounts) ChangePassword(ctx context.Context, id, oldPassword, newPassword string) error {
	return s.passwordFn(ctx, id, oldPassword, newPassword)
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	e.IPExtractor = echo.ExtractIPDirect()
	return e
}

func jsonContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// requireAPIError asserts err is an HTTP error carrying the given status and code.
func requireAPIError(t *testing.T, err error, status int, code string) {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T (%v)", err, err)
	}
	if he.Code != status {
		t.Fatalf("expected status %d, got %d", status, he.Code)
	}
	body, ok := he.Message.(ErrorResponse)
	if !ok || body.Error != code {
		t.Fatalf("expected error code %q, got %+v", code, he.Message)
	}
}

func requireSuccess(t *testing.T, rec *httptest.ResponseRecorder, message string) {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"success"`) || !strings.Contains(rec.Body.String(), message) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}
