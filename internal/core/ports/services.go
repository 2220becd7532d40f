package ports

import (
	"context"
	"net/http"

	"github.com/ksalp/portal/internal/core/domain"
)

type SignInInput struct {
	Email       string
	Password    string
	Fingerprint string
	ClientIP    string
}

type RegistrationInput struct {
	Name       string
	Email      string
	Password   string
	Classes    []string
	Grade      string
	Newsletter bool
}

type AccountService interface {
	Create(ctx context.Context, params domain.NewUserParams) (*domain.User, error)
	Load(ctx context.Context, id string) (*domain.User, error)
	LoadByEmail(ctx context.Context, email string) (*domain.User, error)
	Save(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, id string, update domain.UserUpdate) (*domain.User, error)
	ChangePassword(ctx context.Context, id, oldPassword, newPassword string) error
}

type SessionService interface {
	SignIn(ctx context.Context, in SignInInput) (*domain.Login, error)
	// Validate resolves the caller. A nil user without error is an anonymous caller.
	Validate(ctx context.Context, token, fingerprint string) (*domain.User, error)
	SignOut(ctx context.Context, token string) error
}

type RegistrationService interface {
	Begin(ctx context.Context, in RegistrationInput) (*domain.MailCheck, error)
	Confirm(ctx context.Context, code string) (*domain.User, error)
}

// GateVerdict is the outcome of admitting one request.
type GateVerdict struct {
	Score    int
	Banned   bool
	TooLarge bool
}

// AccessEntry is one access-log record. IP is hashed before it is written.
type AccessEntry struct {
	IP            string
	Score         int
	Authenticated bool
	Method        string
	Path          string
	UserAgent     string
	Host          string
	Headers       http.Header
	ContentLength int64
	Status        int
	RequestID     string
}

type RequestGate interface {
	Admit(ctx context.Context, ip string, contentLength int64) (GateVerdict, error)
	Record(entry AccessEntry)
}
