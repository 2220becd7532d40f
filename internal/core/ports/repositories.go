package ports

import (
	"context"
	"time"

	"github.com/ksalp/portal/internal/core/domain"
)

// IDRegistry records every identifier ever issued.
type IDRegistry interface {
	// Reserve stores id if it is unused and reports whether it was stored.
	// It must be an atomic insert-if-absent.
	Reserve(ctx context.Context, id string, issuedAt time.Time) (bool, error)
}

// UserRepository persists accounts. Lookups return domain.ErrUserNotFound.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// Insert returns domain.ErrEmailTaken when the e-mail is already stored.
	Insert(ctx context.Context, user *domain.User) error
	// Save inserts or updates by id.
	Save(ctx context.Context, user *domain.User) error
}

// LoginRepository persists sessions. Lookups return domain.ErrLoginNotFound.
type LoginRepository interface {
	FindByToken(ctx context.Context, token string) (*domain.Login, error)
	Save(ctx context.Context, login *domain.Login) error
}

// MailCheckRepository persists pending registrations. Lookups return
// domain.ErrCodeNotFound.
type MailCheckRepository interface {
	Insert(ctx context.Context, check *domain.MailCheck) error
	FindByCode(ctx context.Context, code string) (*domain.MailCheck, error)
	// Consume marks an unconsumed, unexpired code as used at the given time.
	// It reports false when another caller got there first or the code expired.
	Consume(ctx context.Context, code string, at time.Time) (bool, error)
	// Release undoes Consume.
	Release(ctx context.Context, code string) error
	Delete(ctx context.Context, id string) error
}

// IPScoreRepository persists per-address abuse scores.
type IPScoreRepository interface {
	// GetOrCreate returns the record for ip, creating it with initial score
	// and domain.DefaultIPNotes on first sight.
	GetOrCreate(ctx context.Context, ip string, initial int) (*domain.IPScore, error)
	UpdateScore(ctx context.Context, ip string, score int) error
}
