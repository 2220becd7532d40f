package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ksalp/portal/internal/core/domain"
	"github.com/ksalp/portal/internal/core/ports"
)

const defaultSessionTTL = 100 * 24 * time.Hour

// SessionConfig tunes SessionService. Zero values select the defaults.
type SessionConfig struct {
	TTL     time.Duration
	Delay   Delayer
	Limiter ports.AttemptLimiter
	Now     func() time.Time
}

// SessionService signs callers in and out and resolves session tokens.
type SessionService struct {
	users   ports.UserRepository
	logins  ports.LoginRepository
	ids     idSource
	hasher  *PasswordHasher
	limiter ports.AttemptLimiter
	ttl     time.Duration
	delay   Delayer
	now     func() time.Time
	log     zerolog.Logger

	// Checked against when the e-mail is unknown so both failures cost
	// one key derivation.
	dummySalt []byte
	dummyHash []byte
}

func NewSessionService(
	users ports.UserRepository,
	logins ports.LoginRepository,
	ids idSource,
	hasher *PasswordHasher,
	cfg SessionConfig,
	log zerolog.Logger,
) *SessionService {
	if cfg.TTL <= 0 {
		cfg.TTL = defaultSessionTTL
	}
	if cfg.Delay == nil {
		cfg.Delay = RandomDelay(100*time.Millisecond, 400*time.Millisecond)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	dummySalt := make([]byte, SaltSize)
	return &SessionService{
		users:     users,
		logins:    logins,
		ids:       ids,
		hasher:    hasher,
		limiter:   cfg.Limiter,
		ttl:       cfg.TTL,
		delay:     cfg.Delay,
		now:       cfg.Now,
		log:       log,
		dummySalt: dummySalt,
		dummyHash: hasher.Hash("", dummySalt),
	}
}

// SignIn checks the credentials and opens a session bound to the caller's
// fingerprint. Unknown e-mail and wrong password fail the same way.
func (s *SessionService) SignIn(ctx context.Context, in ports.SignInInput) (*domain.Login, error) {
	if err := s.delay(ctx); err != nil {
		return nil, err
	}
	if in.Email == "" || in.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	key := attemptKey(in.Email, in.ClientIP)
	if err := s.allow(ctx, key); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, in.Email)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		s.hasher.Check(in.Password, s.dummySalt, s.dummyHash)
		s.fail(ctx, key)
		return nil, domain.ErrInvalidCredentials
	case err != nil:
		return nil, fmt.Errorf("load account: %w", err)
	}

	if !s.hasher.Check(in.Password, user.Salt, user.Hash) {
		s.fail(ctx, key)
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.ids.Generate(ctx, domain.SessionTokenLength, domain.Base64URL)
	if err != nil {
		return nil, err
	}

	login := &domain.Login{
		Token:       token,
		AccountID:   user.ID,
		ValidUntil:  s.now().UTC().Add(s.ttl),
		Fingerprint: in.Fingerprint,
	}
	if err := s.logins.Save(ctx, login); err != nil {
		return nil, fmt.Errorf("save login: %w", err)
	}

	s.reset(ctx, key)
	return login, nil
}

// Validate resolves token to its account. Unknown, expired and
// fingerprint-mismatched sessions resolve to an anonymous caller.
func (s *SessionService) Validate(ctx context.Context, token, fingerprint string) (*domain.User, error) {
	if token == "" {
		return nil, nil
	}

	login, err := s.logins.FindByToken(ctx, token)
	if errors.Is(err, domain.ErrLoginNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load login: %w", err)
	}

	if !login.ActiveFor(s.now(), fingerprint) {
		return nil, nil
	}

	user, err := s.users.FindByID(ctx, login.AccountID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}
	return user, nil
}

// SignOut expires the session now. The record stays so the token keeps
// resolving as expired.
func (s *SessionService) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return domain.ErrLoginNotFound
	}

	login, err := s.logins.FindByToken(ctx, token)
	if err != nil {
		return err
	}

	login.Revoke(s.now().UTC())
	if err := s.logins.Save(ctx, login); err != nil {
		return fmt.Errorf("save login: %w", err)
	}
	return nil
}

func (s *SessionService) allow(ctx context.Context, key string) error {
	if s.limiter == nil {
		return nil
	}
	err := s.limiter.Allow(ctx, key)
	if errors.Is(err, domain.ErrTooManyAttempts) {
		return err
	}
	if err != nil {
		s.log.Warn().Err(err).Msg("sign-in limiter unavailable")
	}
	return nil
}

func (s *SessionService) fail(ctx context.Context, key string) {
	if s.limiter == nil {
		return
	}
	if err := s.limiter.Fail(ctx, key); err != nil {
		s.log.Warn().Err(err).Msg("record failed sign-in")
	}
}

func (s *SessionService) reset(ctx context.Context, key string) {
	if s.limiter == nil {
		return
	}
	if err := s.limiter.Reset(ctx, key); err != nil {
		s.log.Warn().Err(err).Msg("reset sign-in attempts")
	}
}

func attemptKey(email, ip string) string {
	return email + "|" + ip
}
