package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ksalp/portal/internal/core/domain"
	"github.com/ksalp/portal/internal/core/ports"
)

const defaultRegistrationTTL = 15 * time.Minute

var defaultAllowedDomains = []string{"@sluz.ch", "@ksalp.ch"}

// RegistrationConfig tunes RegistrationService. Zero values select the defaults.
type RegistrationConfig struct {
	// AllowedDomains are e-mail suffixes, including the "@".
	AllowedDomains []string
	TTL            time.Duration
	// BaseURL prefixes the confirmation link.
	BaseURL string
	Delay   Delayer
	Now     func() time.Time
}

// RegistrationService stages new accounts behind an e-mailed single-use code.
type RegistrationService struct {
	checks   ports.MailCheckRepository
	accounts ports.AccountService
	ids      idSource
	hasher   *PasswordHasher
	mailer   ports.Mailer
	domains  []string
	ttl      time.Duration
	baseURL  string
	delay    Delayer
	now      func() time.Time
	log      zerolog.Logger
}

func NewRegistrationService(
	checks ports.MailCheckRepository,
	accounts ports.AccountService,
	ids idSource,
	hasher *PasswordHasher,
	mailer ports.Mailer,
	cfg RegistrationConfig,
	log zerolog.Logger,
) *RegistrationService {
	if len(cfg.AllowedDomains) == 0 {
		cfg.AllowedDomains = defaultAllowedDomains
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaultRegistrationTTL
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://ksalp.ch"
	}
	if cfg.Delay == nil {
		cfg.Delay = RandomDelay(100*time.Millisecond, 400*time.Millisecond)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &RegistrationService{
		checks:   checks,
		accounts: accounts,
		ids:      ids,
		hasher:   hasher,
		mailer:   mailer,
		domains:  cfg.AllowedDomains,
		ttl:      cfg.TTL,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		delay:    cfg.Delay,
		now:      cfg.Now,
		log:      log,
	}
}

// Begin validates the candidate account, stages it and mails the
// confirmation link. A failed delivery removes the staged record again.
func (s *RegistrationService) Begin(ctx context.Context, in ports.RegistrationInput) (*domain.MailCheck, error) {
	if err := validateRegistration(in); err != nil {
		return nil, err
	}
	if !s.allowedDomain(in.Email) {
		return nil, domain.ErrEmailDomain
	}

	_, err := s.accounts.LoadByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, domain.ErrEmailTaken
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, fmt.Errorf("check email: %w", err)
	}

	salt, err := NewSalt()
	if err != nil {
		return nil, err
	}

	id, err := s.ids.Generate(ctx, domain.MailCheckIDLength, domain.Base64URL)
	if err != nil {
		return nil, err
	}
	code, err := s.ids.Generate(ctx, domain.MailCheckCodeLength, domain.Base64URL)
	if err != nil {
		return nil, err
	}

	check := &domain.MailCheck{
		ID:         id,
		Code:       code,
		ValidUntil: s.now().UTC().Add(s.ttl),
		Account: domain.PendingAccount{
			Name:       strings.TrimSpace(in.Name),
			Email:      in.Email,
			Classes:    in.Classes,
			Grade:      in.Grade,
			Newsletter: in.Newsletter,
			Salt:       salt,
			Hash:       s.hasher.Hash(in.Password, salt),
		},
	}
	if err := s.checks.Insert(ctx, check); err != nil {
		return nil, fmt.Errorf("stage registration: %w", err)
	}

	msg, err := confirmationMessage(in.Email, confirmationData{
		Name:    check.Account.Name,
		Link:    s.baseURL + "/registrieren/mail/" + code,
		Minutes: int(s.ttl / time.Minute),
	})
	if err != nil {
		return nil, fmt.Errorf("render confirmation: %w", err)
	}

	if err := s.mailer.Send(ctx, msg); err != nil {
		if delErr := s.checks.Delete(ctx, check.ID); delErr != nil {
			s.log.Error().Err(delErr).Str("mail_check", check.ID).Msg("discard undelivered registration")
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrDelivery, err)
	}

	return check, nil
}

// Confirm redeems code and creates the staged account. A code is redeemed
// at most once; concurrent callers race on the store's conditional update.
func (s *RegistrationService) Confirm(ctx context.Context, code string) (*domain.User, error) {
	if err := s.delay(ctx); err != nil {
		return nil, err
	}
	if code == "" {
		return nil, domain.ErrCodeNotFound
	}

	check, err := s.checks.FindByCode(ctx, code)
	if errors.Is(err, domain.ErrCodeNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("load registration: %w", err)
	}

	now := s.now().UTC()
	if check.Consumed() {
		return nil, domain.ErrCodeUsed
	}
	if check.Expired(now) {
		return nil, domain.ErrCodeExpired
	}

	ok, err := s.checks.Consume(ctx, code, now)
	if err != nil {
		return nil, fmt.Errorf("consume registration: %w", err)
	}
	if !ok {
		return nil, domain.ErrCodeUsed
	}

	acc := check.Account
	user, err := s.accounts.Create(ctx, domain.NewUserParams{
		Name:       acc.Name,
		Email:      acc.Email,
		Salt:       acc.Salt,
		Hash:       acc.Hash,
		Newsletter: acc.Newsletter,
		Classes:    acc.Classes,
		Grade:      acc.Grade,
		Theme:      domain.DefaultTheme,
		IFrame:     true,
	})
	if err != nil {
		if !errors.Is(err, domain.ErrEmailTaken) {
			if relErr := s.checks.Release(ctx, code); relErr != nil {
				s.log.Error().Err(relErr).Str("mail_check", check.ID).Msg("release registration code")
			}
		}
		return nil, err
	}
	return user, nil
}

func (s *RegistrationService) allowedDomain(email string) bool {
	for _, d := range s.domains {
		if strings.HasSuffix(email, d) {
			return true
		}
	}
	return false
}

func validateRegistration(in ports.RegistrationInput) error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return domain.NewValidationError("name", "is required")
	case in.Email == "":
		return domain.NewValidationError("email", "is required")
	case in.Password == "":
		return domain.NewValidationError("password", "is required")
	case in.Grade == "":
		return domain.NewValidationError("grade", "is required")
	}
	if err := domain.ValidateGrade(in.Grade); err != nil {
		return err
	}
	return domain.ValidateClasses(in.Classes)
}
