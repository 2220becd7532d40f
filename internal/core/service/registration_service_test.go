package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ksalp/portal/internal/core/domain"
	"github.com/ksalp/portal/internal/core/ports"
)

type registrationFixture struct {
	svc    *RegistrationService
	users  *stubUserRepo
	checks *stubMailCheckRepo
	mailer *stubMailer
	clock  *fixedClock
}

func newRegistrationFixture(t *testing.T) *registrationFixture {
	t.Helper()
	users := newStubUserRepo()
	checks := newStubMailCheckRepo()
	mailer := &stubMailer{}
	ids := NewIDGenerator(newStubRegistry())
	hasher := newTestHasher()
	clock := &fixedClock{now: time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)}

	svc := NewRegistrationService(checks, NewAccountService(users, ids, hasher), ids, hasher, mailer, RegistrationConfig{
		BaseURL: "https://ksalp.ch/",
		Delay:   NoDelay,
		Now:     clock.Now,
	}, zerolog.Nop())

	return &registrationFixture{svc: svc, users: users, checks: checks, mailer: mailer, clock: clock}
}

func annaInput() ports.RegistrationInput {
	return ports.RegistrationInput{
		Name:       "Anna",
		Email:      "anna@sluz.ch",
		Password:   "Secret123!",
		Classes:    domain.SplitClasses("4a"),
		Grade:      "4",
		Newsletter: true,
	}
}

func TestRegistrationService_Begin(t *testing.T) {
	f := newRegistrationFixture(t)

	check, err := f.svc.Begin(context.Background(), annaInput())
	if err != nil {
		t.Fatalf("Begin returned error: %v", err)
	}
	if len(check.ID) != domain.MailCheckIDLength || len(check.Code) != domain.MailCheckCodeLength {
		t.Fatalf("unexpected identifier lengths: id=%q code=%q", check.ID, check.Code)
	}
	if want := f.clock.Now().Add(15 * time.Minute); !check.ValidUntil.Equal(want) {
		t.Fatalf("expected expiry %v, got %v", want, check.ValidUntil)
	}
	if f.checks.count() != 1 {
		t.Fatalf("expected one staged registration, got %d", f.checks.count())
	}
	if f.users.count() != 0 {
		t.Fatalf("no account may exist before confirmation")
	}

	if len(f.mailer.sent) != 1 {
		t.Fatalf("expected one mail, got %d", len(f.mailer.sent))
	}
	msg := f.mailer.sent[0]
	link := "https://ksalp.ch/registrieren/mail/" + check.Code
	if msg.To != "anna@sluz.ch" || !strings.Contains(msg.Plain, link) || !strings.Contains(msg.HTML, link) {
		t.Fatalf("mail does not carry the confirmation link: %+v", msg)
	}
	if !strings.Contains(msg.Plain, "Guten Tag, Anna") {
		t.Fatalf("mail not addressed to the registrant: %q", msg.Plain)
	}
	if strings.Contains(msg.Plain, "Secret123!") {
		t.Fatalf("mail must never contain the password")
	}
}

func TestRegistrationService_Begin_Validation(t *testing.T) {
	cases := map[string]func(in *ports.RegistrationInput){
		"name":     func(in *ports.RegistrationInput) { in.Name = " " },
		"email":    func(in *ports.RegistrationInput) { in.Email = "" },
		"password": func(in *ports.RegistrationInput) { in.Password = "" },
		"grade":    func(in *ports.RegistrationInput) { in.Grade = "12" },
		"class_":   func(in *ports.RegistrationInput) { in.Classes = nil },
	}
	for field, mutate := range cases {
		t.Run(field, func(t *testing.T) {
			f := newRegistrationFixture(t)
			in := annaInput()
			mutate(&in)
			_, err := f.svc.Begin(context.Background(), in)
			var ve *domain.ValidationError
			if !errors.As(err, &ve) || ve.Field != field {
				t.Fatalf("expected ValidationError on %s, got %v", field, err)
			}
		})
	}
}

func TestRegistrationService_Begin_EmailDomain(t *testing.T) {
	f := newRegistrationFixture(t)
	in := annaInput()
	in.Email = "anna@gmail.com"
	if _, err := f.svc.Begin(context.Background(), in); !errors.Is(err, domain.ErrEmailDomain) {
		t.Fatalf("expected ErrEmailDomain, got %v", err)
	}

	in.Email = "anna@ksalp.ch"
	if _, err := f.svc.Begin(context.Background(), in); err != nil {
		t.Fatalf("ksalp.ch must be accepted: %v", err)
	}
}

func TestRegistrationService_Begin_EmailTaken(t *testing.T) {
	f := newRegistrationFixture(t)
	code := beginAndCode(t, f)
	if _, err := f.svc.Confirm(context.Background(), code); err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	if _, err := f.svc.Begin(context.Background(), annaInput()); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestRegistrationService_Begin_DeliveryFailure(t *testing.T) {
	f := newRegistrationFixture(t)
	f.mailer.err = errors.New("smtp down")

	_, err := f.svc.Begin(context.Background(), annaInput())
	if !errors.Is(err, domain.ErrDelivery) {
		t.Fatalf("expected ErrDelivery, got %v", err)
	}
	if f.checks.count() != 0 {
		t.Fatalf("undelivered registration must be discarded")
	}
}

func beginAndCode(t *testing.T, f *registrationFixture) string {
	t.Helper()
	check, err := f.svc.Begin(context.Background(), annaInput())
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	return check.Code
}

func TestRegistrationService_Confirm(t *testing.T) {
	f := newRegistrationFixture(t)
	code := beginAndCode(t, f)

	user, err := f.svc.Confirm(context.Background(), code)
	if err != nil {
		t.Fatalf("Confirm returned error: %v", err)
	}
	if user.Email != "anna@sluz.ch" || user.Theme != domain.DefaultTheme || !user.IFrame {
		t.Fatalf("unexpected account: %+v", user)
	}
	if !user.Newsletter || user.Grade != "4" || len(user.Classes) != 1 || user.Classes[0] != "4a" {
		t.Fatalf("staged fields not carried over: %+v", user)
	}
	if !newTestHasher().Check("Secret123!", user.Salt, user.Hash) {
		t.Fatalf("staged password does not verify")
	}

	if _, err := f.svc.Confirm(context.Background(), code); !errors.Is(err, domain.ErrCodeUsed) {
		t.Fatalf("expected ErrCodeUsed on replay, got %v", err)
	}
	if f.users.count() != 1 {
		t.Fatalf("expected exactly one account, got %d", f.users.count())
	}
}

func TestRegistrationService_Confirm_UnknownCode(t *testing.T) {
	f := newRegistrationFixture(t)
	for _, code := range []string{"", "nope"} {
		if _, err := f.svc.Confirm(context.Background(), code); !errors.Is(err, domain.ErrCodeNotFound) {
			t.Fatalf("expected ErrCodeNotFound for %q, got %v", code, err)
		}
	}
}

func TestRegistrationService_Confirm_Expired(t *testing.T) {
	f := newRegistrationFixture(t)
	code := beginAndCode(t, f)

	f.clock.Advance(20 * time.Minute)
	if _, err := f.svc.Confirm(context.Background(), code); !errors.Is(err, domain.ErrCodeExpired) {
		t.Fatalf("expected ErrCodeExpired, got %v", err)
	}
	if f.users.count() != 0 {
		t.Fatalf("expired code must not create an account")
	}
}

func TestRegistrationService_Confirm_ExactlyAtExpiry(t *testing.T) {
	f := newRegistrationFixture(t)
	code := beginAndCode(t, f)

	f.clock.Advance(15 * time.Minute)
	if _, err := f.svc.Confirm(context.Background(), code); !errors.Is(err, domain.ErrCodeExpired) {
		t.Fatalf("expected ErrCodeExpired at now == valid, got %v", err)
	}
}

func TestRegistrationService_Confirm_Concurrent(t *testing.T) {
	f := newRegistrationFixture(t)
	code := beginAndCode(t, f)

	const n = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Confirm(context.Background(), code)
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
				return
			}
			if !errors.Is(err, domain.ErrCodeUsed) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("expected exactly one successful confirmation, got %d", successes)
	}
	if f.users.count() != 1 {
		t.Fatalf("expected exactly one account, got %d", f.users.count())
	}
}

func TestRegistrationService_Confirm_RaceOnEmail(t *testing.T) {
	f := newRegistrationFixture(t)
	first := beginAndCode(t, f)
	second := beginAndCode(t, f)

	if _, err := f.svc.Confirm(context.Background(), first); err != nil {
		t.Fatalf("first Confirm: %v", err)
	}
	if _, err := f.svc.Confirm(context.Background(), second); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken for the second pending registration, got %v", err)
	}
	if f.users.count() != 1 {
		t.Fatalf("expected exactly one account, got %d", f.users.count())
	}
}
