package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ksalp/portal/internal/core/domain"
	"github.com/ksalp/portal/internal/core/ports"
)

type stubRegistry struct {
	mu   sync.Mutex
	used map[string]time.Time
	// reject makes the next n Reserve calls report a collision.
	reject int
}

func newStubRegistry() *stubRegistry {
	return &stubRegistry{used: make(map[string]time.Time)}
}

func (r *stubRegistry) Reserve(_ context.Context, id string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.reject > 0 {
		r.reject--
		return false, nil
	}
	if _, ok := r.used[id]; ok {
		return false, nil
	}
	r.used[id] = at
	return true, nil
}

type stubUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
	err   error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Insert(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return domain.ErrEmailTaken
		}
	}
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *stubUserRepo) Save(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, u := range r.users {
		if id != user.ID && u.Email == user.Email {
			return domain.ErrEmailTaken
		}
	}
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *stubUserRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

type stubLoginRepo struct {
	mu     sync.Mutex
	logins map[string]domain.Login
}

func newStubLoginRepo() *stubLoginRepo {
	return &stubLoginRepo{logins: make(map[string]domain.Login)}
}

func (r *stubLoginRepo) FindByToken(_ context.Context, token string) (*domain.Login, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.logins[token]
	if !ok {
		return nil, domain.ErrLoginNotFound
	}
	return &l, nil
}

func (r *stubLoginRepo) Save(_ context.Context, login *domain.Login) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logins[login.Token] = *login
	return nil
}

type stubMailCheckRepo struct {
	mu     sync.Mutex
	checks map[string]domain.MailCheck
}

func newStubMailCheckRepo() *stubMailCheckRepo {
	return &stubMailCheckRepo{checks: make(map[string]domain.MailCheck)}
}

func (r *stubMailCheckRepo) Insert(_ context.Context, check *domain.MailCheck) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checks[check.ID] = *check
	return nil
}

func (r *stubMailCheckRepo) FindByCode(_ context.Context, code string) (*domain.MailCheck, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.checks {
		if c.Code == code {
			return &c, nil
		}
	}
	return nil, domain.ErrCodeNotFound
}

func (r *stubMailCheckRepo) Consume(_ context.Context, code string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.checks {
		if c.Code == code && c.ConsumedAt == nil && at.Before(c.ValidUntil) {
			c.ConsumedAt = &at
			r.checks[id] = c
			return true, nil
		}
	}
	return false, nil
}

func (r *stubMailCheckRepo) Release(_ context.Context, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.checks {
		if c.Code == code {
			c.ConsumedAt = nil
			r.checks[id] = c
		}
	}
	return nil
}

func (r *stubMailCheckRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.checks, id)
	return nil
}

func (r *stubMailCheckRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.checks)
}

type stubMailer struct {
	mu   sync.Mutex
	sent []ports.MailMessage
	err  error
}

func (m *stubMailer) Send(_ context.Context, msg ports.MailMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type stubLimiter struct {
	failures map[string]int
	max      int
	err      error
}

func newStubLimiter(max int) *stubLimiter {
	return &stubLimiter{failures: make(map[string]int), max: max}
}

func (l *stubLimiter) Allow(_ context.Context, key string) error {
	if l.err != nil {
		return l.err
	}
	if l.failures[key] >= l.max {
		return domain.ErrTooManyAttempts
	}
	return nil
}

func (l *stubLimiter) Fail(_ context.Context, key string) error {
	l.failures[key]++
	return nil
}

func (l *stubLimiter) Reset(_ context.Context, key string) error {
	delete(l.failures, key)
	return nil
}

type stubScoreRepo struct {
	mu      sync.Mutex
	records map[string]domain.IPScore
	updates int
}

func newStubScoreRepo() *stubScoreRepo {
	return &stubScoreRepo{records: make(map[string]domain.IPScore)}
}

func (r *stubScoreRepo) GetOrCreate(_ context.Context, ip string, initial int) (*domain.IPScore, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[ip]
	if !ok {
		rec = domain.IPScore{IP: ip, Score: initial, Notes: domain.DefaultIPNotes}
		r.records[ip] = rec
	}
	return &rec, nil
}

func (r *stubScoreRepo) UpdateScore(_ context.Context, ip string, score int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[ip]
	if !ok {
		return errors.New("unknown ip")
	}
	rec.Score = score
	r.records[ip] = rec
	r.updates++
	return nil
}

// fixedClock is a settable clock for expiry tests.
type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

const testIterations = 16

func newTestHasher() *PasswordHasher {
	h, err := NewPasswordHasher([]byte("pepper-one"), []byte("pepper-two"), testIterations)
	if err != nil {
		panic(err)
	}
	return h
}
