// Package cookie carries the session token in a signed HS256 JWT cookie.
package cookie

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	nameDevelopment = "session"
	// The __Host- prefix requires Secure, Path=/ and no Domain.
	nameProduction = "__Host-session"

	defaultMaxAge = 92 * 24 * time.Hour
)

type Config struct {
	Secret []byte
	// Secure selects the production cookie name and the Secure attribute.
	Secure bool
	MaxAge time.Duration
	Now    func() time.Time
}

type claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Manager issues, reads and clears the session cookie.
type Manager struct {
	secret []byte
	secure bool
	maxAge time.Duration
	now    func() time.Time
}

func New(cfg Config) *Manager {
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = defaultMaxAge
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Manager{secret: cfg.Secret, secure: cfg.Secure, maxAge: cfg.MaxAge, now: cfg.Now}
}

func (m *Manager) Name() string {
	if m.secure {
		return nameProduction
	}
	return nameDevelopment
}

// Issue writes a cookie carrying token.
func (m *Manager) Issue(w http.ResponseWriter, token string) error {
	now := m.now()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		SessionID: token,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.maxAge)),
		},
	}).SignedString(m.secret)
	if err != nil {
		return err
	}

	http.SetCookie(w, m.cookie(signed, int(m.maxAge/time.Second)))
	return nil
}

// Clear expires the cookie in the browser.
func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, m.cookie("", -1))
}

// Token returns the session token of r, or "" when the cookie is missing,
// tampered with or expired.
func (m *Manager) Token(r *http.Request) string {
	ck, err := r.Cookie(m.Name())
	if err != nil || ck.Value == "" {
		return ""
	}

	var cl claims
	tkn, err := jwt.ParseWithClaims(ck.Value, &cl, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now), jwt.WithExpirationRequired())
	if err != nil || !tkn.Valid {
		return ""
	}
	return cl.SessionID
}

func (m *Manager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     m.Name(),
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteStrictMode,
	}
}
