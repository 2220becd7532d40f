package domain

import "time"

// Login is one authenticated session. The token doubles as its identifier.
type Login struct {
	Token       string
	AccountID   string
	ValidUntil  time.Time
	Fingerprint string
}

// ActiveFor reports whether the session may represent a caller presenting
// fingerprint at now.
func (l *Login) ActiveFor(now time.Time, fingerprint string) bool {
	return now.Before(l.ValidUntil) && l.Fingerprint == fingerprint
}

// Revoke ends the session at now. The record is kept so later lookups see an
// expired session rather than an unknown token.
func (l *Login) Revoke(now time.Time) {
	if now.Before(l.ValidUntil) {
		l.ValidUntil = now
	}
}
