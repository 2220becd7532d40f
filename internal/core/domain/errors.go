package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrLoginNotFound = errors.New("login not found")
	ErrEmailTaken    = errors.New("email already in use")
	ErrEmailDomain   = errors.New("email domain not allowed")
	ErrWrongPassword = errors.New("invalid password")
)

// Authentication failures. ErrInvalidCredentials never says which half of
// the e-mail/password pair was wrong.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTooManyAttempts    = errors.New("too many sign-in attempts")
)

// Guard failures, one per access level.
var (
	ErrLoginRequired       = errors.New("account required")
	ErrPremiumRequired     = errors.New("premium required")
	ErrPremiumLiteRequired = errors.New("premium lite required")
)

// Registration handshake.
var (
	ErrCodeNotFound = errors.New("registration code not found")
	ErrCodeExpired  = errors.New("registration code expired")
	ErrCodeUsed     = errors.New("registration code already used")
	ErrDelivery     = errors.New("confirmation email could not be delivered")
)

// Request gate.
var (
	ErrBanned          = errors.New("client banned")
	ErrPayloadTooLarge = errors.New("payload too large")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
