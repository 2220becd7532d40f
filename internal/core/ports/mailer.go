package ports

import "context"

// MailMessage is a multipart message with plain and HTML bodies.
type MailMessage struct {
	To      string
	Subject string
	Plain   string
	HTML    string
	Tag     string
}

// Mailer delivers a message or returns the transport error.
type Mailer interface {
	Send(ctx context.Context, msg MailMessage) error
}

// AttemptLimiter throttles repeated failures for a key.
type AttemptLimiter interface {
	// Allow returns domain.ErrTooManyAttempts when key is over budget.
	Allow(ctx context.Context, key string) error
	Fail(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}
