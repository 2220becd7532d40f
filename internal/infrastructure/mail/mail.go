// Package mail delivers transactional messages through a log sink, an SMTP
// relay or the Postmark API.
package mail

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ksalp/portal/internal/core/ports"
)

var (
	ErrInvalidConfig = errors.New("invalid mail config")
	ErrSendFailed    = errors.New("failed to send mail")
)

const (
	ProviderLog      = "log"
	ProviderSMTP     = "smtp"
	ProviderPostmark = "postmark"
)

type Config struct {
	Provider string
	From     string
	ReplyTo  string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	// SMTPTLSMode is starttls, tls or plain.
	SMTPTLSMode string

	PostmarkServerToken  string
	PostmarkAccountToken string
}

// New builds the Mailer selected by cfg.Provider.
func New(cfg Config, log zerolog.Logger) (ports.Mailer, error) {
	switch cfg.Provider {
	case ProviderLog, "":
		return NewLogSender(log), nil
	case ProviderSMTP:
		return NewSMTPSender(cfg)
	case ProviderPostmark:
		return NewPostmarkSender(cfg)
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, cfg.Provider)
	}
}
