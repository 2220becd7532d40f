package mail

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/ksalp/portal/internal/core/ports"
)

// LogSender writes messages to the log instead of delivering them. Used in
// development so confirmation links can be copied from the console.
type LogSender struct {
	log zerolog.Logger
}

func NewLogSender(log zerolog.Logger) *LogSender {
	return &LogSender{log: log.With().Str("component", "mail").Logger()}
}

func (s *LogSender) Send(ctx context.Context, msg ports.MailMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.log.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("tag", msg.Tag).
		Str("body", msg.Plain).
		Msg("mail not sent, log provider")
	return nil
}
