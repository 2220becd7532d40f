package mail

import (
	"context"
	"errors"
	"fmt"

	"github.com/mrz1836/postmark"

	"github.com/ksalp/portal/internal/core/ports"
)

// PostmarkSender delivers through Postmark's transactional API.
type PostmarkSender struct {
	client *postmark.Client
	from   string
	reply  string
}

func NewPostmarkSender(cfg Config) (*PostmarkSender, error) {
	if cfg.PostmarkServerToken == "" {
		return nil, fmt.Errorf("%w: Postmark server token is required", ErrInvalidConfig)
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("%w: sender address is required", ErrInvalidConfig)
	}
	return &PostmarkSender{
		client: postmark.NewClient(cfg.PostmarkServerToken, cfg.PostmarkAccountToken),
		from:   cfg.From,
		reply:  cfg.ReplyTo,
	}, nil
}

func (s *PostmarkSender) Send(ctx context.Context, msg ports.MailMessage) error {
	resp, err := s.client.SendEmail(ctx, postmark.Email{
		From:     s.from,
		ReplyTo:  s.reply,
		To:       msg.To,
		Subject:  msg.Subject,
		Tag:      msg.Tag,
		HTMLBody: msg.HTML,
		TextBody: msg.Plain,
	})
	if err != nil {
		return errors.Join(ErrSendFailed, err)
	}
	if resp.ErrorCode > 0 {
		return errors.Join(ErrSendFailed, fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message))
	}
	return nil
}
