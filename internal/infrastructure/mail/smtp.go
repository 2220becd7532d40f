package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/ksalp/portal/internal/core/ports"
)

const smtpTimeout = 30 * time.Second

// SMTPSender delivers multipart/alternative messages over an SMTP relay.
// It is safe for concurrent use; each Send opens its own connection.
type SMTPSender struct {
	cfg  Config
	auth smtp.Auth
	now  func() time.Time
}

func NewSMTPSender(cfg Config) (*SMTPSender, error) {
	if cfg.SMTPHost == "" {
		return nil, fmt.Errorf("%w: SMTP host is required", ErrInvalidConfig)
	}
	if cfg.SMTPPort <= 0 || cfg.SMTPPort > 65535 {
		return nil, fmt.Errorf("%w: SMTP port must be between 1 and 65535", ErrInvalidConfig)
	}
	if cfg.SMTPTLSMode == "" {
		cfg.SMTPTLSMode = "starttls"
	}
	if cfg.SMTPTLSMode != "starttls" && cfg.SMTPTLSMode != "tls" && cfg.SMTPTLSMode != "plain" {
		return nil, fmt.Errorf("%w: SMTP TLS mode must be starttls, tls or plain", ErrInvalidConfig)
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("%w: sender address is required", ErrInvalidConfig)
	}

	var auth smtp.Auth
	if cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPHost)
	}
	return &SMTPSender{cfg: cfg, auth: auth, now: time.Now}, nil
}

func (s *SMTPSender) Send(ctx context.Context, msg ports.MailMessage) error {
	if err := ctx.Err(); err != nil {
		return errors.Join(ErrSendFailed, err)
	}

	body, err := s.buildMessage(msg)
	if err != nil {
		return errors.Join(ErrSendFailed, err)
	}

	if err := s.deliver(ctx, msg.To, body); err != nil {
		return errors.Join(ErrSendFailed, err)
	}
	return nil
}

func (s *SMTPSender) deliver(ctx context.Context, to string, body []byte) error {
	addr := net.JoinHostPort(s.cfg.SMTPHost, strconv.Itoa(s.cfg.SMTPPort))
	tlsConfig := &tls.Config{ServerName: s.cfg.SMTPHost}

	dialer := &net.Dialer{Timeout: smtpTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connect to SMTP server: %w", err)
	}
	defer func() { _ = conn.Close() }()

	deadline := time.Now().Add(smtpTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetDeadline(deadline)

	if s.cfg.SMTPTLSMode == "tls" {
		conn = tls.Client(conn, tlsConfig)
	}

	client, err := smtp.NewClient(conn, s.cfg.SMTPHost)
	if err != nil {
		return fmt.Errorf("create SMTP client: %w", err)
	}
	defer func() { _ = client.Close() }()

	if s.cfg.SMTPTLSMode == "starttls" {
		if err := client.StartTLS(tlsConfig); err != nil {
			return fmt.Errorf("start TLS: %w", err)
		}
	}
	if s.auth != nil {
		if err := client.Auth(s.auth); err != nil {
			return fmt.Errorf("authentication failed: %w", err)
		}
	}
	if err := client.Mail(s.cfg.From); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("open data writer: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		_ = w.Close()
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close data writer: %w", err)
	}

	// Some relays drop the connection right after DATA.
	_ = client.Quit()
	return nil
}

// buildMessage renders the MIME message with a plain and an HTML part.
func (s *SMTPSender) buildMessage(msg ports.MailMessage) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := []struct{ key, value string }{
		{"From", s.cfg.From},
		{"To", msg.To},
		{"Subject", mime.QEncoding.Encode("utf-8", msg.Subject)},
		{"Date", s.now().Format(time.RFC1123Z)},
		{"Message-ID", fmt.Sprintf("<%s@%s>", uuid.NewString(), s.cfg.SMTPHost)},
		{"MIME-Version", "1.0"},
		{"Content-Type", mime.FormatMediaType("multipart/alternative", map[string]string{"boundary": mw.Boundary()})},
	}
	if s.cfg.ReplyTo != "" {
		header = append(header, struct{ key, value string }{"Reply-To", s.cfg.ReplyTo})
	}

	var out bytes.Buffer
	for _, h := range header {
		fmt.Fprintf(&out, "%s: %s\r\n", h.key, h.value)
	}
	out.WriteString("\r\n")

	if err := writePart(mw, "text/plain", msg.Plain); err != nil {
		return nil, err
	}
	if err := writePart(mw, "text/html", msg.HTML); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	out.Write(buf.Bytes())
	return out.Bytes(), nil
}

func writePart(mw *multipart.Writer, contentType, body string) error {
	h := textproto.MIMEHeader{}
	h.Set("Content-Type", contentType+"; charset=utf-8")
	h.Set("Content-Transfer-Encoding", "quoted-printable")

	pw, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	qw := quotedprintable.NewWriter(pw)
	if _, err := qw.Write([]byte(body)); err != nil {
		return err
	}
	return qw.Close()
}
