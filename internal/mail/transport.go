package mail

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/quantix-mfg/qc-admin-api/pkg/config"
)

// Message is an outbound plain-text mail.
type Message struct {
	To      []string
	Subject string
	Body    string
}

// Transport is the outbound mail collaborator. The entity framework never
// touches it; only the settings diagnostics endpoint calls Verify.
type Transport interface {
	Verify(ctx context.Context) error
	Send(ctx context.Context, msg Message) error
}

// SMTPTransport talks to a plain SMTP relay.
type SMTPTransport struct {
	cfg config.SMTPConfig
}

// NewSMTPTransport constructs a transport from configuration.
func NewSMTPTransport(cfg config.SMTPConfig) *SMTPTransport {
	return &SMTPTransport{cfg: cfg}
}

// Verify dials the relay and performs an SMTP handshake without sending.
func (t *SMTPTransport) Verify(ctx context.Context) error {
	if t.cfg.Host == "" {
		return fmt.Errorf("smtp host is not configured")
	}

	addr := fmt.Sprintf("%s:%d", t.cfg.Host, t.cfg.Port)
	dialer := &net.Dialer{Timeout: 5 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial smtp relay: %w", err)
	}

	client, err := smtp.NewClient(conn, t.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	if err := client.Hello("qc-admin-api"); err != nil {
		return fmt.Errorf("smtp hello: %w", err)
	}
	return client.Quit()
}

// Send delivers a plain-text message through the relay.
func (t *SMTPTransport) Send(ctx context.Context, msg Message) error {
	if t.cfg.Host == "" {
		return fmt.Errorf("smtp host is not configured")
	}
	if len(msg.To) == 0 {
		return fmt.Errorf("message has no recipients")
	}

	addr := fmt.Sprintf("%s:%d", t.cfg.Host, t.cfg.Port)
	var auth smtp.Auth
	if t.cfg.Username != "" {
		auth = smtp.PlainAuth("", t.cfg.Username, t.cfg.Password, t.cfg.Host)
	}

	payload := strings.Join([]string{
		"From: " + t.cfg.From,
		"To: " + strings.Join(msg.To, ", "),
		"Subject: " + msg.Subject,
		"",
		msg.Body,
	}, "\r\n")

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(addr, auth, t.cfg.From, msg.To, []byte(payload))
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send mail: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
