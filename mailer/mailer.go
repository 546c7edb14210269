// Package mailer sends rendered invoices and statements by email.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/xraph/folio"
)

// Attachment is a file attached to a Message.
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// Message is one outgoing email.
type Message struct {
	To          []string
	Subject     string
	Body        string
	Attachments []Attachment
}

// Mailer delivers messages.
type Mailer interface {
	Send(ctx context.Context, m Message) error
}

// Config holds SMTP settings.
type Config struct {
	Host        string
	Port        int
	Username    string
	Password    string
	TLS         string // mandatory (default), opportunistic, none
	FromAddress string
	FromName    string
	Timeout     time.Duration
}

// SMTP is a Mailer backed by go-mail.
type SMTP struct {
	client   *mail.Client
	from     string
	fromName string
}

var _ Mailer = (*SMTP)(nil)

// NewSMTP creates an SMTP mailer. No connection is made until Send.
func NewSMTP(cfg Config) (*SMTP, error) {
	if cfg.Host == "" {
		return nil, folio.ErrMailerNotConfigured
	}
	if cfg.FromAddress == "" {
		return nil, fmt.Errorf("mailer: from address is required: %w", folio.ErrMailerNotConfigured)
	}

	opts := []mail.Option{}
	if cfg.Port > 0 {
		opts = append(opts, mail.WithPort(cfg.Port))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(cfg.Timeout))
	}
	switch strings.ToLower(cfg.TLS) {
	case "none":
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	case "opportunistic":
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	default:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}
	if cfg.Port == 465 {
		opts = append(opts, mail.WithSSL())
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("mailer: %w", err)
	}
	return &SMTP{client: client, from: cfg.FromAddress, fromName: cfg.FromName}, nil
}

// Send builds m and delivers it in a single SMTP session.
func (s *SMTP) Send(ctx context.Context, m Message) error {
	msg, err := Build(s.from, s.fromName, m)
	if err != nil {
		return err
	}
	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("mailer: send: %w", err)
	}
	return nil
}

// Build converts m into a go-mail message from the given sender.
func Build(from, fromName string, m Message) (*mail.Msg, error) {
	if len(m.To) == 0 {
		return nil, folio.ErrNoRecipient
	}

	msg := mail.NewMsg()
	var err error
	if fromName != "" {
		err = msg.FromFormat(fromName, from)
	} else {
		err = msg.From(from)
	}
	if err != nil {
		return nil, fmt.Errorf("mailer: from: %w", err)
	}
	if err := msg.To(m.To...); err != nil {
		return nil, fmt.Errorf("mailer: to: %w", err)
	}
	msg.Subject(m.Subject)
	msg.SetBodyString(mail.TypeTextPlain, m.Body)

	for _, a := range m.Attachments {
		ct := a.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		if err := msg.AttachReader(a.Name, bytes.NewReader(a.Data), mail.WithFileContentType(mail.ContentType(ct))); err != nil {
			return nil, fmt.Errorf("mailer: attach %s: %w", a.Name, err)
		}
	}
	return msg, nil
}

// Memory is a Mailer that keeps messages in memory. Use it in tests and
// when no SMTP server is configured.
type Memory struct {
	mu   sync.Mutex
	sent []Message
	// Err, when set, is returned by Send and nothing is kept.
	Err error
}

var _ Mailer = (*Memory)(nil)

// NewMemory creates an empty in-memory mailer.
func NewMemory() *Memory { return &Memory{} }

// Send records m.
func (m *Memory) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if len(msg.To) == 0 {
		return folio.ErrNoRecipient
	}
	m.sent = append(m.sent, msg)
	return nil
}

// Sent returns the recorded messages in send order.
func (m *Memory) Sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.sent...)
}
