package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gomail "github.com/wneessen/go-mail"
)

const defaultSendTimeout = 10 * time.Second

// SMTPConfig configures the production relay.
type SMTPConfig struct {
	Host     string
	Port     int
	Secure   bool
	Username string
	Timeout  time.Duration
}

// secretResolver yields the SMTP password on demand so it can live in SSM.
type secretResolver interface {
	Resolve(ctx context.Context) (string, error)
}

// SMTPTransport delivers through an authenticated SMTP relay. Every Open
// dials a fresh connection.
type SMTPTransport struct {
	cfg      SMTPConfig
	password secretResolver
}

func NewSMTPTransport(cfg SMTPConfig, password secretResolver) (*SMTPTransport, error) {
	cfg.Host = strings.TrimSpace(cfg.Host)
	if cfg.Host == "" {
		return nil, errors.New("mail: smtp host must not be empty")
	}
	if cfg.Port <= 0 {
		return nil, fmt.Errorf("mail: invalid smtp port %d", cfg.Port)
	}
	if cfg.Username != "" && password == nil {
		return nil, errors.New("mail: password source must not be nil when a username is set")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultSendTimeout
	}
	return &SMTPTransport{cfg: cfg, password: password}, nil
}

func (t *SMTPTransport) Open(ctx context.Context) (Session, error) {
	opts := []gomail.Option{
		gomail.WithPort(t.cfg.Port),
		gomail.WithTimeout(t.cfg.Timeout),
	}
	if t.cfg.Secure {
		opts = append(opts, gomail.WithSSL())
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSOpportunistic))
	}
	if t.cfg.Username != "" {
		pass, err := t.password.Resolve(ctx)
		if err != nil {
			return nil, fmt.Errorf("mail: resolve smtp password: %w", err)
		}
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(t.cfg.Username),
			gomail.WithPassword(pass),
		)
	}

	client, err := gomail.NewClient(t.cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("mail: create smtp client: %w", err)
	}
	dialCtx, cancel := context.WithTimeout(ctx, t.cfg.Timeout)
	defer cancel()
	if err := client.DialWithContext(dialCtx); err != nil {
		return nil, fmt.Errorf("mail: dial %s:%d: %w", t.cfg.Host, t.cfg.Port, err)
	}
	return &smtpSession{client: client}, nil
}

type smtpSession struct {
	client *gomail.Client
}

func (s *smtpSession) Send(ctx context.Context, msg Message) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, fmt.Errorf("mail: send: %w", err)
	}
	m, err := buildMsg(msg)
	if err != nil {
		return Receipt{}, err
	}
	if err := s.client.Send(m); err != nil {
		return Receipt{}, fmt.Errorf("mail: send to %s: %w", msg.To, err)
	}
	var id string
	if ids := m.GetGenHeader(gomail.HeaderMessageID); len(ids) > 0 {
		id = ids[0]
	}
	return Receipt{ID: id}, nil
}

func (s *smtpSession) Close() error {
	return s.client.Close()
}

func buildMsg(msg Message) (*gomail.Msg, error) {
	m := gomail.NewMsg()
	var err error
	if msg.FromName != "" {
		err = m.FromFormat(msg.FromName, msg.From)
	} else {
		err = m.From(msg.From)
	}
	if err != nil {
		return nil, fmt.Errorf("mail: invalid from address %q: %w", msg.From, err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("mail: invalid recipient %q: %w", msg.To, err)
	}
	if msg.ReplyTo != "" {
		if err := m.ReplyTo(msg.ReplyTo); err != nil {
			return nil, fmt.Errorf("mail: invalid reply-to %q: %w", msg.ReplyTo, err)
		}
	}
	m.Subject(msg.Subject)
	m.SetDate()
	m.SetMessageID()
	m.SetBodyString(gomail.TypeTextHTML, msg.HTML)
	return m, nil
}
