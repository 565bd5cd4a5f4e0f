package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"portfolio-site/internal/domain"
	"portfolio-site/internal/mail"
)

const (
	defaultSendTimeout = 10 * time.Second
	ownerSubjectPrefix = "Portfolio Contact: "
	senderSubject      = "Thank you for contacting me!"
)

type ContactConfig struct {
	// OwnerAddress receives the notification for every submission.
	OwnerAddress string
	FromAddress  string
	BaseURL      string
	SendTimeout  time.Duration
	Production   bool
	// SimulateOnFailure reports transport failures as simulated deliveries.
	// It is ignored in production.
	SimulateOnFailure bool
}

// ContactService turns a contact submission into an owner notification and a
// sender acknowledgment.
type ContactService struct {
	transport mail.Transport
	templates *mail.Templates
	profile   domain.ProfileFacts
	cfg       ContactConfig
	now       func() time.Time
}

func NewContactService(t mail.Transport, templates *mail.Templates, profile domain.ProfileFacts, cfg ContactConfig) (*ContactService, error) {
	if t == nil {
		return nil, errors.New("usecase: mail transport must not be nil")
	}
	if templates == nil {
		return nil, errors.New("usecase: mail templates must not be nil")
	}
	cfg.OwnerAddress = strings.TrimSpace(cfg.OwnerAddress)
	if cfg.OwnerAddress == "" {
		return nil, errors.New("usecase: owner address must not be empty")
	}
	cfg.FromAddress = strings.TrimSpace(cfg.FromAddress)
	if cfg.FromAddress == "" {
		cfg.FromAddress = cfg.OwnerAddress
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = defaultSendTimeout
	}
	return &ContactService{
		transport: t,
		templates: templates,
		profile:   profile,
		cfg:       cfg,
		now:       time.Now,
	}, nil
}

// Submit validates the submission and sends the owner email followed by the
// sender email. The sender email is never attempted when the owner email
// fails. There are no retries.
func (s *ContactService) Submit(ctx context.Context, in domain.ContactSubmission) (domain.DispatchResult, error) {
	in = normalizeSubmission(in)
	if fields := validateSubmission(in); len(fields) > 0 {
		err := newError(ErrorInvalidInput, "invalid_submission", nil)
		err.Fields = fields
		return domain.DispatchResult{ErrorMessage: "invalid contact submission"}, err
	}

	owner, sender, err := s.render(in)
	if err != nil {
		return domain.DispatchResult{ErrorMessage: err.Error()}, newError(ErrorInternal, "template_error", err)
	}

	ownerReceipt, senderReceipt, reason, err := s.dispatch(ctx, owner, sender)
	if err != nil {
		if s.cfg.SimulateOnFailure && !s.cfg.Production {
			slog.WarnContext(ctx, "email delivery failed, reporting simulated success", "reason", reason, "err", err)
			return domain.DispatchResult{Success: true, Simulated: true, ErrorMessage: err.Error()}, nil
		}
		slog.ErrorContext(ctx, "email delivery failed", "reason", reason, "err", err)
		return domain.DispatchResult{ErrorMessage: err.Error()}, newError(ErrorTransport, reason, err)
	}

	slog.InfoContext(ctx, "contact emails sent", "owner_id", ownerReceipt.ID, "sender_id", senderReceipt.ID)
	out := domain.DispatchResult{Success: true}
	if ownerReceipt.PreviewURL != "" || senderReceipt.PreviewURL != "" {
		out.PreviewLinks = &domain.PreviewLinks{
			Owner:  ownerReceipt.PreviewURL,
			Sender: senderReceipt.PreviewURL,
		}
	}
	return out, nil
}

func (s *ContactService) render(in domain.ContactSubmission) (owner, sender mail.Message, err error) {
	year := s.now().Year()
	ownerHTML, err := s.templates.RenderOwnerNotice(mail.OwnerNotice{
		Submission: in,
		OwnerName:  s.profile.Name,
		Year:       year,
	})
	if err != nil {
		return mail.Message{}, mail.Message{}, err
	}
	senderHTML, err := s.templates.RenderSenderAck(mail.SenderAck{
		Submission: in,
		OwnerName:  s.profile.Name,
		BaseURL:    s.cfg.BaseURL,
		GitHub:     s.profile.Contact.GitHub,
		LinkedIn:   s.profile.Contact.LinkedIn,
		Year:       year,
	})
	if err != nil {
		return mail.Message{}, mail.Message{}, err
	}

	owner = mail.Message{
		From:     s.cfg.FromAddress,
		FromName: s.profile.Name,
		To:       s.cfg.OwnerAddress,
		ReplyTo:  in.Email,
		Subject:  ownerSubjectPrefix + in.Subject,
		HTML:     ownerHTML,
	}
	sender = mail.Message{
		From:     s.cfg.FromAddress,
		FromName: s.profile.Name,
		To:       in.Email,
		Subject:  senderSubject,
		HTML:     senderHTML,
	}
	return owner, sender, nil
}

func (s *ContactService) dispatch(ctx context.Context, owner, sender mail.Message) (ownerReceipt, senderReceipt mail.Receipt, reason string, err error) {
	session, err := s.transport.Open(ctx)
	if err != nil {
		return mail.Receipt{}, mail.Receipt{}, "transport_unavailable", err
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			slog.WarnContext(ctx, "failed to close mail session", "err", cerr)
		}
	}()

	ownerReceipt, err = s.send(ctx, session, owner)
	if err != nil {
		return mail.Receipt{}, mail.Receipt{}, "owner_send_failed", err
	}
	senderReceipt, err = s.send(ctx, session, sender)
	if err != nil {
		return ownerReceipt, mail.Receipt{}, "sender_send_failed", err
	}
	return ownerReceipt, senderReceipt, "", nil
}

func (s *ContactService) send(ctx context.Context, session mail.Session, msg mail.Message) (mail.Receipt, error) {
	sendCtx, cancel := context.WithTimeout(ctx, s.cfg.SendTimeout)
	defer cancel()
	receipt, err := session.Send(sendCtx, msg)
	if err != nil {
		return mail.Receipt{}, fmt.Errorf("usecase: send %q: %w", msg.Subject, err)
	}
	return receipt, nil
}
