package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"portfolio-site/internal/domain"
	"portfolio-site/internal/mail"
)

func newTestContactService(t *testing.T, tr mail.Transport, cfg ContactConfig) *ContactService {
	t.Helper()
	tmpl, err := mail.ParseTemplates()
	require.NoError(t, err)
	if cfg.OwnerAddress == "" {
		cfg.OwnerAddress = "owner@example.com"
	}
	svc, err := NewContactService(tr, tmpl, testProfile(), cfg)
	require.NoError(t, err)
	svc.now = func() time.Time { return time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC) }
	return svc
}

func adaSubmission() domain.ContactSubmission {
	return domain.ContactSubmission{
		Name:    "Ada",
		Email:   "ada@example.com",
		Subject: "Hi",
		Message: "Hello\nWorld",
	}
}

func TestNewContactService_Validation(t *testing.T) {
	tmpl, err := mail.ParseTemplates()
	require.NoError(t, err)

	_, err = NewContactService(nil, tmpl, testProfile(), ContactConfig{OwnerAddress: "a@b.c"})
	require.Error(t, err)
	_, err = NewContactService(&fakeTransport{}, nil, testProfile(), ContactConfig{OwnerAddress: "a@b.c"})
	require.Error(t, err)
	_, err = NewContactService(&fakeTransport{}, tmpl, testProfile(), ContactConfig{OwnerAddress: "  "})
	require.Error(t, err)
}

func TestSubmit_SendsOwnerThenSender(t *testing.T) {
	tr := &fakeTransport{}
	svc := newTestContactService(t, tr, ContactConfig{FromAddress: "noreply@example.com", BaseURL: "https://gloire.dev"})

	res, err := svc.Submit(context.Background(), adaSubmission())
	require.NoError(t, err)
	require.True(t, res.Success)
	require.False(t, res.Simulated)
	require.Nil(t, res.PreviewLinks)

	require.Len(t, tr.sent, 2)
	require.Equal(t, 1, tr.opens)
	require.Equal(t, 1, tr.closes)

	owner, sender := tr.sent[0], tr.sent[1]
	require.Equal(t, "owner@example.com", owner.To)
	require.Equal(t, "ada@example.com", owner.ReplyTo)
	require.Equal(t, "Portfolio Contact: Hi", owner.Subject)
	require.Equal(t, "noreply@example.com", owner.From)
	require.Equal(t, "Gloire Mbonyi", owner.FromName)

	require.Equal(t, "ada@example.com", sender.To)
	require.Equal(t, "Thank you for contacting me!", sender.Subject)
	require.Contains(t, sender.HTML, "https://gloire.dev")
	require.Contains(t, sender.HTML, "https://github.com/gloire")
}

func TestSubmit_ContentFidelity(t *testing.T) {
	tr := &fakeTransport{}
	svc := newTestContactService(t, tr, ContactConfig{})

	in := adaSubmission()
	in.Message = "line1\nline2"
	_, err := svc.Submit(context.Background(), in)
	require.NoError(t, err)

	require.Contains(t, tr.sent[0].HTML, "line1<br>line2")
	for _, msg := range tr.sent {
		require.Contains(t, msg.HTML, "Ada")
		require.Contains(t, msg.HTML, "ada@example.com")
		require.Contains(t, msg.HTML, "Subject:</")
		require.Contains(t, msg.HTML, "> Hi</p>")
	}
	require.Contains(t, tr.sent[0].HTML, "Not provided")
	require.Contains(t, tr.sent[0].HTML, "2026")
}

func TestSubmit_EscapesMarkup(t *testing.T) {
	tr := &fakeTransport{}
	svc := newTestContactService(t, tr, ContactConfig{})

	in := adaSubmission()
	in.Name = "<script>x</script>"
	in.Message = "<b>hi</b>"
	_, err := svc.Submit(context.Background(), in)
	require.NoError(t, err)

	for _, msg := range tr.sent {
		require.NotContains(t, msg.HTML, "<script>")
		require.NotContains(t, msg.HTML, "<b>hi</b>")
	}
}

func TestSubmit_InvalidInputSkipsTransport(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.ContactSubmission)
		field  string
	}{
		{name: "missing name", mutate: func(s *domain.ContactSubmission) { s.Name = "" }, field: "name"},
		{name: "blank name", mutate: func(s *domain.ContactSubmission) { s.Name = "   " }, field: "name"},
		{name: "missing email", mutate: func(s *domain.ContactSubmission) { s.Email = "" }, field: "email"},
		{name: "bad email", mutate: func(s *domain.ContactSubmission) { s.Email = "not-an-email" }, field: "email"},
		{name: "missing subject", mutate: func(s *domain.ContactSubmission) { s.Subject = "" }, field: "subject"},
		{name: "missing message", mutate: func(s *domain.ContactSubmission) { s.Message = "\n" }, field: "message"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &fakeTransport{}
			svc := newTestContactService(t, tr, ContactConfig{})
			in := adaSubmission()
			tt.mutate(&in)

			res, err := svc.Submit(context.Background(), in)
			var ue *Error
			require.ErrorAs(t, err, &ue)
			require.Equal(t, ErrorInvalidInput, ue.Code)
			require.Contains(t, ue.Fields, tt.field)
			require.False(t, res.Success)
			require.Zero(t, tr.opens)
			require.Zero(t, tr.attempts())
		})
	}
}

func TestSubmit_OwnerFailureSkipsSender(t *testing.T) {
	tr := &fakeTransport{failOn: 1}
	svc := newTestContactService(t, tr, ContactConfig{Production: true})

	res, err := svc.Submit(context.Background(), adaSubmission())
	var ue *Error
	require.ErrorAs(t, err, &ue)
	require.Equal(t, ErrorTransport, ue.Code)
	require.Equal(t, "owner_send_failed", ue.Reason)
	require.False(t, res.Success)
	require.Equal(t, 1, tr.attempts())
	require.Equal(t, 1, tr.closes)
}

func TestSubmit_SenderFailure(t *testing.T) {
	tr := &fakeTransport{failOn: 2}
	svc := newTestContactService(t, tr, ContactConfig{})

	_, err := svc.Submit(context.Background(), adaSubmission())
	var ue *Error
	require.ErrorAs(t, err, &ue)
	require.Equal(t, "sender_send_failed", ue.Reason)
	require.Equal(t, 2, tr.attempts())
}

func TestSubmit_OpenFailure(t *testing.T) {
	tr := &fakeTransport{openErr: errors.New("dial tcp: connection refused")}
	svc := newTestContactService(t, tr, ContactConfig{})

	_, err := svc.Submit(context.Background(), adaSubmission())
	var ue *Error
	require.ErrorAs(t, err, &ue)
	require.Equal(t, "transport_unavailable", ue.Reason)
	require.Zero(t, tr.attempts())
	require.Zero(t, tr.closes)
}

func TestSubmit_SimulateOnFailure(t *testing.T) {
	t.Run("development reports simulated success", func(t *testing.T) {
		tr := &fakeTransport{failOn: 1}
		svc := newTestContactService(t, tr, ContactConfig{SimulateOnFailure: true})

		res, err := svc.Submit(context.Background(), adaSubmission())
		require.NoError(t, err)
		require.True(t, res.Success)
		require.True(t, res.Simulated)
		require.Contains(t, res.ErrorMessage, "554")
		require.Equal(t, 1, tr.attempts())
	})

	t.Run("production never simulates", func(t *testing.T) {
		tr := &fakeTransport{failOn: 1}
		svc := newTestContactService(t, tr, ContactConfig{SimulateOnFailure: true, Production: true})

		res, err := svc.Submit(context.Background(), adaSubmission())
		require.Error(t, err)
		require.False(t, res.Success)
		require.False(t, res.Simulated)
	})
}

func TestSubmit_PreviewLinks(t *testing.T) {
	tr := &fakeTransport{preview: true}
	svc := newTestContactService(t, tr, ContactConfig{})

	res, err := svc.Submit(context.Background(), adaSubmission())
	require.NoError(t, err)
	require.NotNil(t, res.PreviewLinks)
	require.Equal(t, "http://preview/1", res.PreviewLinks.Owner)
	require.Equal(t, "http://preview/2", res.PreviewLinks.Sender)
}

func TestSubmit_WithOutbox(t *testing.T) {
	outbox, err := mail.NewOutbox("http://localhost:3000", 10)
	require.NoError(t, err)
	svc := newTestContactService(t, outbox, ContactConfig{})

	res, err := svc.Submit(context.Background(), adaSubmission())
	require.NoError(t, err)
	require.Equal(t, 2, outbox.Len())
	require.Contains(t, res.PreviewLinks.Owner, "http://localhost:3000/api/outbox/")

	stored := outbox.List()
	require.Equal(t, "owner@example.com", stored[0].Message.To)
	require.Equal(t, "ada@example.com", stored[1].Message.To)
}

func TestSubmit_TrimsFields(t *testing.T) {
	tr := &fakeTransport{}
	svc := newTestContactService(t, tr, ContactConfig{})

	in := adaSubmission()
	in.Email = "  ada@example.com "
	in.Subject = " Hi "
	_, err := svc.Submit(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", tr.sent[1].To)
	require.Equal(t, "Portfolio Contact: Hi", tr.sent[0].Subject)
}
