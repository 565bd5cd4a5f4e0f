package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"portfolio-site/internal/domain"
)

func newTestRelay(t *testing.T, gen Generator, cfg RelayConfig) *RelayService {
	t.Helper()
	s, err := NewRelayService(testProfile(), gen, cfg)
	require.NoError(t, err)
	s.pick = func(int) int { return 0 }
	return s
}

func TestNewRelayService_RequiresName(t *testing.T) {
	_, err := NewRelayService(domain.ProfileFacts{}, nil, RelayConfig{})
	require.Error(t, err)
}

func TestReply_ContactIntentSkipsGenerator(t *testing.T) {
	gen := &fakeGenerator{text: "model answer"}
	s := newTestRelay(t, gen, RelayConfig{})

	for _, msg := range []string{
		"What is your EMAIL?",
		"phone number please",
		"How can I reach you?",
		"can we connect",
	} {
		out, err := s.Reply(context.Background(), ReplyInput{Message: msg})
		require.NoError(t, err, msg)
		require.Equal(t, SourceProfile, out.Source, msg)
		require.Contains(t, out.Message, "owner@example.com")
		require.Contains(t, out.Message, "+250700000000")
		require.Contains(t, out.Message, "**Email:**")
	}
	require.Zero(t, gen.calls())
}

func TestReply_UsesGenerator(t *testing.T) {
	gen := &fakeGenerator{text: "Gloire knows **Go**."}
	s := newTestRelay(t, gen, RelayConfig{})

	out, err := s.Reply(context.Background(), ReplyInput{Message: "  What skills?  "})
	require.NoError(t, err)
	require.Equal(t, SourceModel, out.Source)
	require.Equal(t, "Gloire knows **Go**.", out.Message)

	require.Equal(t, 1, gen.calls())
	prompt := gen.prompts[0]
	require.True(t, strings.HasSuffix(prompt, "Question: What skills?"))
	require.Contains(t, prompt, "You are an AI assistant for Gloire Mbonyi (Full Stack Developer).")
	require.Contains(t, prompt, "- Currently works at GKK")
	require.Contains(t, prompt, "- Currently studying BSc Software Engineering at AUCA")
	require.Contains(t, prompt, "- Skills include: Go, TypeScript")
}

func TestReply_EmptyGeneratorText(t *testing.T) {
	s := newTestRelay(t, &fakeGenerator{text: "  "}, RelayConfig{})

	out, err := s.Reply(context.Background(), ReplyInput{Message: "Tell me about projects"})
	require.NoError(t, err)
	require.Equal(t, noResponseText, out.Message)
}

func TestReply_GeneratorFailureFallsBack(t *testing.T) {
	s := newTestRelay(t, &fakeGenerator{err: errors.New("status 503")}, RelayConfig{})
	s.pick = func(n int) int { return n - 1 }

	out, err := s.Reply(context.Background(), ReplyInput{Message: "Tell me about projects"})
	require.NoError(t, err)
	require.Equal(t, SourceFallback, out.Source)
	require.Equal(t, "If you need to get in touch with Gloire Mbonyi, please email owner@example.com or call +250700000000.", out.Message)
}

func TestReply_GeneratorTimeoutFallsBack(t *testing.T) {
	gen := &fakeGenerator{block: true}
	s := newTestRelay(t, gen, RelayConfig{Timeout: 20 * time.Millisecond})

	start := time.Now()
	out, err := s.Reply(context.Background(), ReplyInput{Message: "Tell me about projects"})
	require.NoError(t, err)
	require.Equal(t, SourceFallback, out.Source)
	require.NotEmpty(t, out.Message)
	require.Less(t, time.Since(start), 2*time.Second)
}

func TestReply_NilGeneratorFallsBack(t *testing.T) {
	s := newTestRelay(t, nil, RelayConfig{})

	out, err := s.Reply(context.Background(), ReplyInput{Message: "Tell me about projects"})
	require.NoError(t, err)
	require.Equal(t, SourceFallback, out.Source)
	require.Contains(t, fallbackResponses(testProfile()), out.Message)
}

func TestReply_InvalidInput(t *testing.T) {
	s := newTestRelay(t, &fakeGenerator{}, RelayConfig{MaxMessageLen: 10})

	_, err := s.Reply(context.Background(), ReplyInput{Message: "   "})
	var ue *Error
	require.ErrorAs(t, err, &ue)
	require.Equal(t, "empty_message", ue.Reason)

	_, err = s.Reply(context.Background(), ReplyInput{Message: strings.Repeat("a", 11)})
	require.ErrorAs(t, err, &ue)
	require.Equal(t, ErrorInvalidInput, ue.Code)
	require.Equal(t, "message_too_long", ue.Reason)
}

func TestRespond(t *testing.T) {
	s := newTestRelay(t, &fakeGenerator{text: "hi"}, RelayConfig{})

	text, err := s.Respond(context.Background(), "hello")
	require.NoError(t, err)
	require.Equal(t, "hi", text)

	_, err = s.Respond(context.Background(), "")
	require.Error(t, err)
}

func TestIsContactRequest(t *testing.T) {
	require.True(t, isContactRequest("Send a MESSAGE"))
	require.True(t, isContactRequest("call me"))
	require.True(t, isContactRequest("phone app"))
	require.False(t, isContactRequest("What projects has he built?"))
}

func TestFallbackResponses_NoContactDetails(t *testing.T) {
	p := domain.ProfileFacts{Name: "Ada"}
	got := fallbackResponses(p)
	require.Len(t, got, 4)
	require.Equal(t, "Ada.", got[1])
	require.Equal(t, "If you need to get in touch with Ada, please use the contact form on this site.", got[3])
}

func TestContactAnswer_OmitsMissingChannels(t *testing.T) {
	got := contactAnswer(domain.ProfileFacts{Name: "Ada", Contact: domain.ContactInfo{Email: "ada@example.com"}})
	require.Contains(t, got, "ada@example.com")
	require.NotContains(t, got, "Phone")
	require.NotContains(t, got, "LinkedIn")
}
