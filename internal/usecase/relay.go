package usecase

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"portfolio-site/internal/domain"
)

const (
	defaultRelayTimeout = 10 * time.Second
	defaultMaxMessage   = 1000
)

// Generator produces text for a prompt using a remote model. An empty string
// with a nil error means the provider answered without usable text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type ReplySource string

const (
	SourceProfile  ReplySource = "profile"
	SourceModel    ReplySource = "model"
	SourceFallback ReplySource = "fallback"
)

type RelayConfig struct {
	Timeout       time.Duration
	MaxMessageLen int
}

// RelayService answers chat messages locally from the profile or through the
// configured Generator. Remote failures never reach the caller.
type RelayService struct {
	profile domain.ProfileFacts
	gen     Generator
	timeout time.Duration
	maxLen  int

	pick func(n int) int
}

type ReplyInput struct {
	Message string
}

type ReplyOutput struct {
	Message string
	Source  ReplySource
}

// NewRelayService builds a relay. A nil Generator is allowed: every
// non-contact question is then answered with a fallback.
func NewRelayService(profile domain.ProfileFacts, gen Generator, cfg RelayConfig) (*RelayService, error) {
	if strings.TrimSpace(profile.Name) == "" {
		return nil, errors.New("usecase: profile name must not be empty")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultRelayTimeout
	}
	if cfg.MaxMessageLen <= 0 {
		cfg.MaxMessageLen = defaultMaxMessage
	}
	return &RelayService{
		profile: profile,
		gen:     gen,
		timeout: cfg.Timeout,
		maxLen:  cfg.MaxMessageLen,
		pick:    rand.IntN,
	}, nil
}

func (s *RelayService) Reply(ctx context.Context, in ReplyInput) (ReplyOutput, error) {
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return ReplyOutput{}, newError(ErrorInvalidInput, "empty_message", nil)
	}
	if len(message) > s.maxLen {
		return ReplyOutput{}, newError(ErrorInvalidInput, "message_too_long", nil)
	}

	if isContactRequest(message) {
		return ReplyOutput{Message: contactAnswer(s.profile), Source: SourceProfile}, nil
	}

	if s.gen == nil {
		slog.WarnContext(ctx, "no generator configured, using fallback reply")
		return s.fallback(), nil
	}

	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	text, err := s.gen.Generate(genCtx, buildContextPrompt(s.profile, message))
	if err != nil {
		slog.WarnContext(ctx, "generator failed, using fallback reply", "err", err)
		return s.fallback(), nil
	}
	if strings.TrimSpace(text) == "" {
		return ReplyOutput{Message: noResponseText, Source: SourceModel}, nil
	}
	return ReplyOutput{Message: text, Source: SourceModel}, nil
}

// Respond returns only the reply text, for use as a chat widget responder.
func (s *RelayService) Respond(ctx context.Context, message string) (string, error) {
	out, err := s.Reply(ctx, ReplyInput{Message: message})
	if err != nil {
		return "", err
	}
	return out.Message, nil
}

func (s *RelayService) fallback() ReplyOutput {
	options := fallbackResponses(s.profile)
	return ReplyOutput{Message: options[s.pick(len(options))], Source: SourceFallback}
}
