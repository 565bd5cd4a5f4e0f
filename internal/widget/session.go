// Package widget implements the chat widget conversation: its open/closed
// lifecycle, the transcript, and reply sequencing.
package widget

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"portfolio-site/internal/domain"
)

const (
	WelcomeMessage = "👋 Hello! I'm an AI assistant. How can I help you today?"
	ApologyMessage = "I apologize, but I encountered an error. Please try again."

	defaultTypingDelay = 500 * time.Millisecond
)

var (
	ErrClosed            = errors.New("widget: session is closed")
	ErrBusy              = errors.New("widget: a reply is already pending")
	ErrEmptyMessage      = errors.New("widget: message is empty")
	ErrReplyDiscarded    = errors.New("widget: conversation was cleared before the reply arrived")
	ErrUnknownSuggestion = errors.New("widget: unknown suggestion")
)

type State int

const (
	StateClosed State = iota
	StateIdle
	StateComposing
	StateAwaitingReply
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateIdle:
		return "idle"
	case StateComposing:
		return "composing"
	case StateAwaitingReply:
		return "awaiting_reply"
	default:
		return "unknown"
	}
}

// Responder produces the assistant text for one user message.
type Responder interface {
	Respond(ctx context.Context, message string) (string, error)
}

type Options struct {
	// Welcome is the assistant message seeded when an empty session opens.
	Welcome     string
	TypingDelay time.Duration
	Suggestions []domain.SuggestionCategory
	// SuggestionThreshold is the largest transcript length for which
	// suggestions are still offered.
	SuggestionThreshold int
}

// Welcome greets visitors on behalf of owner, addressed by first name.
// An empty owner yields WelcomeMessage.
func Welcome(owner string) string {
	fields := strings.Fields(owner)
	if len(fields) == 0 {
		return WelcomeMessage
	}
	return fmt.Sprintf("👋 Hello! I'm %[1]s's AI assistant. How can I help you learn more about %[1]s today?", fields[0])
}

// Session is one visitor's chat widget. It is safe for concurrent use; a
// second Submit while a reply is pending fails with ErrBusy.
type Session struct {
	responder   Responder
	welcome     string
	typingDelay time.Duration
	suggestions []domain.SuggestionCategory
	threshold   int

	now   func() time.Time
	newID func() string
	sleep func(ctx context.Context, d time.Duration)

	mu         sync.Mutex
	state      State
	transcript []domain.ChatMessage
	lastStamp  time.Time
	// pending is set while a reply for the current generation is outstanding,
	// whether or not the widget is visible.
	pending bool
	// generation changes on every Clear so replies requested before it are dropped.
	generation uint64
}

func NewSession(r Responder, opts Options) (*Session, error) {
	if r == nil {
		return nil, errors.New("widget: responder must not be nil")
	}
	if opts.Welcome == "" {
		opts.Welcome = WelcomeMessage
	}
	if opts.TypingDelay < 0 {
		opts.TypingDelay = 0
	} else if opts.TypingDelay == 0 {
		opts.TypingDelay = defaultTypingDelay
	}
	if opts.SuggestionThreshold <= 0 {
		opts.SuggestionThreshold = 1
	}
	return &Session{
		responder:   r,
		welcome:     opts.Welcome,
		typingDelay: opts.TypingDelay,
		suggestions: opts.Suggestions,
		threshold:   opts.SuggestionThreshold,
		now:         time.Now,
		newID:       uuid.NewString,
		sleep:       sleepContext,
		state:       StateClosed,
	}, nil
}

func sleepContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Transcript returns a copy of the conversation so far.
func (s *Session) Transcript() []domain.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ChatMessage, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// Open shows the widget. An empty transcript is seeded with the welcome message.
func (s *Session) Open() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateClosed {
		return
	}
	s.state = StateIdle
	if s.pending {
		s.state = StateAwaitingReply
	}
	if len(s.transcript) == 0 {
		s.appendLocked(domain.RoleAssistant, s.welcome)
	}
}

// Close hides the widget. The transcript is kept for the next Open, and a
// pending reply is still recorded when it arrives.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateClosed
}

// Compose marks that the visitor started typing.
func (s *Session) Compose() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.state == StateClosed:
		return ErrClosed
	case s.pending:
		return ErrBusy
	}
	s.state = StateComposing
	return nil
}

// Clear empties the transcript. Clearing an empty transcript is a no-op and
// never seeds a welcome message; a closed widget stays closed.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = nil
	s.generation++
	s.pending = false
	if s.state != StateClosed {
		s.state = StateIdle
	}
}

// Submit appends the user message, waits for the responder and the typing
// delay, then appends exactly one assistant message and returns it. Responder
// errors are replaced by ApologyMessage.
func (s *Session) Submit(ctx context.Context, text string) (domain.ChatMessage, error) {
	if strings.TrimSpace(text) == "" {
		return domain.ChatMessage{}, ErrEmptyMessage
	}

	s.mu.Lock()
	switch {
	case s.state == StateClosed:
		s.mu.Unlock()
		return domain.ChatMessage{}, ErrClosed
	case s.pending:
		s.mu.Unlock()
		return domain.ChatMessage{}, ErrBusy
	}
	s.appendLocked(domain.RoleUser, text)
	s.state = StateAwaitingReply
	s.pending = true
	gen := s.generation
	s.mu.Unlock()

	reply, err := s.responder.Respond(ctx, text)
	if err != nil {
		slog.WarnContext(ctx, "chat responder failed", "err", err)
		reply = ApologyMessage
	}
	s.sleep(ctx, s.typingDelay)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return domain.ChatMessage{}, ErrReplyDiscarded
	}
	s.pending = false
	msg := s.appendLocked(domain.RoleAssistant, reply)
	if s.state == StateAwaitingReply {
		s.state = StateIdle
	}
	return msg, nil
}

// Suggestions returns the categories to show, or nil once the conversation
// has moved past the welcome message or while a reply is pending.
func (s *Session) Suggestions() []domain.SuggestionCategory {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed || s.pending {
		return nil
	}
	if len(s.transcript) > s.threshold {
		return nil
	}
	return s.suggestions
}

// SubmitSuggestion submits the text of a suggestion as if the visitor typed it.
func (s *Session) SubmitSuggestion(ctx context.Context, categoryID, suggestionID string) (domain.ChatMessage, error) {
	for _, cat := range s.suggestions {
		if cat.ID != categoryID {
			continue
		}
		for _, item := range cat.Items {
			if item.ID == suggestionID {
				return s.Submit(ctx, item.Text)
			}
		}
	}
	return domain.ChatMessage{}, ErrUnknownSuggestion
}

// appendLocked stamps and appends a message. Timestamps never go backwards
// even if the clock does.
func (s *Session) appendLocked(role domain.Role, content string) domain.ChatMessage {
	ts := s.now()
	if ts.Before(s.lastStamp) {
		ts = s.lastStamp
	}
	s.lastStamp = ts
	msg := domain.ChatMessage{
		ID:        s.newID(),
		Role:      role,
		Content:   content,
		Timestamp: ts,
	}
	s.transcript = append(s.transcript, msg)
	return msg
}
