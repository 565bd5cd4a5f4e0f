package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"portfolio-site/internal/domain"
	"portfolio-site/internal/mail"
)

func testProfile() domain.ProfileFacts {
	return domain.ProfileFacts{
		Name:       "Gloire Mbonyi",
		Title:      "Full Stack Developer",
		Skills:     []string{"Go", "TypeScript"},
		Experience: []domain.Experience{{Title: "Engineer", Company: "GKK"}},
		Education:  []domain.Education{{Degree: "BSc Software Engineering", Institution: "AUCA"}},
		Contact: domain.ContactInfo{
			Email:    "owner@example.com",
			Phone:    "+250700000000",
			LinkedIn: "https://linkedin.com/in/gloire",
			GitHub:   "https://github.com/gloire",
		},
	}
}

type fakeTransport struct {
	mu      sync.Mutex
	openErr error
	// failOn is the 1-based send attempt that fails, 0 for none.
	failOn  int
	preview bool
	opens   int
	closes  int
	sent    []mail.Message
}

func (f *fakeTransport) Open(context.Context) (mail.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opens++
	if f.openErr != nil {
		return nil, f.openErr
	}
	return fakeSession{f: f}, nil
}

func (f *fakeTransport) attempts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeSession struct {
	f *fakeTransport
}

func (s fakeSession) Send(_ context.Context, msg mail.Message) (mail.Receipt, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	s.f.sent = append(s.f.sent, msg)
	n := len(s.f.sent)
	if s.f.failOn == n {
		return mail.Receipt{}, errors.New("smtp: 554 rejected")
	}
	r := mail.Receipt{ID: fmt.Sprintf("id-%d", n)}
	if s.f.preview {
		r.PreviewURL = fmt.Sprintf("http://preview/%d", n)
	}
	return r, nil
}

func (s fakeSession) Close() error {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	s.f.closes++
	return nil
}

type fakeGenerator struct {
	mu      sync.Mutex
	text    string
	err     error
	block   bool
	prompts []string
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.mu.Lock()
	g.prompts = append(g.prompts, prompt)
	text, err, block := g.text, g.err, g.block
	g.mu.Unlock()
	if block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return text, err
}

func (g *fakeGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prompts)
}
