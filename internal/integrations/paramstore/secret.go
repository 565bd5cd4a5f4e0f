package paramstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrSecretUnavailable means neither an inline value nor a parameter source
// was configured for a secret.
var ErrSecretUnavailable = errors.New("paramstore: secret not configured")

// tokenPayload is the JSON shape some parameters use: {"token":"..."}.
type tokenPayload struct {
	Token string `json:"token"`
}

// Secret resolves a credential from an inline value (usually an environment
// variable) or, failing that, from a named SSM parameter. Successful lookups
// are cached for the process lifetime; failures are retried on the next call.
type Secret struct {
	value  string
	getter Getter
	name   string

	mu     sync.Mutex
	cached string
}

func NewSecret(value string, getter Getter, name string) *Secret {
	return &Secret{
		value:  strings.TrimSpace(value),
		getter: getter,
		name:   strings.TrimSpace(name),
	}
}

func (s *Secret) Resolve(ctx context.Context) (string, error) {
	if s.value != "" {
		return s.value, nil
	}
	if s.getter == nil || s.name == "" {
		return "", ErrSecretUnavailable
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cached != "" {
		return s.cached, nil
	}
	raw, err := s.getter.GetParameter(ctx, s.name)
	if err != nil {
		return "", fmt.Errorf("paramstore: resolve secret %q: %w", s.name, err)
	}
	v, err := decodeSecret(raw)
	if err != nil {
		return "", fmt.Errorf("paramstore: resolve secret %q: %w", s.name, err)
	}
	s.cached = v
	return v, nil
}

// decodeSecret accepts either a bare value or a {"token":"..."} document.
func decodeSecret(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "{") {
		var tp tokenPayload
		if err := json.Unmarshal([]byte(raw), &tp); err != nil {
			return "", fmt.Errorf("unmarshal token payload: %w", err)
		}
		raw = strings.TrimSpace(tp.Token)
	}
	if raw == "" {
		return "", errors.New("secret value is empty")
	}
	return raw, nil
}
