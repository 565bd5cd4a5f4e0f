// Package profile resolves the ProfileFacts document the site and the chat
// relay are built from.
package profile

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"portfolio-site/internal/domain"
	"portfolio-site/internal/repository"
)

//go:embed profile.yaml
var defaultYAML []byte

// Source names where a resolved profile came from.
type Source string

const (
	SourceDynamoDB Source = "dynamodb"
	SourceFile     Source = "file"
	SourceEmbedded Source = "embedded"
)

// Default returns the profile compiled into the binary.
func Default() (domain.ProfileFacts, error) {
	return Parse(defaultYAML)
}

// Parse decodes a YAML profile document. Unknown keys are rejected so typos
// in hand-edited files fail loudly.
func Parse(data []byte) (domain.ProfileFacts, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var p domain.ProfileFacts
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.ProfileFacts{}, errors.New("profile: document is empty")
		}
		return domain.ProfileFacts{}, fmt.Errorf("profile: parse yaml: %w", err)
	}
	if err := Validate(p); err != nil {
		return domain.ProfileFacts{}, err
	}
	return p, nil
}

// LoadFile reads and parses a YAML profile from disk.
func LoadFile(path string) (domain.ProfileFacts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.ProfileFacts{}, fmt.Errorf("profile: read %s: %w", path, err)
	}
	return Parse(data)
}

// Marshal renders p as YAML.
func Marshal(p domain.ProfileFacts) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return nil, fmt.Errorf("profile: encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("profile: encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// Validate checks the fields the relay and the contact flow depend on.
func Validate(p domain.ProfileFacts) error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("profile: name is required")
	}
	if strings.TrimSpace(p.Contact.Email) == "" {
		return errors.New("profile: contact email is required")
	}
	seen := make(map[string]bool, len(p.Suggestions))
	for i, cat := range p.Suggestions {
		if cat.ID == "" {
			return fmt.Errorf("profile: suggestion category %d has no id", i)
		}
		if seen[cat.ID] {
			return fmt.Errorf("profile: duplicate suggestion category %q", cat.ID)
		}
		seen[cat.ID] = true
		for _, item := range cat.Items {
			if strings.TrimSpace(item.Text) == "" {
				return fmt.Errorf("profile: suggestion %q in category %q has no text", item.ID, cat.ID)
			}
		}
	}
	return nil
}

// Loader picks the profile source at startup: DynamoDB when a store is
// configured, then a YAML file, then the embedded default.
type Loader struct {
	Store     repository.ProfileReader
	ProfileID string
	Path      string
}

// Load resolves the profile. A store that has no document for ProfileID falls
// through to the next source; any other store error is returned.
func (l Loader) Load(ctx context.Context) (domain.ProfileFacts, Source, error) {
	if l.Store != nil {
		p, err := l.Store.GetProfile(ctx, l.ProfileID)
		switch {
		case err == nil:
			if err := Validate(p); err != nil {
				return domain.ProfileFacts{}, "", fmt.Errorf("profile %q from dynamodb: %w", l.ProfileID, err)
			}
			return p, SourceDynamoDB, nil
		case errors.Is(err, repository.ErrProfileNotFound):
			slog.Warn("profile not found in store, falling back", "profile_id", l.ProfileID)
		default:
			return domain.ProfileFacts{}, "", err
		}
	}

	if l.Path != "" {
		p, err := LoadFile(l.Path)
		if err != nil {
			return domain.ProfileFacts{}, "", err
		}
		return p, SourceFile, nil
	}

	p, err := Default()
	if err != nil {
		return domain.ProfileFacts{}, "", err
	}
	return p, SourceEmbedded, nil
}
