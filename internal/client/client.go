// Package client talks to a running site API over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"portfolio-site/internal/domain"
)

const correlationHeader = "X-Correlation-Id"

// APIError is a non-2xx answer from the site API.
type APIError struct {
	StatusCode int
	Message    string
	Fields     map[string]string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("client: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("client: status %d: %s", e.StatusCode, e.Message)
}

type ChatReply struct {
	Message string `json:"message"`
	HTML    string `json:"html"`
	Source  string `json:"source"`
}

type ContactResult struct {
	Message     string               `json:"message"`
	PreviewURLs *domain.PreviewLinks `json:"previewUrls,omitempty"`
	// Error is set when delivery failed but was reported as simulated.
	Error string `json:"error,omitempty"`
}

type SuggestionCategory struct {
	ID    string              `json:"id"`
	Title string              `json:"title"`
	Icon  string              `json:"icon"`
	Items []domain.Suggestion `json:"items"`
}

type errorBody struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("client: base url must not be empty")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("client: invalid base url: %w", err)
	}
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) Chat(ctx context.Context, message string) (ChatReply, error) {
	var out ChatReply
	err := c.do(ctx, http.MethodPost, "/api/chat", map[string]string{"message": message}, &out)
	return out, err
}

// Respond lets a widget session use a remote server as its responder.
func (c *Client) Respond(ctx context.Context, message string) (string, error) {
	reply, err := c.Chat(ctx, message)
	if err != nil {
		return "", err
	}
	return reply.Message, nil
}

func (c *Client) Contact(ctx context.Context, in domain.ContactSubmission) (ContactResult, error) {
	var out ContactResult
	err := c.do(ctx, http.MethodPost, "/api/contact", in, &out)
	return out, err
}

func (c *Client) Suggestions(ctx context.Context) ([]SuggestionCategory, error) {
	var out []SuggestionCategory
	err := c.do(ctx, http.MethodGet, "/api/suggestions", nil, &out)
	return out, err
}

func (c *Client) Profile(ctx context.Context) (domain.ProfileFacts, error) {
	var out domain.ProfileFacts
	err := c.do(ctx, http.MethodGet, "/api/profile", nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("client: marshal request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("client: create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(correlationHeader, uuid.NewString())

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer func() { _ = res.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("client: read response body: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: res.StatusCode}
		var eb errorBody
		if json.Unmarshal(raw, &eb) == nil {
			apiErr.Message = eb.Error
			if apiErr.Message == "" {
				apiErr.Message = eb.Message
			}
			apiErr.Fields = eb.Fields
		}
		return apiErr
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("client: decode response: %w", err)
	}
	return nil
}
