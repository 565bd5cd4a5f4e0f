package gemini

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
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	defaultModel   = "gemini-2.0-flash"
)

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
}

type secretResolver interface {
	Resolve(ctx context.Context) (string, error)
}

// HTTPStatusError reports a non-2xx answer from the generateContent endpoint.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("gemini: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Client calls the Gemini generateContent API with a single text prompt.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	apiKey     secretResolver
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithModel accepts both "gemini-2.0-flash" and "models/gemini-2.0-flash".
func WithModel(model string) Option {
	return func(c *Client) {
		model = strings.TrimPrefix(strings.TrimSpace(model), "models/")
		if model != "" {
			c.model = model
		}
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func NewClient(apiKey secretResolver, opts ...Option) (*Client, error) {
	if apiKey == nil {
		return nil, errors.New("gemini: api key source must not be nil")
	}
	c := &Client{
		baseURL:    defaultBaseURL,
		model:      defaultModel,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiKey:     apiKey,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) Model() string { return c.model }

func (c *Client) endpoint() string {
	return strings.TrimRight(c.baseURL, "/") + "/v1beta/models/" + url.PathEscape(c.model) + ":generateContent"
}

// Generate returns the text of the first part of the first candidate. A
// response without that field yields "" and no error.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	apiKey, err := c.apiKey.Resolve(ctx)
	if err != nil {
		return "", fmt.Errorf("gemini: resolve api key: %w", err)
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("gemini: marshal request: %w", err)
	}

	endpoint := c.endpoint()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("gemini: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-goog-api-key", apiKey)

	raw, err := c.doJSONRequest(req, endpoint)
	if err != nil {
		return "", fmt.Errorf("gemini: request failed: %w", err)
	}

	var payload generateResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", fmt.Errorf("gemini: decode response: %w", err)
	}
	if len(payload.Candidates) == 0 || len(payload.Candidates[0].Content.Parts) == 0 {
		return "", nil
	}
	return payload.Candidates[0].Content.Parts[0].Text, nil
}

func (c *Client) doJSONRequest(req *http.Request, endpoint string) ([]byte, error) {
	httpClient := c.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	res, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, &HTTPStatusError{StatusCode: res.StatusCode, URL: endpoint, Body: string(buf)}
	}

	buf, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return buf, nil
}
