package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type staticKey struct {
	key string
	err error
}

func (s staticKey) Resolve(context.Context) (string, error) { return s.key, s.err }

func TestNewClient_Defaults(t *testing.T) {
	_, err := NewClient(nil)
	require.Error(t, err)

	c, err := NewClient(staticKey{key: "k"})
	require.NoError(t, err)
	require.Equal(t, "gemini-2.0-flash", c.Model())
	require.Equal(t, "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent", c.endpoint())

	c, err = NewClient(staticKey{key: "k"}, WithModel("models/gemini-1.5-flash"), WithBaseURL("http://localhost:9000/"))
	require.NoError(t, err)
	require.Equal(t, "http://localhost:9000/v1beta/models/gemini-1.5-flash:generateContent", c.endpoint())
}

func TestClient_Generate_HappyPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1beta/models/gemini-2.0-flash:generateContent", r.URL.Path)
		require.Equal(t, "key-123", r.Header.Get("X-goog-api-key"))

		var in generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		require.Len(t, in.Contents, 1)
		require.Len(t, in.Contents[0].Parts, 1)
		require.Equal(t, "What stack do you use?", in.Contents[0].Parts[0].Text)

		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Go and TypeScript."}]},"finishReason":"STOP"}]}`))
	}))
	defer srv.Close()

	c, err := NewClient(staticKey{key: "key-123"}, WithBaseURL(srv.URL))
	require.NoError(t, err)

	out, err := c.Generate(context.Background(), "What stack do you use?")
	require.NoError(t, err)
	require.Equal(t, "Go and TypeScript.", out)
}

func TestClient_Generate_MissingTextIsEmpty(t *testing.T) {
	bodies := []string{
		`{}`,
		`{"candidates":[]}`,
		`{"candidates":[{"content":{"parts":[]}}]}`,
	}
	for _, body := range bodies {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		}))
		c, err := NewClient(staticKey{key: "k"}, WithBaseURL(srv.URL))
		require.NoError(t, err)

		out, err := c.Generate(context.Background(), "hi")
		srv.Close()
		require.NoError(t, err, body)
		require.Empty(t, out, body)
	}
}

func TestClient_Generate_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"message":"API key not valid"}}`))
	}))
	defer srv.Close()

	c, err := NewClient(staticKey{key: "bad"}, WithBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = c.Generate(context.Background(), "hi")
	var statusErr *HTTPStatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusForbidden, statusErr.HTTPStatusCode())
	require.Contains(t, statusErr.Body, "API key not valid")
}

func TestClient_Generate_KeyUnavailable(t *testing.T) {
	c, err := NewClient(staticKey{err: errors.New("no key")})
	require.NoError(t, err)

	_, err = c.Generate(context.Background(), "hi")
	require.ErrorContains(t, err, "resolve api key")
}

func TestClient_Generate_ContextDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c, err := NewClient(staticKey{key: "k"}, WithBaseURL(srv.URL))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.Generate(ctx, "hi")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
