package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"portfolio-site/internal/domain"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL + "/")
	require.NoError(t, err)
	return c
}

func TestNew_Validation(t *testing.T) {
	_, err := New(" ")
	require.Error(t, err)
	_, err = New("not a url")
	require.ErrorContains(t, err, "invalid base url")
}

func TestChat(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/chat", r.URL.Path)
		require.NotEmpty(t, r.Header.Get("X-Correlation-Id"))
		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		require.Equal(t, "hello", in["message"])
		_, _ = w.Write([]byte(`{"message":"hi **there**","html":"hi <strong>there</strong>","source":"model"}`))
	})

	reply, err := c.Chat(context.Background(), "hello")
	require.NoError(t, err)
	require.Equal(t, "hi **there**", reply.Message)
	require.Equal(t, "model", reply.Source)

	text, err := c.Respond(context.Background(), "hello")
	require.NoError(t, err)
	require.Equal(t, "hi **there**", text)
}

func TestChat_APIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"Message is required"}`))
	})

	_, err := c.Respond(context.Background(), "")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	require.Equal(t, "Message is required", apiErr.Message)
}

func TestContact(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/contact", r.URL.Path)
		var in domain.ContactSubmission
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		require.Equal(t, "Ada", in.Name)
		_, _ = w.Write([]byte(`{"message":"Message sent successfully!","previewUrls":{"owner":"o","sender":"s"}}`))
	})

	res, err := c.Contact(context.Background(), domain.ContactSubmission{Name: "Ada", Email: "ada@example.com", Subject: "Hi", Message: "Hello"})
	require.NoError(t, err)
	require.Equal(t, "Message sent successfully!", res.Message)
	require.Equal(t, "o", res.PreviewURLs.Owner)
}

func TestContact_ValidationFields(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"Please correct the highlighted fields.","fields":{"email":"Email is invalid"}}`))
	})

	_, err := c.Contact(context.Background(), domain.ContactSubmission{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "Email is invalid", apiErr.Fields["email"])
	require.Contains(t, apiErr.Error(), "highlighted")
}

func TestSuggestionsAndProfile(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/suggestions":
			_, _ = w.Write([]byte(`[{"id":"technical","title":"Technical Skills","icon":"code","items":[{"id":"skills","text":"Skills?"}]}]`))
		case "/api/profile":
			_, _ = w.Write([]byte(`{"name":"Gloire Mbonyi","contact":{"email":"g@x.io"}}`))
		default:
			http.NotFound(w, r)
		}
	})

	cats, err := c.Suggestions(context.Background())
	require.NoError(t, err)
	require.Len(t, cats, 1)
	require.Equal(t, "code", cats[0].Icon)

	p, err := c.Profile(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Gloire Mbonyi", p.Name)
}

func TestDo_NonJSONError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	})

	_, err := c.Profile(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	require.Equal(t, "client: unexpected status 502", apiErr.Error())
}

func TestDo_DecodeError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{"))
	})

	_, err := c.Chat(context.Background(), "hi")
	require.ErrorContains(t, err, "decode response")
}
