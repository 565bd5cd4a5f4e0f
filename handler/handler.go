// Package handler exposes the site API. The same routes are served to API
// Gateway through Handle and to plain HTTP through NewRouter.
package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"portfolio-site/internal/domain"
	"portfolio-site/internal/mail"
	"portfolio-site/internal/usecase"
	"portfolio-site/internal/widget"
)

const (
	correlationHeader = "X-Correlation-Id"
	maxBodyBytes      = 64 << 10

	msgSent          = "Message sent successfully!"
	msgSimulated     = "Message recorded successfully (email delivery simulated in development)"
	msgSendFailed    = "Failed to send message. Please try again."
	msgInvalidForm   = "Please correct the highlighted fields."
	msgInvalidBody   = "Invalid request body"
	msgNotAllowed    = "Method not allowed"
	msgNotFound      = "Not found"
	msgChatFailed    = "An error occurred while processing your request. Please try again later."
	msgEmptyChat     = "Message is required"
	msgChatTooLong   = "Message is too long"
	contentTypeJSON  = "application/json"
	contentTypeHTML  = "text/html; charset=utf-8"
	contentTypePlain = "text/plain; charset=utf-8"
)

// ContactSubmitter sends contact form submissions.
type ContactSubmitter interface {
	Submit(ctx context.Context, in domain.ContactSubmission) (domain.DispatchResult, error)
}

// ChatReplier answers chat widget messages.
type ChatReplier interface {
	Reply(ctx context.Context, in usecase.ReplyInput) (usecase.ReplyOutput, error)
}

// OutboxReader looks up sandbox deliveries.
type OutboxReader interface {
	Get(id string) (mail.StoredMessage, bool)
}

type Deps struct {
	Contact ContactSubmitter
	Chat    ChatReplier
	Profile domain.ProfileFacts
	// Outbox is nil unless mail goes to the sandbox.
	Outbox OutboxReader
}

type Handler struct {
	contact ContactSubmitter
	chat    ChatReplier
	profile domain.ProfileFacts
	outbox  OutboxReader
}

func NewHandler(d Deps) (*Handler, error) {
	if d.Contact == nil {
		return nil, errors.New("handler: contact service must not be nil")
	}
	if d.Chat == nil {
		return nil, errors.New("handler: chat service must not be nil")
	}
	return &Handler{
		contact: d.Contact,
		chat:    d.Chat,
		profile: d.Profile,
		outbox:  d.Outbox,
	}, nil
}

type request struct {
	method  string
	path    string
	headers http.Header
	body    []byte
	params  map[string]string
}

type response struct {
	status      int
	contentType string
	body        []byte
}

type routeFunc func(ctx context.Context, req request) response

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

type contactResponse struct {
	Message     string               `json:"message"`
	PreviewURLs *domain.PreviewLinks `json:"previewUrls,omitempty"`
	Error       string               `json:"error,omitempty"`
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Message string `json:"message"`
	HTML    string `json:"html"`
	Source  string `json:"source"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

type suggestionCategory struct {
	ID    string              `json:"id"`
	Title string              `json:"title"`
	Icon  string              `json:"icon"`
	Items []domain.Suggestion `json:"items"`
}

// Handle serves an API Gateway proxy event.
func (h *Handler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	headers := make(http.Header, len(event.Headers))
	for k, v := range event.Headers {
		headers.Set(k, v)
	}

	body := []byte(event.Body)
	fn, params := h.match(event.Path)
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(event.Body)
		if err != nil {
			fn = rejectBody(http.StatusBadRequest)
		}
		body = decoded
	}
	if len(body) > maxBodyBytes {
		fn = rejectBody(http.StatusRequestEntityTooLarge)
	}

	corrID, resp := h.serve(ctx, request{
		method:  event.HTTPMethod,
		path:    event.Path,
		headers: headers,
		body:    body,
		params:  params,
	}, fn)

	return events.APIGatewayProxyResponse{
		StatusCode: resp.status,
		Headers: map[string]string{
			"Content-Type":    resp.contentType,
			correlationHeader: corrID,
		},
		Body: string(resp.body),
	}, nil
}

func rejectBody(status int) routeFunc {
	return func(context.Context, request) response {
		return jsonResponse(status, errorResponse{Error: msgInvalidBody})
	}
}

func (h *Handler) match(path string) (routeFunc, map[string]string) {
	if path != "/" {
		path = strings.TrimRight(path, "/")
	}
	switch path {
	case "/api/contact":
		return h.handleContact, nil
	case "/api/chat":
		return h.handleChat, nil
	case "/api/profile":
		return h.handleProfile, nil
	case "/api/suggestions":
		return h.handleSuggestions, nil
	case "/health":
		return h.handleHealth, nil
	}
	if id, ok := strings.CutPrefix(path, "/api/outbox/"); ok && id != "" && !strings.Contains(id, "/") {
		return h.handleOutbox, map[string]string{"id": id}
	}
	return h.handleNotFound, nil
}

// serve runs fn with a correlation ID attached to the log context and returns
// that ID with the response.
func (h *Handler) serve(ctx context.Context, req request, fn routeFunc) (string, response) {
	corrID := strings.TrimSpace(req.headers.Get(correlationHeader))
	if corrID == "" {
		corrID = uuid.NewString()
	}
	start := time.Now()

	resp := fn(ctx, req)

	level := slog.LevelInfo
	if resp.status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	slog.Log(ctx, level, "request handled",
		"method", req.method,
		"path", req.path,
		"status", resp.status,
		"correlation_id", corrID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return corrID, resp
}

func (h *Handler) handleContact(ctx context.Context, req request) response {
	if req.method != http.MethodPost {
		return jsonResponse(http.StatusMethodNotAllowed, errorResponse{Error: msgNotAllowed})
	}
	var in contactRequest
	if err := json.Unmarshal(req.body, &in); err != nil {
		return jsonResponse(http.StatusBadRequest, errorResponse{Error: msgInvalidBody})
	}

	result, err := h.contact.Submit(ctx, domain.ContactSubmission{
		Name:    in.Name,
		Email:   in.Email,
		Phone:   in.Phone,
		Subject: in.Subject,
		Message: in.Message,
	})
	if err != nil {
		var ucErr *usecase.Error
		if errors.As(err, &ucErr) && ucErr.Code == usecase.ErrorInvalidInput {
			return jsonResponse(http.StatusBadRequest, errorResponse{Error: msgInvalidForm, Fields: ucErr.Fields})
		}
		slog.ErrorContext(ctx, "contact submission failed", "err", err)
		return jsonResponse(http.StatusInternalServerError, errorResponse{Error: msgSendFailed})
	}
	if !result.Success {
		return jsonResponse(http.StatusInternalServerError, errorResponse{Error: msgSendFailed})
	}
	if result.Simulated {
		return jsonResponse(http.StatusOK, contactResponse{Message: msgSimulated, Error: result.ErrorMessage})
	}
	return jsonResponse(http.StatusOK, contactResponse{Message: msgSent, PreviewURLs: result.PreviewLinks})
}

func (h *Handler) handleChat(ctx context.Context, req request) response {
	if req.method != http.MethodPost {
		return jsonResponse(http.StatusMethodNotAllowed, messageResponse{Message: msgNotAllowed})
	}
	var in chatRequest
	if err := json.Unmarshal(req.body, &in); err != nil {
		return jsonResponse(http.StatusBadRequest, messageResponse{Message: msgInvalidBody})
	}

	out, err := h.chat.Reply(ctx, usecase.ReplyInput{Message: in.Message})
	if err != nil {
		var ucErr *usecase.Error
		if errors.As(err, &ucErr) && ucErr.Code == usecase.ErrorInvalidInput {
			msg := msgEmptyChat
			if ucErr.Reason == "message_too_long" {
				msg = msgChatTooLong
			}
			return jsonResponse(http.StatusBadRequest, messageResponse{Message: msg})
		}
		slog.ErrorContext(ctx, "chat reply failed", "err", err)
		return jsonResponse(http.StatusInternalServerError, messageResponse{Message: msgChatFailed})
	}
	return jsonResponse(http.StatusOK, chatResponse{
		Message: out.Message,
		HTML:    widget.RenderHTML(out.Message),
		Source:  string(out.Source),
	})
}

func (h *Handler) handleProfile(_ context.Context, req request) response {
	if req.method != http.MethodGet {
		return jsonResponse(http.StatusMethodNotAllowed, errorResponse{Error: msgNotAllowed})
	}
	return jsonResponse(http.StatusOK, h.profile)
}

func (h *Handler) handleSuggestions(_ context.Context, req request) response {
	if req.method != http.MethodGet {
		return jsonResponse(http.StatusMethodNotAllowed, errorResponse{Error: msgNotAllowed})
	}
	out := make([]suggestionCategory, 0, len(h.profile.Suggestions))
	for _, cat := range h.profile.Suggestions {
		out = append(out, suggestionCategory{
			ID:    cat.ID,
			Title: cat.Title,
			Icon:  widget.Icon(cat.ID),
			Items: cat.Items,
		})
	}
	return jsonResponse(http.StatusOK, out)
}

func (h *Handler) handleOutbox(_ context.Context, req request) response {
	if req.method != http.MethodGet {
		return jsonResponse(http.StatusMethodNotAllowed, errorResponse{Error: msgNotAllowed})
	}
	if h.outbox == nil {
		return jsonResponse(http.StatusNotFound, errorResponse{Error: msgNotFound})
	}
	msg, ok := h.outbox.Get(req.params["id"])
	if !ok {
		return jsonResponse(http.StatusNotFound, errorResponse{Error: msgNotFound})
	}
	return response{status: http.StatusOK, contentType: contentTypeHTML, body: []byte(msg.Message.HTML)}
}

func (h *Handler) handleHealth(context.Context, request) response {
	return response{status: http.StatusOK, contentType: contentTypePlain, body: []byte("ok")}
}

func (h *Handler) handleNotFound(context.Context, request) response {
	return jsonResponse(http.StatusNotFound, errorResponse{Error: msgNotFound})
}

func jsonResponse(status int, v any) response {
	body, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to encode response", "err", err)
		return response{
			status:      http.StatusInternalServerError,
			contentType: contentTypeJSON,
			body:        []byte(`{"error":"internal error"}`),
		}
	}
	return response{status: status, contentType: contentTypeJSON, body: body}
}
