package handler

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type RouterConfig struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
}

// NewRouter serves the API over plain HTTP for local runs and the CLI server.
func NewRouter(h *Handler, cfg RouterConfig) *chi.Mux {
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", correlationHeader},
		ExposedHeaders: []string{correlationHeader},
		MaxAge:         300,
	}))

	r.HandleFunc("/health", h.httpFunc(h.handleHealth))
	r.Route("/api", func(r chi.Router) {
		r.HandleFunc("/contact", h.httpFunc(h.handleContact))
		r.HandleFunc("/chat", h.httpFunc(h.handleChat))
		r.HandleFunc("/profile", h.httpFunc(h.handleProfile))
		r.HandleFunc("/suggestions", h.httpFunc(h.handleSuggestions))
		r.HandleFunc("/outbox/{id}", h.httpFunc(h.handleOutbox))
	})
	r.NotFound(h.httpFunc(h.handleNotFound))
	return r
}

func (h *Handler) httpFunc(fn routeFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		route := fn
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			status := http.StatusBadRequest
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				status = http.StatusRequestEntityTooLarge
			}
			route = rejectBody(status)
		}

		corrID, resp := h.serve(r.Context(), request{
			method:  r.Method,
			path:    r.URL.Path,
			headers: r.Header,
			body:    body,
			params:  map[string]string{"id": chi.URLParam(r, "id")},
		}, route)

		w.Header().Set("Content-Type", resp.contentType)
		w.Header().Set(correlationHeader, corrID)
		w.WriteHeader(resp.status)
		_, _ = w.Write(resp.body)
	}
}
