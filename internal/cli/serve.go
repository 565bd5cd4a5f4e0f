package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"portfolio-site/handler"
	"portfolio-site/internal/app"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the site API over HTTP",
	Long: `Run the site API on a local HTTP server.

Routes:
  POST /api/contact       send the contact form
  POST /api/chat          ask the assistant
  GET  /api/profile       profile document
  GET  /api/suggestions   chat suggestion categories
  GET  /api/outbox/{id}   sandbox email preview
  GET  /health`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "listen port (default from PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}

	port := cfg.Port
	if servePort > 0 {
		port = servePort
	}
	server := &http.Server{
		Addr: fmt.Sprintf(":%d", port),
		Handler: handler.NewRouter(a.Handler, handler.RouterConfig{
			AllowedOrigins: cfg.AllowedOrigins,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", server.Addr, "env", cfg.Env, "sandbox", a.Outbox != nil)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutdown signal received, draining connections")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("serve: shutdown: %w", err)
	}
	return nil
}
