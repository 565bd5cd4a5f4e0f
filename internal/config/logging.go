package config

import (
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
)

// SetupLogger returns a text logger on stderr. When logFile is set, records
// are also written as JSON to that file. The returned cleanup closes the file.
func SetupLogger(logFile string, level slog.Level) (*slog.Logger, func() error) {
	stderrHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	if logFile == "" {
		return slog.New(stderrHandler), func() error { return nil }
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		slog.Error("failed to open log file, using stderr only", "err", err, "file", logFile)
		return slog.New(stderrHandler), func() error { return nil }
	}

	return newFanoutLogger(os.Stderr, file, level), file.Close
}

// newFanoutLogger writes every record as text to console and as JSON to sink.
func newFanoutLogger(console, sink io.Writer, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	return slog.New(slogmulti.Fanout(
		slog.NewTextHandler(console, opts),
		slog.NewJSONHandler(sink, opts),
	))
}

// NewLambdaLogger logs JSON to stdout, where the Lambda runtime collects it.
func NewLambdaLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
