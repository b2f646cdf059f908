package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"searchtool/internal/infra/config"
)

// New builds the process logger from cfg. The returned closer releases the
// output file, if any, and must be called on shutdown.
func New(cfg config.LoggerConfig) (*slog.Logger, func() error, error) {
	w, closer, err := openOutput(cfg.Output)
	if err != nil {
		return nil, nil, fmt.Errorf("open log output: %w", err)
	}
	return slog.New(newHandler(w, cfg)), closer, nil
}

// Nop returns a logger that drops everything.
func Nop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// Component tags every record of l with the emitting component.
func Component(l *slog.Logger, name string) *slog.Logger {
	return l.With("component", name)
}

func newHandler(w io.Writer, cfg config.LoggerConfig) slog.Handler {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// openOutput resolves "stdout", "stderr" (the default) or a file path.
// The MCP server speaks on stdout, so serve mode must keep logs off it.
func openOutput(output string) (io.Writer, func() error, error) {
	noop := func() error { return nil }

	switch strings.ToLower(output) {
	case "stdout":
		return os.Stdout, noop, nil
	case "stderr", "":
		return os.Stderr, noop, nil
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
		if err != nil {
			return nil, nil, err
		}
		return f, f.Close, nil
	}
}
