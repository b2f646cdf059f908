package tool

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

// nopLogger returns a logger that discards output.
func nopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type queryParams struct {
	Query string `json:"query"`
}

func TestExecute_String(t *testing.T) {
	result, err := Execute(context.Background(), "tool.test", nopLogger(), json.RawMessage(`{"query":"go"}`),
		func(_ context.Context, _ trace.Span, p queryParams) (string, error) {
			return "searched " + p.Query, nil
		},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError || result.Content != "searched go" {
		t.Errorf("result = %+v", result)
	}
}

func TestExecute_EmptyTextIsNotAnError(t *testing.T) {
	result, err := Execute(context.Background(), "tool.test", nopLogger(), json.RawMessage(`{}`),
		func(_ context.Context, _ trace.Span, _ queryParams) (string, error) {
			return "", nil
		},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError || result.Content != "" {
		t.Errorf("result = %+v", result)
	}
}

func TestExecute_InvalidJSON(t *testing.T) {
	called := false
	result, err := Execute(context.Background(), "tool.test", nopLogger(), json.RawMessage(`not json`),
		func(_ context.Context, _ trace.Span, _ queryParams) (string, error) {
			called = true
			return "", nil
		},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called {
		t.Error("handler should not run on invalid params")
	}
	if !result.IsError || !strings.HasPrefix(result.Content, "invalid params:") {
		t.Errorf("result = %+v", result)
	}
}

func TestExecute_HandlerError(t *testing.T) {
	result, err := Execute(context.Background(), "tool.test", nopLogger(), json.RawMessage(`{}`),
		func(_ context.Context, _ trace.Span, _ queryParams) (string, error) {
			return "", errors.New("'query' is required")
		},
	)
	if err != nil {
		t.Fatalf("Execute should not return a Go error: %v", err)
	}
	if !result.IsError || result.Content != "'query' is required" {
		t.Errorf("result = %+v", result)
	}
}
