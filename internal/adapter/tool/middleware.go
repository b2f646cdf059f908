package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"searchtool/internal/domain"
	"searchtool/internal/infra/tracer"
)

// Execute is the standard tool pipeline: parse params -> start span -> run handler -> wrap result.
//
// The handler receives the parsed params and an active span. Its text becomes
// the result content; an error becomes an error result and is logged.
func Execute[P any](
	ctx context.Context,
	spanName string,
	logger *slog.Logger,
	rawParams json.RawMessage,
	handler func(ctx context.Context, span trace.Span, params P) (string, error),
) (*domain.ToolResult, error) {
	ctx, span := tracer.StartSpan(ctx, spanName,
		trace.WithAttributes(tracer.StringAttr("tool.name", spanName)),
	)
	defer span.End()

	var p P
	if err := json.Unmarshal(rawParams, &p); err != nil {
		tracer.RecordError(span, err)
		return &domain.ToolResult{IsError: true, Content: fmt.Sprintf("invalid params: %v", err)}, nil
	}

	text, err := handler(ctx, span, p)
	if err != nil {
		tracer.RecordError(span, err)
		logger.Warn(spanName+" failed", "error", err)
		return &domain.ToolResult{IsError: true, Content: err.Error()}, nil
	}

	tracer.SetOK(span)
	return &domain.ToolResult{Content: text}, nil
}
