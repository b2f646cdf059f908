package tracer

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"

	"searchtool/internal/infra/config"
)

func TestSetupDisabled(t *testing.T) {
	shutdown, err := Setup(context.Background(), config.TracerConfig{Enabled: false, Exporter: "stdout"})
	require.NoError(t, err)
	defer shutdown(context.Background())

	_, ok := otel.GetTracerProvider().(noop.TracerProvider)
	assert.True(t, ok, "expected noop provider, got %T", otel.GetTracerProvider())
}

func TestSetupEmptyExporterIsNoop(t *testing.T) {
	shutdown, err := Setup(context.Background(), config.TracerConfig{Enabled: true})
	require.NoError(t, err)
	defer shutdown(context.Background())

	_, ok := otel.GetTracerProvider().(noop.TracerProvider)
	assert.True(t, ok)
}

func TestSetupStdoutWritesToStderr(t *testing.T) {
	var buf bytes.Buffer
	orig := stderr
	stderr = &buf
	defer func() { stderr = orig }()

	shutdown, err := Setup(context.Background(), config.TracerConfig{Enabled: true, Exporter: "stdout"})
	require.NoError(t, err)

	_, span := StartSpan(context.Background(), "search.web")
	span.End()
	require.NoError(t, shutdown(context.Background()))

	assert.Contains(t, buf.String(), "search.web")
}

func TestSetupUnsupportedExporter(t *testing.T) {
	_, err := Setup(context.Background(), config.TracerConfig{Enabled: true, Exporter: "invalid"})
	assert.Error(t, err)
}

func TestSpanHelpers(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(noop.NewTracerProvider())

	_, okSpan := StartSpan(context.Background(), "ok")
	okSpan.SetAttributes(StringAttr("search.variant", "news"), IntAttr("search.attempts", 2), BoolAttr("search.truncated", false))
	SetOK(okSpan)
	okSpan.End()

	_, errSpan := StartSpan(context.Background(), "failed")
	RecordError(errSpan, errors.New("boom"))
	errSpan.End()

	ended := rec.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, codes.Ok, ended[0].Status().Code)
	assert.Len(t, ended[0].Attributes(), 3)
	assert.Equal(t, codes.Error, ended[1].Status().Code)
	assert.Equal(t, "boom", ended[1].Status().Description)
}
