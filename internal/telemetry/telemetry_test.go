package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/mrsobakin/seabattle/internal/telemetry"
)

func TestTracer(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	_, span := telemetry.Tracer("lobby").Start(context.Background(), "create")
	span.End()

	ended := recorder.Ended()
	if assert.Len(t, ended, 1) {
		assert.Equal(t, "create", ended[0].Name())
		assert.Equal(t, "seabattle/lobby", ended[0].InstrumentationScope().Name)
	}
}

func TestNoopTracer(t *testing.T) {
	_, span := telemetry.NoopTracer().Start(context.Background(), "create")
	defer span.End()

	assert.False(t, span.SpanContext().IsValid())
}
