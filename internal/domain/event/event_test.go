package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

type testEvent struct {
	Header
	Otel
}

func (testEvent) GetStreamName() string { return "events_test" }

func TestRecorder(t *testing.T) {
	t.Parallel()

	var r Recorder
	r.AddEvent(&testEvent{Header: NewEventHeader()})
	r.AddEvent(&testEvent{Header: NewEventHeader()})
	require.Len(t, r.GetUncommittedEvents(), 2)

	r.MarkEventsAsCommitted()
	assert.Empty(t, r.GetUncommittedEvents())

	var nilRecorder *Recorder
	nilRecorder.AddEvent(&testEvent{})
	assert.Nil(t, nilRecorder.GetUncommittedEvents())
}

func TestOtel_PropagateExtract(t *testing.T) {
	t.Parallel()

	tp := sdktrace.NewTracerProvider()
	ctx, span := tp.Tracer("test").Start(t.Context(), "producer")
	defer span.End()

	var o Otel
	o.Propagate(ctx)
	require.NotEmpty(t, o.Carrier["traceparent"])

	got := trace.SpanContextFromContext(o.Extract())
	assert.Equal(t, span.SpanContext().TraceID(), got.TraceID())
	assert.True(t, got.IsRemote())
}
