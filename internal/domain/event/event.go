package event

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/propagation"
)

// Event is a domain fact published through the outbox. The stream name is the watermill topic.
type Event interface {
	GetEventHeader() Header
	GetStreamName() string
}

type Header struct {
	ID        uuid.UUID `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func (h Header) GetEventHeader() Header {
	return h
}

func NewEventHeader() Header {
	return Header{
		ID:        uuid.New(),
		Timestamp: time.Now().UTC(),
	}
}

// Otel carries the W3C trace context and baggage of the request that raised the event,
// so handlers continue the same trace.
type Otel struct {
	Carrier map[string]string `json:"otel_carrier,omitempty"`
}

var propagator = propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{})

func (o *Otel) Propagate(ctx context.Context) {
	if o.Carrier == nil {
		o.Carrier = make(map[string]string)
	}
	propagator.Inject(ctx, propagation.MapCarrier(o.Carrier))
}

func (o *Otel) Extract() context.Context {
	return propagator.Extract(context.Background(), propagation.MapCarrier(o.Carrier))
}

// Recorder collects events raised by an aggregate until the repository publishes them.
type Recorder struct {
	events []Event
}

func (r *Recorder) AddEvent(e Event) {
	if r == nil {
		return
	}
	r.events = append(r.events, e)
}

func (r *Recorder) GetUncommittedEvents() []Event {
	if r == nil {
		return nil
	}
	return r.events
}

func (r *Recorder) MarkEventsAsCommitted() {
	if r == nil {
		return
	}
	r.events = nil
}
