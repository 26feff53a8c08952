package otelx

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracePropagator is implemented by events that can capture the current trace context.
type TracePropagator interface {
	Propagate(ctx context.Context)
}

// TraceExtractor is implemented by events that carry the trace context of the request that produced them.
type TraceExtractor interface {
	Extract() context.Context
}

// ContextFromExtractor returns a context linked to the producer's trace, or Background.
func ContextFromExtractor(extractor TraceExtractor) context.Context {
	if extractor == nil {
		return context.Background()
	}
	return extractor.Extract()
}

func RecordSpanError(span trace.Span, err error, desc string) {
	if span == nil || err == nil {
		return
	}
	if desc == "" {
		desc = err.Error()
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, desc)
}

// SetSpanAttrs converts the common scalar, slice and Stringer types. Anything else is formatted with %v.
func SetSpanAttrs(span trace.Span, attrs map[string]any) {
	if span == nil || len(attrs) == 0 {
		return
	}

	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	kvs := make([]attribute.KeyValue, 0, len(attrs))
	for _, k := range keys {
		kvs = append(kvs, ToAttribute(k, attrs[k]))
	}
	span.SetAttributes(kvs...)
}

func ToAttribute(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case nil:
		return attribute.String(key, "<nil>")
	case string:
		return attribute.String(key, v)
	case bool:
		return attribute.Bool(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	case []string:
		return attribute.StringSlice(key, v)
	case []int:
		return attribute.IntSlice(key, v)
	case time.Time:
		return attribute.String(key, v.UTC().Format(time.RFC3339Nano))
	case *time.Time:
		if v == nil {
			return attribute.String(key, "<nil>")
		}
		return attribute.String(key, v.UTC().Format(time.RFC3339Nano))
	case time.Duration:
		return attribute.String(key, v.String())
	case fmt.Stringer:
		return attribute.String(key, v.String())
	case error:
		return attribute.String(key, v.Error())
	default:
		return attribute.String(key, fmt.Sprintf("%v", v))
	}
}
