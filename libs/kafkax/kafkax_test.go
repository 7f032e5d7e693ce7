package kafkax

import (
	"context"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func TestSplitBrokersAndTopic(t *testing.T) {
	got := SplitBrokers(" kafka-1:9092, ,kafka-2:9092 ")
	if len(got) != 2 || got[0] != "kafka-1:9092" || got[1] != "kafka-2:9092" {
		t.Fatalf("unexpected brokers %v", got)
	}
	if Topic("", "booking.appointment.confirmed.v1") != "booking.appointment.confirmed.v1" {
		t.Fatal("empty prefix should keep event type")
	}
	if Topic("salon.", "x.v1") != "salon.x.v1" {
		t.Fatalf("unexpected topic %q", Topic("salon.", "x.v1"))
	}
}

func TestEventMetaHeaders(t *testing.T) {
	at := time.Date(2024, 7, 17, 10, 0, 0, 0, time.UTC)
	headers := EventMeta{EventID: "evt-1", EventType: "booking.appointment.requested.v1", OccurredAt: at}.Headers()
	if HeaderValue(headers, "event_id") != "evt-1" {
		t.Fatal("missing event_id")
	}
	if HeaderValue(headers, "event_type") != "booking.appointment.requested.v1" {
		t.Fatal("missing event_type")
	}
	if HeaderValue(headers, "occurred_at") != "2024-07-17T10:00:00Z" {
		t.Fatalf("unexpected occurred_at %q", HeaderValue(headers, "occurred_at"))
	}
}

func TestTraceHeadersRoundTrip(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	headers := InjectTraceHeaders(ctx, []kafka.Header{{Key: "event_id", Value: []byte("1")}})
	if HeaderValue(headers, "traceparent") == "" {
		t.Fatal("expected traceparent header")
	}

	out := ExtractTraceContext(context.Background(), kafka.Message{Headers: headers})
	if got := trace.SpanContextFromContext(out).TraceID(); got != traceID {
		t.Fatalf("expected trace id %s, got %s", traceID, got)
	}
}
