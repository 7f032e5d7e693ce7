package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/md-rashed-zaman/salonbook/libs/kafkax"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

type fakeReader struct {
	msgs []kafka.Message
	err  error
}

func (r *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.msgs) == 0 {
		if r.err != nil {
			return kafka.Message{}, r.err
		}
		return kafka.Message{}, context.Canceled
	}
	msg := r.msgs[0]
	r.msgs = r.msgs[1:]
	return msg, nil
}

func tracedMessage(t *testing.T) (kafka.Message, trace.TraceID) {
	t.Helper()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))
	meta := kafkax.EventMeta{EventID: "ev-1", EventType: eventTypes[1]}
	return kafka.Message{
		Topic:   kafkax.Topic("salon", eventTypes[1]),
		Key:     []byte("a1"),
		Headers: kafkax.InjectTraceHeaders(ctx, meta.Headers()),
		Value: []byte(`{"eventId":"ev-1","type":"booking.appointment.confirmed.v1","appointmentId":"a1",` +
			`"occurredAt":"2024-07-17T09:00:00Z","message":{"title":"Afspraak bevestigd"}}`),
	}, traceID
}

func TestDescribeEventRestoresTrace(t *testing.T) {
	msg, traceID := tracedMessage(t)
	line := describeEvent(context.Background(), msg)
	assert.Equal(t, "2024-07-17T09:00:00Z\tbooking.appointment.confirmed.v1\ta1\tAfspraak bevestigd\ttrace="+traceID.String(), line)
}

func TestDescribeEventWithoutTrace(t *testing.T) {
	line := describeEvent(context.Background(), kafka.Message{
		Topic:   "booking.appointment.rejected.v1",
		Headers: []kafka.Header{{Key: "event_type", Value: []byte("booking.appointment.rejected.v1")}},
		Value:   []byte(`{"appointmentId":"a2","occurredAt":"2024-07-17T09:00:00Z"}`),
	})
	assert.Contains(t, line, "booking.appointment.rejected.v1\ta2")
	assert.True(t, strings.HasSuffix(line, "trace=-"))

	line = describeEvent(context.Background(), kafka.Message{Topic: "t", Value: []byte("not json")})
	assert.Contains(t, line, "undecodable payload")
}

func TestFollowEvents(t *testing.T) {
	msg, _ := tracedMessage(t)

	var out bytes.Buffer
	r := &fakeReader{msgs: []kafka.Message{msg, msg, msg}}
	require.NoError(t, followEvents(context.Background(), r, &out, 2))
	assert.Equal(t, 2, strings.Count(out.String(), "\n"))
	assert.Len(t, r.msgs, 1)

	out.Reset()
	require.NoError(t, followEvents(context.Background(), &fakeReader{}, &out, 0), "cancellation ends the follow")

	err := followEvents(context.Background(), &fakeReader{err: errors.New("broker gone")}, &out, 0)
	assert.ErrorContains(t, err, "broker gone")
}

func TestEventsRequiresBrokers(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "")
	_, err := run(t, "events")
	assert.ErrorContains(t, err, "no kafka brokers")
}
