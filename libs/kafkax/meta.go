package kafkax

import (
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// EventMeta is the canonical metadata carried on Kafka message headers.
type EventMeta struct {
	EventID    string
	EventType  string
	OccurredAt time.Time
}

// Headers renders meta as message headers.
func (m EventMeta) Headers() []kafka.Header {
	headers := []kafka.Header{
		{Key: "event_id", Value: []byte(m.EventID)},
		{Key: "event_type", Value: []byte(m.EventType)},
	}
	if !m.OccurredAt.IsZero() {
		headers = append(headers, kafka.Header{Key: "occurred_at", Value: []byte(m.OccurredAt.UTC().Format(time.RFC3339))})
	}
	return headers
}

func HeaderValue(headers []kafka.Header, key string) string {
	for _, h := range headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func SplitBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// Topic joins a deployment prefix and an event type into a topic name.
func Topic(prefix, eventType string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), ".")
	if prefix == "" {
		return eventType
	}
	return prefix + "." + eventType
}
