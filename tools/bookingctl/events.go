package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/md-rashed-zaman/salonbook/libs/config"
	"github.com/md-rashed-zaman/salonbook/libs/kafkax"
	otelx "github.com/md-rashed-zaman/salonbook/libs/otel"
	"github.com/segmentio/kafka-go"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace"
)

// eventTypes are the booking service topics before the deployment prefix.
var eventTypes = []string{
	"booking.appointment.requested.v1",
	"booking.appointment.confirmed.v1",
	"booking.appointment.rejected.v1",
}

type publishedEvent struct {
	Type          string    `json:"type"`
	AppointmentID string    `json:"appointmentId"`
	OccurredAt    time.Time `json:"occurredAt"`
	Message       struct {
		Title string `json:"title"`
	} `json:"message"`
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

func newEventsCmd() *cobra.Command {
	var (
		brokers, prefix, group string
		limit                  int
	)
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Follow notification events published to Kafka",
		Long: `Follow the events the booking service publishes when NOTIFY_SINK=kafka.
Each line shows the event, the appointment and the trace of the request
that produced it.

Example:
  bookingctl events --brokers localhost:9092 --limit 10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			addrs := kafkax.SplitBrokers(brokers)
			if len(addrs) == 0 {
				return errors.New("no kafka brokers: set --brokers or KAFKA_BROKERS")
			}
			if group == "" {
				return errors.New("--group must not be empty")
			}
			// installs the propagator used to read trace headers
			if _, err := otelx.Setup(cmd.Context(), otelx.Config{ServiceName: "bookingctl"}); err != nil {
				return err
			}
			topics := make([]string, 0, len(eventTypes))
			for _, t := range eventTypes {
				topics = append(topics, kafkax.Topic(prefix, t))
			}
			r := kafka.NewReader(kafka.ReaderConfig{
				Brokers:     addrs,
				GroupID:     group,
				GroupTopics: topics,
			})
			defer r.Close()
			return followEvents(cmd.Context(), r, cmd.OutOrStdout(), limit)
		},
	}
	f := cmd.Flags()
	f.StringVar(&brokers, "brokers", config.String("KAFKA_BROKERS", ""), "comma separated kafka brokers")
	f.StringVar(&prefix, "topic-prefix", config.String("KAFKA_TOPIC_PREFIX", ""), "topic prefix used by the service")
	f.StringVar(&group, "group", "bookingctl", "consumer group id")
	f.IntVar(&limit, "limit", 0, "stop after this many events (0 follows until interrupted)")
	return cmd
}

func followEvents(ctx context.Context, r messageReader, out io.Writer, limit int) error {
	for n := 0; limit <= 0 || n < limit; n++ {
		msg, err := r.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("read event: %w", err)
		}
		fmt.Fprintln(out, describeEvent(ctx, msg))
	}
	return nil
}

func describeEvent(ctx context.Context, msg kafka.Message) string {
	traceID := "-"
	if sc := trace.SpanContextFromContext(kafkax.ExtractTraceContext(ctx, msg)); sc.IsValid() {
		traceID = sc.TraceID().String()
	}

	var ev publishedEvent
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		return fmt.Sprintf("%s\tundecodable payload: %v\ttrace=%s", msg.Topic, err, traceID)
	}
	if ev.Type == "" {
		ev.Type = kafkax.HeaderValue(msg.Headers, "event_type")
	}
	return fmt.Sprintf("%s\t%s\t%s\t%s\ttrace=%s",
		ev.OccurredAt.UTC().Format(time.RFC3339), ev.Type, ev.AppointmentID, ev.Message.Title, traceID)
}
