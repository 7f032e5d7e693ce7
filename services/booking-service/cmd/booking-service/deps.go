package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/md-rashed-zaman/salonbook/libs/config"
	"github.com/md-rashed-zaman/salonbook/libs/httpx"
	"github.com/md-rashed-zaman/salonbook/libs/kafkax"
	"github.com/md-rashed-zaman/salonbook/libs/runtime"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/idempotency"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/notify"
	"github.com/redis/go-redis/v9"
)

// newSink builds the notification sink named by NOTIFY_SINK (log, kafka, amqp).
// The returned stop func flushes and closes the sink; call it once nothing
// produces events anymore.
func newSink(logger *slog.Logger) (notify.Sink, runtime.ReadyCheck, func(), error) {
	switch kind := strings.ToLower(config.String("NOTIFY_SINK", "log")); kind {
	case "log":
		return notify.NewLogSink(logger), runtime.ReadyCheck{}, func() {}, nil
	case "kafka":
		brokers := config.String("KAFKA_BROKERS", "")
		sink, err := notify.NewKafkaSink(logger, notify.KafkaConfig{
			Brokers:     brokers,
			TopicPrefix: config.String("KAFKA_TOPIC_PREFIX", ""),
		})
		if err != nil {
			return nil, runtime.ReadyCheck{}, nil, err
		}
		runCtx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			defer close(done)
			sink.Run(runCtx)
		}()
		stop := func() {
			cancel()
			<-done
		}
		return sink, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(brokers)}, stop, nil
	case "amqp":
		url, err := config.RequiredString("AMQP_URL")
		if err != nil {
			return nil, runtime.ReadyCheck{}, nil, err
		}
		sink, err := notify.DialAMQP(url, config.String("AMQP_EXCHANGE", notify.DefaultExchange), logger)
		if err != nil {
			return nil, runtime.ReadyCheck{}, nil, err
		}
		stop := func() {
			if err := sink.Close(); err != nil {
				logger.Warn("amqp sink close failed", "err", err)
			}
		}
		return sink, runtime.ReadyCheck{}, stop, nil
	default:
		return nil, runtime.ReadyCheck{}, nil, fmt.Errorf("unknown NOTIFY_SINK %q", kind)
	}
}

// newRedisClient returns nil when REDIS_ADDR is unset.
func newRedisClient() *redis.Client {
	addr := config.String("REDIS_ADDR", "")
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: config.String("REDIS_PASSWORD", ""),
		DB:       config.Int("REDIS_DB", 0),
	})
}

func redisReadyCheck(rdb *redis.Client) runtime.ReadyCheck {
	if rdb == nil {
		return runtime.ReadyCheck{}
	}
	return runtime.ReadyCheck{Name: "redis", Check: func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}}
}

func newKeeper(rdb *redis.Client) idempotency.Keeper {
	ttl := config.Seconds("IDEMPOTENCY_TTL_SECONDS", 24*time.Hour)
	if rdb == nil {
		return idempotency.NewMemoryKeeper(ttl)
	}
	return idempotency.NewRedisKeeper(rdb, ttl, "salonbook:idem:")
}

func newLimiter(rdb *redis.Client) httpx.Limiter {
	limit := config.Int("RATE_LIMIT_PER_MINUTE", 30)
	if rdb == nil {
		return httpx.NewRateLimiter(limit, time.Minute)
	}
	return httpx.NewRedisRateLimiter(rdb, limit, time.Minute, "salonbook:rl")
}
