package main

import (
	"context"
	"net/http"
	"time"

	"github.com/md-rashed-zaman/salonbook/libs/config"
	"github.com/md-rashed-zaman/salonbook/libs/httpx"
	"github.com/md-rashed-zaman/salonbook/libs/metrics"
	otelx "github.com/md-rashed-zaman/salonbook/libs/otel"
	"github.com/md-rashed-zaman/salonbook/libs/runtime"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/booking"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/catalog"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/grpcserver"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/handlers"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/lifecycle"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/notify"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/stats"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/store"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	config.LoadDotEnv()

	service := config.String("SERVICE_NAME", "booking-service")
	port, err := config.Port("PORT", "8083")
	if err != nil {
		panic(err)
	}
	grpcPort, err := config.Port("GRPC_PORT", "9083")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	provider := model.Provider{
		ID:   config.String("PROVIDER_ID", "provider1"),
		Name: config.String("PROVIDER_NAME", "Salon"),
	}
	cat := catalog.Default()

	var seed []model.Appointment
	if config.Bool("SEED_DEMO", false) {
		seed = cat.DemoAppointments(provider.ID)
	}
	appointments, err := store.New(seed...)
	if err != nil {
		panic(err)
	}
	logger.Info("appointment store ready", "provider_id", provider.ID, "seeded", len(seed))

	reg := metrics.NewRegistry()
	bookingMetrics := metrics.NewBookingMetrics(reg)
	bookingMetrics.SetAppointmentCounts(stats.Compute(appointments.List(), time.Now()).ByStatus())

	rdb := newRedisClient()
	if rdb != nil {
		defer rdb.Close()
	}

	sink, sinkReady, stopSink, err := newSink(logger)
	if err != nil {
		panic(err)
	}
	sink = notify.WithMetrics(sink, bookingMetrics)

	transitions := lifecycle.NewHandler(appointments, sink, bookingMetrics, logger, time.Now)
	intake := booking.NewIntake(
		booking.NewBuilder(cat, provider.ID, time.Now),
		appointments,
		sink,
		newKeeper(rdb),
		bookingMetrics,
		logger,
	)

	router := handlers.NewRouter(handlers.Routes{
		Public:       handlers.NewPublicHandler(cat, intake, logger),
		Appointments: handlers.NewAppointmentHandler(appointments, transitions, bookingMetrics, logger, time.Now),
		PublicLimit: httpx.RateLimit(newLimiter(rdb), logger, httpx.RateLimitOptions{
			FailOpen:          true,
			TrustForwardedFor: config.Bool("TRUST_FORWARDED_FOR", false),
		}),
	})

	mux := runtime.NewBaseMuxWithReady(sinkReady, redisReadyCheck(rdb))
	mux.Handle("/metrics", metrics.Handler(reg))
	mux.Handle("/api/", router)

	httpHandler := httpx.Chain(mux,
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins: config.List("CORS_ALLOWED_ORIGINS", ""),
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", handlers.IdempotencyKeyHeader, httpx.RequestIDHeader},
			ExposedHeaders: []string{httpx.RequestIDHeader, "Retry-After", "Idempotent-Replay"},
			MaxAge:         10 * time.Minute,
		}),
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithRecover(logger),
		httpx.WithBodyLimit(int64(config.Int("REQUEST_BODY_LIMIT_BYTES", 64<<10))),
		httpx.WithTimeout(config.Seconds("REQUEST_TIMEOUT_SECONDS", 15*time.Second)),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "booking")

	grpcSrv := grpcserver.New(logger)
	if err := grpcSrv.Listen(ctx, ":"+grpcPort); err != nil {
		logger.Error("grpc listen failed", "err", err)
		panic(err)
	}

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	runtime.ServeHTTP(ctx, srv, logger, 10*time.Second)

	// HTTP handlers have returned, so no more events are produced.
	grpcSrv.Wait()
	stopSink()
	logger.Info("notification sink stopped", "sink", sink.Name())
}
