package grpcserver

import (
	"context"
	"log/slog"
	"net"

	"github.com/md-rashed-zaman/salonbook/libs/grpcx"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health-check service name clients query for the booking service.
const ServiceName = "salonbook.booking.v1.BookingService"

type Server struct {
	srv     *grpc.Server
	health  *health.Server
	logger  *slog.Logger
	stopped chan struct{}
}

func New(logger *slog.Logger) *Server {
	srv := grpc.NewServer(grpcx.ServerOptions(logger)...)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	return &Server{srv: srv, health: hs, logger: logger, stopped: make(chan struct{})}
}

// SetServing flips the reported status of the booking service.
func (s *Server) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(ServiceName, status)
}

// Start serves on lis until ctx is done. Health turns NOT_SERVING before the
// server drains.
func (s *Server) Start(ctx context.Context, lis net.Listener) {
	go func() {
		s.logger.Info("grpc server starting", "addr", lis.Addr().String())
		if err := s.srv.Serve(lis); err != nil {
			s.logger.Error("grpc server error", "err", err)
		}
	}()

	go func() {
		<-ctx.Done()
		s.health.Shutdown()
		s.srv.GracefulStop()
		s.logger.Info("grpc server stopped")
		close(s.stopped)
	}()
}

// Wait blocks until the server started by Start has stopped.
func (s *Server) Wait() {
	<-s.stopped
}

// Listen opens a TCP listener on addr and starts the server.
func (s *Server) Listen(ctx context.Context, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.Start(ctx, lis)
	return nil
}
