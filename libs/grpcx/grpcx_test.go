package grpcx

import (
	"context"
	"io"
	"log/slog"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/md-rashed-zaman/salonbook/libs/httpx"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
)

func TestServerOptionsEchoRequestID(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer lis.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := grpc.NewServer(ServerOptions(logger)...)
	healthpb.RegisterHealthServer(srv, health.NewServer())
	go func() {
		_ = srv.Serve(lis)
	}()
	defer srv.Stop()

	conn, err := Dial(lis.Addr().String(), DialOptions{})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	ctx = httpx.ContextWithRequestID(ctx, "req-42")

	var header metadata.MD
	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{}, grpc.Header(&header))
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("unexpected status %s", resp.GetStatus())
	}
	if got := header.Get(RequestIDMetadataKey); len(got) != 1 || got[0] != "req-42" {
		t.Fatalf("expected echoed request id, got %v", got)
	}
}

func TestIncomingRequestID(t *testing.T) {
	md := metadata.Pairs(RequestIDMetadataKey, "  ", RequestIDMetadataKey, "req-7")
	if got := incomingRequestID(metadata.NewIncomingContext(context.Background(), md)); got != "req-7" {
		t.Fatalf("expected first non-blank id, got %q", got)
	}
	long := metadata.Pairs(RequestIDMetadataKey, strings.Repeat("x", 200))
	if got := incomingRequestID(metadata.NewIncomingContext(context.Background(), long)); got != "" {
		t.Fatalf("oversized id should be ignored, got %q", got)
	}
	if got := incomingRequestID(context.Background()); got != "" {
		t.Fatalf("expected no id without metadata, got %q", got)
	}
}
