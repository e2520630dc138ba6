package grpc_server

import (
	"context"
	"net"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const ServiceName = "coursemarket.Catalog"

// HealthServer exposes the standard gRPC health service. Status follows the
// result of check, which the service wires to a database ping.
type HealthServer struct {
	srv    *grpc.Server
	health *health.Server
	check  func(ctx context.Context) error
	log    zerolog.Logger
}

func NewHealthServer(check func(ctx context.Context) error, log zerolog.Logger) *HealthServer {
	s := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	reflection.Register(s)

	return &HealthServer{srv: s, health: hs, check: check, log: log}
}

// Refresh runs the check once and publishes the result for the overall
// server and for ServiceName.
func (h *HealthServer) Refresh(ctx context.Context) {
	status := healthpb.HealthCheckResponse_SERVING
	if err := h.check(ctx); err != nil {
		h.log.Warn().Err(err).Msg("health check failed")
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.health.SetServingStatus("", status)
	h.health.SetServingStatus(ServiceName, status)
}

// Watch refreshes the status every interval until ctx is done.
func (h *HealthServer) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		h.Refresh(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (h *HealthServer) Serve(lis net.Listener) error {
	return h.srv.Serve(lis)
}

// Stop marks everything NOT_SERVING and drains in-flight calls.
func (h *HealthServer) Stop() {
	h.health.Shutdown()
	h.srv.GracefulStop()
}
