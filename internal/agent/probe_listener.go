package agent

import (
	"context"
	"fmt"
	"net"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// newProbeServer starts every loop as NOT_SERVING until it delivers a sample.
func newProbeServer() *health.Server {
	hs := health.NewServer()
	hs.SetServingStatus(memoryService, healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(nodeService, healthpb.HealthCheckResponse_NOT_SERVING)
	return hs
}

// runProbeListener serves the standard gRPC health protocol until ctx ends.
func (a *Agent) runProbeListener(ctx context.Context) error {
	addr := strings.TrimSpace(a.cfg.ProbeListenAddr)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen probe endpoint %s: %w", addr, err)
	}
	return a.serveProbe(ctx, ln)
}

func (a *Agent) serveProbe(ctx context.Context, ln net.Listener) error {
	srv := grpc.NewServer()
	healthpb.RegisterHealthServer(srv, a.probe)

	a.logger.Info("probe endpoint listening", "addr", ln.Addr().String())

	go func() {
		<-ctx.Done()
		srv.GracefulStop()
	}()

	if err := srv.Serve(ln); err != nil {
		return fmt.Errorf("serve probe endpoint %s: %w", ln.Addr(), err)
	}
	return nil
}
