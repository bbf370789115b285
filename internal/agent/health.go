package agent

import (
	"context"
	"sync/atomic"
	"time"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/peterxing/exo/internal/model"
	"github.com/peterxing/exo/internal/stream"
)

const (
	memoryService = "memory"
	nodeService   = "node"
)

type HealthStatus struct {
	backendAvailable   atomic.Bool
	nodeStopped        atomic.Bool
	lastMemorySampleAt atomic.Int64
	lastNodeSampleAt   atomic.Int64
}

func NewHealthStatus() *HealthStatus {
	return &HealthStatus{}
}

func (h *HealthStatus) SetBackendAvailable(ok bool) {
	h.backendAvailable.Store(ok)
}

func (h *HealthStatus) MarkNodeStopped() {
	h.nodeStopped.Store(true)
}

func (h *HealthStatus) MarkMemorySample(ts time.Time) {
	h.lastMemorySampleAt.Store(ts.UnixNano())
}

func (h *HealthStatus) MarkNodeSample(ts time.Time) {
	h.lastNodeSampleAt.Store(ts.UnixNano())
}

func (h *HealthStatus) Snapshot() map[string]any {
	out := map[string]any{
		"backend_available": h.backendAvailable.Load(),
		"node_stopped":      h.nodeStopped.Load(),
	}
	if v := h.lastMemorySampleAt.Load(); v > 0 {
		out["last_memory_sample_at"] = time.Unix(0, v).UTC()
	}
	if v := h.lastNodeSampleAt.Load(); v > 0 {
		out["last_node_sample_at"] = time.Unix(0, v).UTC()
	}
	return out
}

// ServingStatus reports SERVING for a loop whose last sample is younger than
// staleAfter. A node loop that stopped is NOT_SERVING regardless.
func (h *HealthStatus) ServingStatus(service string, now time.Time, staleAfter time.Duration) healthpb.HealthCheckResponse_ServingStatus {
	var last int64
	switch service {
	case memoryService:
		last = h.lastMemorySampleAt.Load()
	case nodeService:
		if h.nodeStopped.Load() {
			return healthpb.HealthCheckResponse_NOT_SERVING
		}
		last = h.lastNodeSampleAt.Load()
	default:
		return healthpb.HealthCheckResponse_SERVICE_UNKNOWN
	}
	if last == 0 || now.Sub(time.Unix(0, last)) > staleAfter {
		return healthpb.HealthCheckResponse_NOT_SERVING
	}
	return healthpb.HealthCheckResponse_SERVING
}

// healthSink records successful deliveries before handing profiles on.
type healthSink struct {
	sink   stream.Sink
	health *HealthStatus
}

func (s *healthSink) memory(ctx context.Context, p model.MemoryPerformanceProfile) error {
	if err := s.sink.SendMemoryProfile(ctx, p); err != nil {
		return err
	}
	s.health.MarkMemorySample(time.Now())
	return nil
}

func (s *healthSink) node(ctx context.Context, p model.NodePerformanceProfile) error {
	if err := s.sink.SendNodeProfile(ctx, p); err != nil {
		return err
	}
	s.health.MarkNodeSample(time.Now())
	return nil
}

func (s *healthSink) Close(ctx context.Context) error {
	return s.sink.Close(ctx)
}
