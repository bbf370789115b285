package agent

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

const healthInterval = 5 * time.Second

func (a *Agent) run(ctx context.Context) error {
	if err := a.CheckBackend(); err != nil {
		a.logger.Info("continuing without capability backend", "error", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.scheduler.Run(gctx, a.sink.memory, a.sink.node)
	})
	g.Go(func() error {
		return a.runHealthLoop(gctx)
	})
	if a.cfg.ProbeListenAddr != "" {
		// The probe is optional; losing it must not stop telemetry.
		g.Go(func() error {
			if err := a.runProbeListener(gctx); err != nil {
				a.logger.Error("probe endpoint unavailable, telemetry continues", "error", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (a *Agent) runHealthLoop(ctx context.Context) error {
	t := time.NewTicker(healthInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-t.C:
			a.updateProbe(now)
			a.logger.Log(ctx, slog.LevelDebug, "agent health", "snapshot", a.health.Snapshot())
		}
	}
}

// updateProbe publishes loop freshness to the gRPC health service.
func (a *Agent) updateProbe(now time.Time) {
	memStale := 3*a.cfg.MemoryPollInterval + healthInterval
	nodeStale := 2*a.cfg.NodePollInterval + a.cfg.NodeTickTimeout + healthInterval
	a.probe.SetServingStatus(memoryService, a.health.ServingStatus(memoryService, now, memStale))
	a.probe.SetServingStatus(nodeService, a.health.ServingStatus(nodeService, now, nodeStale))
}

func (a *Agent) shutdown(ctx context.Context) {
	a.probe.Shutdown()
	if err := a.sink.Close(ctx); err != nil {
		a.logger.Warn("profile sink close failed", "error", err)
	}
	if a.conn != nil {
		if err := a.conn.Close(); err != nil {
			a.logger.Warn("libvirt close failed", "error", err)
		}
	}
}
