package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc/health"

	"github.com/peterxing/exo/internal/backend"
	"github.com/peterxing/exo/internal/clock"
	"github.com/peterxing/exo/internal/collector"
	"github.com/peterxing/exo/internal/config"
	"github.com/peterxing/exo/internal/gpu"
	"github.com/peterxing/exo/internal/libvirt"
	"github.com/peterxing/exo/internal/stream"
	"github.com/peterxing/exo/internal/system"
	"github.com/peterxing/exo/internal/telemetry"
)

type Agent struct {
	cfg       config.Config
	logger    *slog.Logger
	conn      *libvirt.ConnManager
	memory    *collector.MemoryCollector
	node      *collector.NodeCollector
	scheduler *collector.Scheduler
	sink      *healthSink
	health    *HealthStatus
	probe     *health.Server
	backend   func() (*backend.Handle, error)
}

// New wires the collectors for the current host and writes profiles to out.
func New(cfg config.Config, logger *slog.Logger, out io.Writer) (*Agent, error) {
	if out == nil {
		return nil, errors.New("nil profile writer")
	}
	platform := system.PlatformID()

	var memReader collector.MemoryReader = system.NewMemoryReader()
	var conn *libvirt.ConnManager
	if cfg.LibvirtURI != "" {
		conn = libvirt.NewConnManager(cfg.LibvirtURI, cfg.ReconnectInterval, cfg.MaxReconnectJitter, logger)
		memReader = libvirt.NewMemoryReader(conn, system.NewMemoryReader())
	}

	generic := telemetry.NewGenericSampler(system.NewPSUtil(), gpu.NewProbe(logger), logger)
	native := telemetry.NewMacmonSampler(cfg.MacmonPath)
	source := telemetry.NewSource(platform, native, generic)

	memory := collector.NewMemoryCollector(memReader, config.MemoryOverride, logger)
	node := collector.NewNodeCollector(source, system.NetworkLister{}, system.NewHostIdentity(), memory)

	h := NewHealthStatus()
	a := &Agent{
		cfg:     cfg,
		logger:  logger,
		conn:    conn,
		memory:  memory,
		node:    node,
		sink:    &healthSink{sink: stream.NewWriterSink(out, cfg.AgentID, clock.Real()), health: h},
		health:  h,
		probe:   newProbeServer(),
		backend: backend.NewLoader(cfg.BackendLibrary, backend.WithLogger(logger)).Load,
	}
	a.scheduler = collector.NewScheduler(logger, memory, node, collector.Options{
		MemoryInterval:  cfg.MemoryPollInterval,
		NodeInterval:    cfg.NodePollInterval,
		NodeTickTimeout: cfg.NodeTickTimeout,
		Clock:           clock.Real(),
		OnNodeExhausted: a.onNodeExhausted,
	})
	logger.Info("telemetry source selected", "platform", platform, "native", platform == telemetry.NativePlatform)
	return a, nil
}

func (a *Agent) Run(ctx context.Context) error {
	a.logger.Info("starting exo telemetry agent", "agent_id", a.cfg.AgentID, "version", a.cfg.AgentVersion)
	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	runErrCh := make(chan error, 1)
	go func() {
		runErrCh <- a.run(runCtx)
	}()

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var runErr error
	select {
	case runErr = <-runErrCh:
	case sig := <-sigCh:
		a.logger.Info("shutdown signal received, starting graceful shutdown", "signal", sig.String(), "timeout", a.cfg.ShutdownTimeout)
		cancelRun()

		graceTimer := time.NewTimer(a.cfg.ShutdownTimeout)
		defer graceTimer.Stop()

		select {
		case runErr = <-runErrCh:
		case sig2 := <-sigCh:
			a.logger.Warn("second signal received, forcing immediate shutdown", "signal", sig2.String())
			runErr = context.Canceled
		case <-graceTimer.C:
			a.logger.Warn("graceful shutdown timeout reached, forcing shutdown", "timeout", a.cfg.ShutdownTimeout)
			runErr = context.DeadlineExceeded
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancelShutdown()
	a.shutdown(shutdownCtx)

	if runErr != nil && !errors.Is(runErr, context.Canceled) && !errors.Is(runErr, context.DeadlineExceeded) {
		return runErr
	}
	a.logger.Info("exo telemetry agent stopped")
	return nil
}

// Once writes a single memory profile and a single node profile.
func (a *Agent) Once(ctx context.Context) error {
	defer a.shutdown(context.Background())

	mem, err := a.memory.Collect(ctx)
	if err != nil {
		return fmt.Errorf("memory profile: %w", err)
	}
	if err := a.sink.memory(ctx, mem); err != nil {
		return err
	}

	tickCtx, cancel := context.WithTimeout(ctx, a.cfg.NodeTickTimeout)
	defer cancel()
	node, err := a.node.Collect(tickCtx)
	if err != nil {
		return fmt.Errorf("node profile: %w", err)
	}
	return a.sink.node(tickCtx, node)
}

// CheckBackend resolves the capability backend once and reports the result.
func (a *Agent) CheckBackend() error {
	h, err := a.backend()
	if err != nil {
		a.health.SetBackendAvailable(false)
		return err
	}
	a.health.SetBackendAvailable(true)
	a.logger.Info("capability backend available", "library", h.Library())
	return nil
}

func (a *Agent) onNodeExhausted() {
	a.health.MarkNodeStopped()
	if a.cfg.NotifyNodeExhausted {
		a.logger.Warn("node metrics source exhausted, node profiles stopped")
	}
}

// BuildLogger writes to w (stderr in production; stdout carries profiles).
func BuildLogger(cfg config.Config, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	hOpts := &slog.HandlerOptions{Level: level}
	if cfg.LogJSON {
		return slog.New(slog.NewJSONHandler(w, hOpts))
	}
	return slog.New(slog.NewTextHandler(w, hOpts))
}
