// Package collector drives the memory and node polling loops and hands each
// profile to a sink.
package collector

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/peterxing/exo/internal/clock"
	"github.com/peterxing/exo/internal/model"
	"github.com/peterxing/exo/internal/telemetry"
)

type MemorySink func(ctx context.Context, p model.MemoryPerformanceProfile) error

type NodeSink func(ctx context.Context, p model.NodePerformanceProfile) error

type Options struct {
	MemoryInterval  time.Duration
	NodeInterval    time.Duration
	NodeTickTimeout time.Duration
	Clock           clock.Clock
	// OnNodeExhausted, when set, is called once after the node loop stops
	// because the metrics source ran dry.
	OnNodeExhausted func()
}

type Scheduler struct {
	logger *slog.Logger
	memory *MemoryCollector
	node   *NodeCollector
	clock  clock.Clock

	memoryInterval  time.Duration
	nodeInterval    time.Duration
	nodeTickTimeout time.Duration
	onNodeExhausted func()
}

func NewScheduler(logger *slog.Logger, memory *MemoryCollector, node *NodeCollector, opts Options) *Scheduler {
	if opts.MemoryInterval <= 0 {
		opts.MemoryInterval = 500 * time.Millisecond
	}
	if opts.NodeInterval <= 0 {
		opts.NodeInterval = time.Second
	}
	if opts.NodeTickTimeout <= 0 {
		opts.NodeTickTimeout = 30 * time.Second
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	return &Scheduler{
		logger:          logger,
		memory:          memory,
		node:            node,
		clock:           opts.Clock,
		memoryInterval:  opts.MemoryInterval,
		nodeInterval:    opts.NodeInterval,
		nodeTickTimeout: opts.NodeTickTimeout,
		onNodeExhausted: opts.OnNodeExhausted,
	}
}

// Run drives both loops until ctx is cancelled. The node loop may finish
// early when its source runs dry; the memory loop keeps going.
func (s *Scheduler) Run(ctx context.Context, memorySink MemorySink, nodeSink NodeSink) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.RunMemoryLoop(gctx, memorySink)
	})
	g.Go(func() error {
		return s.RunNodeLoop(gctx, nodeSink)
	})
	return g.Wait()
}

// RunMemoryLoop publishes one memory profile per interval. Tick errors are
// logged and never stop the loop.
func (s *Scheduler) RunMemoryLoop(ctx context.Context, sink MemorySink) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		if err := s.memoryTick(ctx, sink); err != nil && ctx.Err() == nil {
			s.logTickError("memory", err)
		}
		if !s.sleepWithContext(ctx, s.memoryInterval) {
			return nil
		}
	}
}

func (s *Scheduler) memoryTick(ctx context.Context, sink MemorySink) error {
	p, err := s.memory.Collect(ctx)
	if err != nil {
		return err
	}
	return sink(ctx, p)
}

// RunNodeLoop publishes one node profile per interval, each bounded by the
// tick timeout. It returns nil when ctx is cancelled or, after the usual
// interval sleep, when the metrics source has no more samples.
func (s *Scheduler) RunNodeLoop(ctx context.Context, sink NodeSink) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		err := s.nodeTick(ctx, sink)
		switch {
		case errors.Is(err, errSourceExhausted):
			s.logger.Debug("node metrics source exhausted, stopping node loop")
			s.sleepWithContext(ctx, s.nodeInterval)
			if s.onNodeExhausted != nil {
				s.onNodeExhausted()
			}
			return nil
		case err == nil, ctx.Err() != nil:
		case errors.Is(err, context.DeadlineExceeded):
			s.logger.Warn("operation timed out after "+s.nodeTickTimeout.String()+", skipping this cycle", "loop", "node")
		default:
			s.logTickError("node", err)
		}
		if !s.sleepWithContext(ctx, s.nodeInterval) {
			return nil
		}
	}
}

func (s *Scheduler) nodeTick(ctx context.Context, sink NodeSink) error {
	tickCtx, cancel := context.WithTimeout(ctx, s.nodeTickTimeout)
	defer cancel()

	p, err := s.node.Collect(tickCtx)
	if err != nil {
		return err
	}
	return sink(tickCtx, p)
}

func (s *Scheduler) logTickError(loop string, err error) {
	if telemetry.IsFault(err) {
		s.logger.Error("telemetry fault", "loop", loop, "error", err)
		return
	}
	s.logger.Error("collect/send failed", "loop", loop, "error", err)
}

// sleepWithContext reports false when ctx ended before d elapsed.
func (s *Scheduler) sleepWithContext(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-s.clock.After(d):
		return true
	}
}
