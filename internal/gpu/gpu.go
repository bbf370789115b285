// Package gpu reports accelerator utilization for the generic telemetry path.
package gpu

import (
	"context"
	"log/slog"
	"sync"

	"github.com/peterxing/exo/internal/model"
)

// driver is the minimal vendor surface the probe needs.
type driver interface {
	Init() error
	DeviceCount() (int, error)
	// Utilization returns the busy percentage of device i.
	Utilization(i int) (uint32, error)
}

// Probe initializes the driver on first use. A failed init disables the probe
// for the life of the process and is logged once.
type Probe struct {
	drv    driver
	logger *slog.Logger

	initOnce sync.Once
	ready    bool
}

func NewProbe(logger *slog.Logger) *Probe {
	return newProbe(newDriver(), logger)
}

func newProbe(drv driver, logger *slog.Logger) *Probe {
	if logger == nil {
		logger = slog.Default()
	}
	return &Probe{drv: drv, logger: logger}
}

// Usage returns (devices reporting, mean utilization). ok is false when no
// device could be read.
func (p *Probe) Usage(ctx context.Context) (model.UsagePair, bool) {
	p.initOnce.Do(func() {
		if err := p.drv.Init(); err != nil {
			p.logger.Info("gpu utilization disabled", "error", err)
			return
		}
		p.ready = true
	})
	if !p.ready || ctx.Err() != nil {
		return model.UsagePair{}, false
	}

	count, err := p.drv.DeviceCount()
	if err != nil || count == 0 {
		return model.UsagePair{}, false
	}
	var sum float64
	var n int
	for i := range count {
		util, err := p.drv.Utilization(i)
		if err != nil {
			p.logger.Debug("gpu utilization read failed", "device", i, "error", err)
			continue
		}
		sum += float64(util)
		n++
	}
	if n == 0 {
		return model.UsagePair{}, false
	}
	return model.UsagePair{Units: n, Percent: sum / float64(n)}, true
}
