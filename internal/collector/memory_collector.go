package collector

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/peterxing/exo/internal/model"
)

// MemoryReader reads the host's RAM and swap counters.
type MemoryReader interface {
	ReadMemory(ctx context.Context) (model.HostMemory, error)
}

// OverrideFunc returns the operator memory ceiling, nil when none is set.
type OverrideFunc func() (*model.Memory, error)

// MemoryCollector builds memory profiles with the override applied.
type MemoryCollector struct {
	reader   MemoryReader
	override OverrideFunc
	logger   *slog.Logger
}

func NewMemoryCollector(reader MemoryReader, override OverrideFunc, logger *slog.Logger) *MemoryCollector {
	return &MemoryCollector{reader: reader, override: override, logger: logger}
}

// Collect re-reads the override on every call. A malformed override is
// ignored with a warning rather than failing the sample.
func (c *MemoryCollector) Collect(ctx context.Context) (model.MemoryPerformanceProfile, error) {
	var override *model.Memory
	if c.override != nil {
		o, err := c.override()
		if err != nil {
			c.logger.Warn("ignoring memory override", "error", err)
		} else {
			override = o
		}
	}
	host, err := c.reader.ReadMemory(ctx)
	if err != nil {
		return model.MemoryPerformanceProfile{}, fmt.Errorf("read memory: %w", err)
	}
	return model.NewMemoryProfile(host, override), nil
}
