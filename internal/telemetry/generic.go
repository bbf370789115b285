package telemetry

import (
	"context"
	"log/slog"

	"github.com/peterxing/exo/internal/model"
)

// SensorReading is one temperature reading. Current is nil when the sensor
// exposes no present value.
type SensorReading struct {
	Label   string
	Current *float64
}

// OSSampler is the generic per-OS metrics collaborator.
type OSSampler interface {
	CPUPercent(ctx context.Context) (float64, error)
	LogicalCPUCount(ctx context.Context) (int, error)
	// SensorTemperatures groups readings by sensor chip.
	SensorTemperatures(ctx context.Context) (map[string][]SensorReading, error)
}

// GPUProbe optionally reports GPU utilization as (active devices, percent).
type GPUProbe interface {
	Usage(ctx context.Context) (model.UsagePair, bool)
}

// GenericSampler builds Metrics from portable OS counters. Power is never
// reported on this path.
type GenericSampler struct {
	os     OSSampler
	gpu    GPUProbe
	logger *slog.Logger
}

func NewGenericSampler(sampler OSSampler, gpu GPUProbe, logger *slog.Logger) *GenericSampler {
	return &GenericSampler{os: sampler, gpu: gpu, logger: logger}
}

// Sample runs the blocking OS reads on a separate goroutine and waits for it
// or for ctx. It never reports Absent.
func (s *GenericSampler) Sample(ctx context.Context) (*model.Metrics, error) {
	type result struct {
		m   *model.Metrics
		err error
	}
	done := make(chan result, 1)
	go func() {
		m, err := s.collect(ctx)
		done <- result{m: m, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		return r.m, r.err
	}
}

func (s *GenericSampler) collect(ctx context.Context) (*model.Metrics, error) {
	cpuPercent, err := s.os.CPUPercent(ctx)
	if err != nil {
		return nil, Fault("cpu percent", err)
	}
	logical, err := s.os.LogicalCPUCount(ctx)
	if err != nil {
		s.logger.Debug("logical cpu count unavailable", "error", err)
		logical = 0
	}

	avgTemp := 0.0
	if groups, err := s.os.SensorTemperatures(ctx); err == nil {
		avgTemp = averageTemperature(groups)
	} else {
		s.logger.Debug("temperature sensors unavailable", "error", err)
	}

	m := &model.Metrics{
		PCPUUsage: model.UsagePair{Units: logical, Percent: cpuPercent},
		Temp:      model.TempMetrics{CPUTempAvg: avgTemp, GPUTempAvg: avgTemp},
	}
	if s.gpu != nil {
		if usage, ok := s.gpu.Usage(ctx); ok {
			m.GPUUsage = usage
		}
	}
	return m, nil
}

func averageTemperature(groups map[string][]SensorReading) float64 {
	var sum float64
	var n int
	for _, readings := range groups {
		for _, r := range readings {
			if r.Current == nil {
				continue
			}
			sum += *r.Current
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
