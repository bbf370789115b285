package system

import (
	"context"
	"strings"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/sensors"

	"github.com/peterxing/exo/internal/telemetry"
)

// PSUtil implements telemetry.OSSampler with gopsutil.
type PSUtil struct{}

func NewPSUtil() *PSUtil {
	return &PSUtil{}
}

// CPUPercent reports system-wide utilization since the previous call. The
// first call in a process compares against boot and is therefore coarse.
func (PSUtil) CPUPercent(ctx context.Context) (float64, error) {
	vals, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return 0, err
	}
	if len(vals) == 0 {
		return 0, nil
	}
	return vals[0], nil
}

func (PSUtil) LogicalCPUCount(ctx context.Context) (int, error) {
	return cpu.CountsWithContext(ctx, true)
}

func (PSUtil) SensorTemperatures(ctx context.Context) (map[string][]telemetry.SensorReading, error) {
	stats, err := sensors.TemperaturesWithContext(ctx)
	if err != nil && len(stats) == 0 {
		return nil, err
	}
	return groupTemperatures(stats), nil
}

// groupTemperatures buckets readings by chip, which gopsutil encodes as the
// sensor key prefix ("coretemp_core_0" -> "coretemp").
func groupTemperatures(stats []sensors.TemperatureStat) map[string][]telemetry.SensorReading {
	out := make(map[string][]telemetry.SensorReading)
	for _, st := range stats {
		group, label, ok := strings.Cut(st.SensorKey, "_")
		if !ok {
			label = st.SensorKey
		}
		v := st.Temperature
		out[group] = append(out[group], telemetry.SensorReading{Label: label, Current: &v})
	}
	return out
}
