// Package telemetry picks a hardware metrics source for the host and
// normalizes its output into model.Metrics.
package telemetry

import (
	"context"

	"github.com/peterxing/exo/internal/model"
)

// NativePlatform is the only platform with a native telemetry source.
const NativePlatform = "darwin"

// Source produces hardware samples. A nil sample with a nil error means the
// source has no further samples.
type Source interface {
	Sample(ctx context.Context) (*model.Metrics, error)
}

type SourceFunc func(ctx context.Context) (*model.Metrics, error)

func (f SourceFunc) Sample(ctx context.Context) (*model.Metrics, error) { return f(ctx) }

// NewSource returns native for NativePlatform and generic everywhere else.
func NewSource(platform string, native, generic Source) Source {
	if platform == NativePlatform {
		return native
	}
	return generic
}
