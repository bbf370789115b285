// Package version describes the running agent build.
package version

import (
	"time"

	"github.com/peterxing/exo/internal/config"
	"github.com/peterxing/exo/internal/system"
	"github.com/peterxing/exo/internal/telemetry"
)

func Get(cfg config.Config, now time.Time) Info {
	platform := system.PlatformID()
	return Info{
		AgentID:         cfg.AgentID,
		AgentVersion:    cfg.AgentVersion,
		Platform:        platform,
		NativeTelemetry: platform == telemetry.NativePlatform,
		ProbeListenAddr: cfg.ProbeListenAddr,
		CheckedAtUnix:   now.UTC().Unix(),
	}
}
