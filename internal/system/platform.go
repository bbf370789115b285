// Package system wraps the host collaborators the telemetry loops consume:
// platform identity, network interfaces, memory and generic OS counters.
package system

import (
	"context"
	"os"
	"runtime"
	"strings"
	"sync"
)

const (
	unknownModel = "Unknown Model"
	unknownChip  = "Unknown Chip"
)

// PlatformID reports the host operating system ("darwin", "linux", ...).
func PlatformID() string {
	return runtime.GOOS
}

// HostIdentity answers model, chip and friendly-name lookups. Model and chip
// are read once per process; the friendly name is read on every call because
// users rename machines.
type HostIdentity struct {
	modelAndChip func() (string, string)
}

func NewHostIdentity() *HostIdentity {
	return &HostIdentity{modelAndChip: sync.OnceValues(readModelAndChip)}
}

func (h *HostIdentity) ModelAndChip(ctx context.Context) (string, string, error) {
	if err := ctx.Err(); err != nil {
		return "", "", err
	}
	modelID, chipID := h.modelAndChip()
	return modelID, chipID, nil
}

func (h *HostIdentity) FriendlyName(ctx context.Context) (string, error) {
	return readFriendlyName(ctx)
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil || strings.TrimSpace(name) == "" {
		return "unknown-host"
	}
	return strings.TrimSuffix(name, ".local")
}
