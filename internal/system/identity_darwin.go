//go:build darwin

package system

import (
	"context"
	"os/exec"
	"strings"

	"golang.org/x/sys/unix"
)

func readModelAndChip() (string, string) {
	modelID, err := unix.Sysctl("hw.model")
	if err != nil || strings.TrimSpace(modelID) == "" {
		modelID = unknownModel
	}
	chipID, err := unix.Sysctl("machdep.cpu.brand_string")
	if err != nil || strings.TrimSpace(chipID) == "" {
		chipID = unknownChip
	}
	return strings.TrimSpace(modelID), strings.TrimSpace(chipID)
}

func readFriendlyName(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, "scutil", "--get", "ComputerName").Output()
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return hostname(), nil
	}
	name := strings.TrimSpace(string(out))
	if name == "" {
		return hostname(), nil
	}
	return name, nil
}
