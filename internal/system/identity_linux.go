//go:build linux

package system

import (
	"bufio"
	"context"
	"os"
	"strings"

	"golang.org/x/sys/unix"
)

const (
	dmiProductName = "/sys/class/dmi/id/product_name"
	procCPUInfo    = "/proc/cpuinfo"
)

func readModelAndChip() (string, string) {
	return readModelAndChipFrom(dmiProductName, procCPUInfo)
}

func readModelAndChipFrom(productPath, cpuinfoPath string) (string, string) {
	modelID := readTrimmed(productPath)
	if modelID == "" {
		modelID = unknownModel
	}
	chipID := readCPUModel(cpuinfoPath)
	if chipID == "" {
		chipID = unameMachine()
	}
	if chipID == "" {
		chipID = unknownChip
	}
	return modelID, chipID
}

func readFriendlyName(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return hostname(), nil
}

func readTrimmed(path string) string {
	raw, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(raw))
}

// readCPUModel returns the first "model name" (x86) or "Model" (arm boards)
// value from /proc/cpuinfo.
func readCPUModel(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	s := bufio.NewScanner(f)
	for s.Scan() {
		key, value, ok := strings.Cut(s.Text(), ":")
		if !ok {
			continue
		}
		switch strings.TrimSpace(key) {
		case "model name", "Model":
			if v := strings.TrimSpace(value); v != "" {
				return v
			}
		}
	}
	return ""
}

func unameMachine() string {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return ""
	}
	return unix.ByteSliceToString(uts.Machine[:])
}
