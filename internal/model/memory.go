package model

const bytesPerMB = 1024 * 1024

// Memory is a byte quantity.
type Memory struct {
	Bytes uint64 `json:"in_bytes"`
}

func MemoryFromBytes(b uint64) Memory {
	return Memory{Bytes: b}
}

// MemoryFromMB converts mebibytes.
func MemoryFromMB(mb uint64) Memory {
	return Memory{Bytes: mb * bytesPerMB}
}

func (m Memory) InBytes() uint64 {
	return m.Bytes
}

func (m Memory) InMB() uint64 {
	return m.Bytes / bytesPerMB
}

// HostMemory is a raw reading of the host memory subsystem.
type HostMemory struct {
	TotalBytes     uint64
	AvailableBytes uint64
	SwapTotalBytes uint64
	SwapFreeBytes  uint64
}

type MemoryPerformanceProfile struct {
	RAMTotal      Memory `json:"ram_total"`
	RAMAvailable  Memory `json:"ram_available"`
	SwapTotal     Memory `json:"swap_total"`
	SwapAvailable Memory `json:"swap_available"`
}

// NewMemoryProfile builds a profile from a host reading. A non-nil override
// replaces the detected RAM total outright; available RAM never exceeds it.
func NewMemoryProfile(host HostMemory, override *Memory) MemoryPerformanceProfile {
	p := MemoryPerformanceProfile{
		RAMTotal:      MemoryFromBytes(host.TotalBytes),
		RAMAvailable:  MemoryFromBytes(host.AvailableBytes),
		SwapTotal:     MemoryFromBytes(host.SwapTotalBytes),
		SwapAvailable: MemoryFromBytes(host.SwapFreeBytes),
	}
	if override != nil {
		p.RAMTotal = *override
		if p.RAMAvailable.Bytes > override.Bytes {
			p.RAMAvailable = *override
		}
	}
	return p
}
