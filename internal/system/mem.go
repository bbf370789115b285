package system

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/mem"

	"github.com/peterxing/exo/internal/model"
)

// MemoryReader reads host RAM and swap through gopsutil.
type MemoryReader struct{}

func NewMemoryReader() *MemoryReader {
	return &MemoryReader{}
}

func (MemoryReader) ReadMemory(ctx context.Context) (model.HostMemory, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return model.HostMemory{}, fmt.Errorf("virtual memory: %w", err)
	}
	out := model.HostMemory{
		TotalBytes:     vm.Total,
		AvailableBytes: vm.Available,
	}
	// Hosts without swap (containers, some VMs) are still valid.
	if sw, err := mem.SwapMemoryWithContext(ctx); err == nil {
		out.SwapTotalBytes = sw.Total
		out.SwapFreeBytes = sw.Free
	}
	return out, nil
}
