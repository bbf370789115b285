package libvirt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	golibvirt "github.com/digitalocean/go-libvirt"

	"github.com/peterxing/exo/internal/model"
)

// allCells asks libvirt for host-wide totals instead of one NUMA cell.
const allCells int32 = -1

type memoryStatsClient interface {
	NodeGetMemoryStats(nparams int32, cellNum int32, flags uint32) ([]golibvirt.NodeGetMemoryStats, int32, error)
}

// SwapReader supplies swap figures, which libvirt does not report.
type SwapReader interface {
	ReadMemory(ctx context.Context) (model.HostMemory, error)
}

// MemoryReader reports RAM as the hypervisor sees it and swap from the OS.
type MemoryReader struct {
	conn   *ConnManager
	swap   SwapReader
	client func(ctx context.Context) (memoryStatsClient, error)
}

func NewMemoryReader(conn *ConnManager, swap SwapReader) *MemoryReader {
	return &MemoryReader{
		conn: conn,
		swap: swap,
		client: func(ctx context.Context) (memoryStatsClient, error) {
			return conn.Client(ctx)
		},
	}
}

func (r *MemoryReader) ReadMemory(ctx context.Context) (model.HostMemory, error) {
	c, err := r.client(ctx)
	if err != nil {
		return model.HostMemory{}, err
	}
	out, err := readNodeMemory(c)
	if err != nil {
		if r.conn != nil {
			r.conn.Invalidate()
		}
		return model.HostMemory{}, err
	}
	if r.swap != nil {
		if host, err := r.swap.ReadMemory(ctx); err == nil {
			out.SwapTotalBytes = host.SwapTotalBytes
			out.SwapFreeBytes = host.SwapFreeBytes
		}
	}
	return out, nil
}

// readNodeMemory converts libvirt's KiB fields; available is
// free + buffers + cached, capped at total.
func readNodeMemory(c memoryStatsClient) (model.HostMemory, error) {
	_, nparams, err := c.NodeGetMemoryStats(0, allCells, 0)
	if err != nil {
		return model.HostMemory{}, fmt.Errorf("node memory stats count: %w", err)
	}
	if nparams <= 0 {
		return model.HostMemory{}, errors.New("libvirt reported no node memory stats")
	}
	stats, _, err := c.NodeGetMemoryStats(nparams, allCells, 0)
	if err != nil {
		return model.HostMemory{}, fmt.Errorf("node memory stats: %w", err)
	}

	vals := make(map[string]uint64, len(stats))
	for _, st := range stats {
		vals[strings.ToLower(st.Field)] = st.Value * 1024
	}
	total := vals["total"]
	if total == 0 {
		return model.HostMemory{}, errors.New("libvirt reported zero total memory")
	}
	available := vals["free"] + vals["buffers"] + vals["cached"]
	if available > total {
		available = total
	}
	return model.HostMemory{TotalBytes: total, AvailableBytes: available}, nil
}
