package metrics

import (
	"context"
	"fmt"

	psnet "github.com/shirou/gopsutil/v3/net"
)

// ProcNetDevReader reads counters from a /proc/net/dev formatted file.
type ProcNetDevReader struct {
	path string
}

func NewProcNetDevReader(path string) *ProcNetDevReader {
	return &ProcNetDevReader{path: path}
}

func (r *ProcNetDevReader) ReadCounters(ctx context.Context, iface string) (ByteCounters, error) {
	stats, err := psnet.IOCountersByFileWithContext(ctx, true, r.path)
	if err != nil {
		return ByteCounters{}, fmt.Errorf("failed to read %s: %w", r.path, err)
	}

	for _, s := range stats {
		if s.Name == iface {
			return ByteCounters{RxBytes: s.BytesRecv, TxBytes: s.BytesSent}, nil
		}
	}
	return ByteCounters{}, nil
}
