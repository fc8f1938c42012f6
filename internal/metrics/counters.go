package metrics

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// CounterReader returns the current cumulative byte counters of an
// interface. An interface without counters reads as zero, not as an error.
type CounterReader interface {
	ReadCounters(ctx context.Context, iface string) (ByteCounters, error)
}

// SysfsReader reads <root>/<iface>/statistics/{rx,tx}_bytes.
type SysfsReader struct {
	root string
}

func NewSysfsReader(root string) *SysfsReader {
	return &SysfsReader{root: root}
}

func (r *SysfsReader) ReadCounters(_ context.Context, iface string) (ByteCounters, error) {
	statsDir := filepath.Join(r.root, iface, "statistics")
	rxFile := filepath.Join(statsDir, "rx_bytes")

	if _, err := os.Stat(rxFile); errors.Is(err, fs.ErrNotExist) {
		return ByteCounters{}, nil
	}

	rx, err := readUint(rxFile)
	if err != nil {
		return ByteCounters{}, err
	}
	tx, err := readUint(filepath.Join(statsDir, "tx_bytes"))
	if err != nil {
		return ByteCounters{}, err
	}

	return ByteCounters{RxBytes: rx, TxBytes: tx}, nil
}

func readUint(path string) (uint64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", path, err)
	}

	val, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed counter in %s: %w", path, err)
	}
	return val, nil
}
