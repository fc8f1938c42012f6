package monitor

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netrate/internal/config"
	"netrate/internal/metrics"
)

// growingReader adds step bytes in both directions on every read.
type growingReader struct {
	mu    sync.Mutex
	step  map[string]uint64
	calls map[string]int
	err   error
}

func newGrowingReader(step map[string]uint64) *growingReader {
	return &growingReader{step: step, calls: make(map[string]int)}
}

func (r *growingReader) ReadCounters(_ context.Context, iface string) (metrics.ByteCounters, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls[iface]++
	if r.err != nil {
		return metrics.ByteCounters{}, r.err
	}
	v := uint64(r.calls[iface]) * r.step[iface]
	return metrics.ByteCounters{RxBytes: v, TxBytes: 2 * v}, nil
}

func (r *growingReader) total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		n += c
	}
	return n
}

func (r *growingReader) callCount(iface string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[iface]
}

// cycleInventory returns the i-th listing on the i-th call, then repeats
// the last one.
type cycleInventory struct {
	mu       sync.Mutex
	listings [][]string
	calls    int
	err      error
}

func (i *cycleInventory) InterfaceNames(context.Context) ([]string, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.err != nil {
		return nil, i.err
	}
	n := i.calls
	i.calls++
	if n >= len(i.listings) {
		n = len(i.listings) - 1
	}
	return i.listings[n], nil
}

// lineWriter cancels once it has seen limit lines.
type lineWriter struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	limit  int
	cancel context.CancelFunc
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, err := w.buf.Write(p)
	if w.limit > 0 && strings.Count(w.buf.String(), "\n") >= w.limit {
		w.cancel()
	}
	return n, err
}

func (w *lineWriter) lines() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return strings.Split(strings.TrimRight(w.buf.String(), "\n"), "\n")
}

func drive(t *testing.T, mock *clock.Mock, fn func() error) error {
	t.Helper()

	done := make(chan error, 1)
	go func() { done <- fn() }()

	deadline := time.After(5 * time.Second)
	for {
		select {
		case err := <-done:
			return err
		case <-deadline:
			t.Fatal("monitor did not return")
			return nil
		default:
			mock.Add(100 * time.Millisecond)
		}
	}
}

func newTestMonitor(inv metrics.Inventory, reader metrics.CounterReader, out *lineWriter) (*Monitor, *clock.Mock) {
	mock := clock.NewMock()
	sampler := metrics.NewSampler(reader, mock, nil)
	return New(config.Default(), inv, sampler, out, nil), mock
}

func TestRun_MissingInterface(t *testing.T) {
	inv := &cycleInventory{listings: [][]string{{"lo", "eth0"}}}
	reader := newGrowingReader(nil)
	out := &lineWriter{}
	m, _ := newTestMonitor(inv, reader, out)

	err := m.Run(context.Background(), Options{Interface: "eth7"})
	assert.ErrorIs(t, err, ErrInterfaceNotFound)
	assert.ErrorContains(t, err, "eth7")
	assert.Equal(t, 0, reader.total())
	assert.Empty(t, out.buf.String())
}

func TestRun_SingleInterfaceOnce(t *testing.T) {
	inv := &cycleInventory{listings: [][]string{{"lo", "eth0"}}}
	reader := newGrowingReader(map[string]uint64{"eth0": 1024})
	out := &lineWriter{}
	m, mock := newTestMonitor(inv, reader, out)

	err := drive(t, mock, func() error {
		return m.Run(context.Background(), Options{Interface: "eth0"})
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"    eth0: v   1.0 KiB/s ^   2.0 KiB/s"}, out.lines())
	assert.Equal(t, 2, reader.callCount("eth0"))
}

func TestRun_SingleInterfacePrintsZero(t *testing.T) {
	inv := &cycleInventory{listings: [][]string{{"lo"}}}
	reader := newGrowingReader(nil)
	out := &lineWriter{}
	m, mock := newTestMonitor(inv, reader, out)

	err := drive(t, mock, func() error {
		return m.Run(context.Background(), Options{Interface: "lo"})
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"      lo: v       0 B/s ^       0 B/s"}, out.lines())
}

func TestRun_AllInterfacesOnce(t *testing.T) {
	inv := &cycleInventory{listings: [][]string{{"wlan0", "lo", "vnet0", "virbr0", "eth0", "eth1"}}}
	reader := newGrowingReader(map[string]uint64{
		"wlan0":  512,
		"eth0":   100,
		"lo":     9999,
		"vnet0":  9999,
		"virbr0": 9999,
	})
	out := &lineWriter{}
	m, mock := newTestMonitor(inv, reader, out)

	err := drive(t, mock, func() error {
		return m.Run(context.Background(), Options{})
	})
	require.NoError(t, err)

	// eth1 is idle, the rest are excluded by name
	assert.Equal(t, []string{
		"    eth0: v     100 B/s ^     200 B/s",
		"   wlan0: v     512 B/s ^   1.0 KiB/s",
	}, out.lines())
	for _, skipped := range []string{"lo", "vnet0", "virbr0"} {
		assert.Equal(t, 0, reader.callCount(skipped), skipped)
	}
	assert.Equal(t, 2, reader.callCount("eth1"))
}

func TestRun_RepeatRequeriesInventory(t *testing.T) {
	inv := &cycleInventory{listings: [][]string{
		{"lo", "eth0"},
		{"lo", "eth0", "wlan0"},
	}}
	reader := newGrowingReader(map[string]uint64{"eth0": 10, "wlan0": 20})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := &lineWriter{limit: 3, cancel: cancel}
	m, mock := newTestMonitor(inv, reader, out)

	err := drive(t, mock, func() error {
		return m.Run(ctx, Options{Repeat: true})
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"    eth0: v      10 B/s ^      20 B/s",
		"    eth0: v      10 B/s ^      20 B/s",
		"   wlan0: v      20 B/s ^      40 B/s",
	}, out.lines())
	assert.GreaterOrEqual(t, inv.calls, 2)
}

func TestRun_RepeatSingleInterfaceStopsOnCancel(t *testing.T) {
	inv := &cycleInventory{listings: [][]string{{"eth0"}}}
	reader := newGrowingReader(map[string]uint64{"eth0": 1})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := &lineWriter{limit: 4, cancel: cancel}
	m, mock := newTestMonitor(inv, reader, out)

	err := drive(t, mock, func() error {
		return m.Run(ctx, Options{Interface: "eth0", Repeat: true})
	})
	require.NoError(t, err)
	assert.Len(t, out.lines(), 4)
	// inventory is only consulted for the existence check
	assert.Equal(t, 1, inv.calls)
}

func TestRun_ReadErrorIsFatal(t *testing.T) {
	inv := &cycleInventory{listings: [][]string{{"eth0"}}}
	reader := newGrowingReader(nil)
	reader.err = errors.New("malformed counter in /sys/class/net/eth0/statistics/rx_bytes")
	out := &lineWriter{}
	m, _ := newTestMonitor(inv, reader, out)

	err := m.Run(context.Background(), Options{Repeat: true})
	assert.ErrorContains(t, err, "rx_bytes")
	assert.Empty(t, out.buf.String())
}

func TestRun_InventoryError(t *testing.T) {
	inv := &cycleInventory{err: errors.New("failed to list interfaces")}
	m, _ := newTestMonitor(inv, newGrowingReader(nil), &lineWriter{})

	assert.Error(t, m.Run(context.Background(), Options{}))
	assert.Error(t, m.Run(context.Background(), Options{Interface: "eth0"}))
}
