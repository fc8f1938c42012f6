package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

// AggregateWindow is the shared window of SampleAllRates. Over exactly one
// second the raw byte delta already is a bytes-per-second rate.
const AggregateWindow = time.Second

var ErrZeroInterval = errors.New("sampling interval must be positive")

// Sampler turns two counter reads separated by a blocking wait into rates.
type Sampler struct {
	reader CounterReader
	clock  clock.Clock
	logger *zap.Logger
}

func NewSampler(reader CounterReader, clk clock.Clock, logger *zap.Logger) *Sampler {
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sampler{
		reader: reader,
		clock:  clk,
		logger: logger,
	}
}

// SampleRate measures one interface over intervalMs milliseconds. The
// result is returned even when both rates are zero.
func (s *Sampler) SampleRate(ctx context.Context, iface string, intervalMs uint64) (RateSample, error) {
	if intervalMs == 0 {
		return RateSample{}, ErrZeroInterval
	}

	prev, err := s.reader.ReadCounters(ctx, iface)
	if err != nil {
		return RateSample{}, err
	}

	if err := s.wait(ctx, time.Duration(intervalMs)*time.Millisecond); err != nil {
		return RateSample{}, err
	}

	curr, err := s.reader.ReadCounters(ctx, iface)
	if err != nil {
		return RateSample{}, err
	}

	rx, tx := s.delta(iface, prev, curr)
	return RateSample{
		RxBytesPerSec: rx * 1000 / intervalMs,
		TxBytesPerSec: tx * 1000 / intervalMs,
	}, nil
}

// SampleAllRates measures every interface in ifaces over one shared
// AggregateWindow. Interfaces with no traffic in either direction are left
// out of the result.
func (s *Sampler) SampleAllRates(ctx context.Context, ifaces []string) (map[string]RateSample, error) {
	prev := make(map[string]ByteCounters, len(ifaces))
	for _, iface := range ifaces {
		c, err := s.reader.ReadCounters(ctx, iface)
		if err != nil {
			return nil, err
		}
		prev[iface] = c
	}

	if err := s.wait(ctx, AggregateWindow); err != nil {
		return nil, err
	}

	rates := make(map[string]RateSample)
	for _, iface := range ifaces {
		curr, err := s.reader.ReadCounters(ctx, iface)
		if err != nil {
			return nil, err
		}

		rx, tx := s.delta(iface, prev[iface], curr)
		if rx == 0 && tx == 0 {
			continue
		}
		rates[iface] = RateSample{RxBytesPerSec: rx, TxBytesPerSec: tx}
	}

	return rates, nil
}

func (s *Sampler) wait(ctx context.Context, d time.Duration) error {
	timer := s.clock.Timer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// delta clamps a decreasing counter (interface reset) to zero.
func (s *Sampler) delta(iface string, prev, curr ByteCounters) (rx, tx uint64) {
	if curr.RxBytes < prev.RxBytes || curr.TxBytes < prev.TxBytes {
		s.logger.Warn("counter went backwards, clamping to zero",
			zap.String("iface", iface),
			zap.Uint64("prev_rx", prev.RxBytes),
			zap.Uint64("curr_rx", curr.RxBytes),
			zap.Uint64("prev_tx", prev.TxBytes),
			zap.Uint64("curr_tx", curr.TxBytes),
		)
	}

	if curr.RxBytes > prev.RxBytes {
		rx = curr.RxBytes - prev.RxBytes
	}
	if curr.TxBytes > prev.TxBytes {
		tx = curr.TxBytes - prev.TxBytes
	}
	return rx, tx
}
