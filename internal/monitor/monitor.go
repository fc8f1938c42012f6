package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"netrate/internal/config"
	"netrate/internal/display"
	"netrate/internal/metrics"
)

var ErrInterfaceNotFound = errors.New("interface does not exist")

type RateSampler interface {
	SampleRate(ctx context.Context, iface string, intervalMs uint64) (metrics.RateSample, error)
	SampleAllRates(ctx context.Context, ifaces []string) (map[string]metrics.RateSample, error)
}

type Options struct {
	// Interface restricts sampling to one interface; empty means all.
	Interface string
	Repeat    bool
}

type Monitor struct {
	inventory  metrics.Inventory
	sampler    RateSampler
	filter     metrics.Filter
	printer    *display.Printer
	intervalMs uint64
	logger     *zap.Logger
}

func New(cfg *config.Config, inv metrics.Inventory, sampler RateSampler, out io.Writer, logger *zap.Logger) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		inventory: inv,
		sampler:   sampler,
		filter: metrics.Filter{
			Names:    cfg.Exclude.Names,
			Prefixes: cfg.Exclude.Prefixes,
		},
		printer:    display.NewPrinter(out),
		intervalMs: cfg.IntervalMs,
		logger:     logger,
	}
}

// Run samples and prints once, or until ctx is cancelled when opts.Repeat
// is set. Cancellation is not an error.
func (m *Monitor) Run(ctx context.Context, opts Options) error {
	if opts.Interface != "" {
		ok, err := metrics.HasInterface(ctx, m.inventory, opts.Interface)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %s", ErrInterfaceNotFound, opts.Interface)
		}
	}

	for {
		if err := m.cycle(ctx, opts.Interface); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		if !opts.Repeat || ctx.Err() != nil {
			return nil
		}
	}
}

func (m *Monitor) cycle(ctx context.Context, iface string) error {
	if iface != "" {
		sample, err := m.sampler.SampleRate(ctx, iface, m.intervalMs)
		if err != nil {
			return err
		}
		return m.printer.Print(iface, sample)
	}

	// re-derived every cycle so hot-added interfaces show up
	names, err := m.inventory.InterfaceNames(ctx)
	if err != nil {
		return err
	}
	set := m.filter.Apply(names)
	m.logger.Debug("sampling interfaces", zap.Strings("ifaces", set))

	rates, err := m.sampler.SampleAllRates(ctx, set)
	if err != nil {
		return err
	}
	return m.printer.PrintAll(rates)
}
