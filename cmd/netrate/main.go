package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"netrate/internal/config"
	"netrate/internal/logging"
	"netrate/internal/metrics"
	"netrate/internal/monitor"
)

const version = "1.0.0"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var (
		configPath  string
		repeat      bool
		showVersion bool
	)

	fs := flag.NewFlagSet("netrate", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Show the realtime network speed\n\nUsage: netrate [flags] [NIC]\n\n")
		fs.PrintDefaults()
	}
	fs.BoolVar(&repeat, "t", false, "repeat until interrupted")
	fs.BoolVar(&repeat, "repeat", false, "repeat until interrupted")
	fs.StringVar(&configPath, "config", "", "path to config.yaml (optional)")
	fs.BoolVar(&showVersion, "version", false, "show version and exit")

	// flags may follow the NIC argument
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return 0
			}
			return 2
		}
		if fs.NArg() == 0 {
			break
		}
		positional = append(positional, fs.Arg(0))
		args = fs.Args()[1:]
	}

	if showVersion {
		fmt.Printf("netrate v%s\n", version)
		return 0
	}
	if len(positional) > 1 {
		fs.Usage()
		return 2
	}

	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.LoadConfig(configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			return 1
		}
	}

	logger, err := logging.NewLogger(cfg.LogLevel, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		return 1
	}
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	sampler := metrics.NewSampler(newCounterReader(cfg), clock.New(), logger)
	mon := monitor.New(cfg, metrics.NewHostInventory(), sampler, os.Stdout, logger)

	opts := monitor.Options{Repeat: repeat}
	if len(positional) == 1 {
		opts.Interface = positional[0]
	}
	if err := mon.Run(ctx, opts); err != nil {
		if errors.Is(err, monitor.ErrInterfaceNotFound) {
			fmt.Fprintf(os.Stderr, "FAIL: Specific interface %s does not exist\n", opts.Interface)
			return 1
		}
		logger.Error("sampling failed", zap.Error(err))
		return 1
	}
	return 0
}

func newCounterReader(cfg *config.Config) metrics.CounterReader {
	if cfg.CounterSource == config.SourceProcfs {
		return metrics.NewProcNetDevReader(cfg.ProcNetDev)
	}
	return metrics.NewSysfsReader(cfg.SysfsRoot)
}
