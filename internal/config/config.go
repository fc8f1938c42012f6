package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	SourceSysfs  = "sysfs"
	SourceProcfs = "procfs"
)

type Config struct {
	IntervalMs    uint64  `yaml:"interval_ms"`
	CounterSource string  `yaml:"counter_source"`
	SysfsRoot     string  `yaml:"sysfs_root"`
	ProcNetDev    string  `yaml:"proc_net_dev"`
	Exclude       Exclude `yaml:"exclude"`
	LogLevel      string  `yaml:"log_level"`
}

type Exclude struct {
	Names    []string `yaml:"names"`
	Prefixes []string `yaml:"prefixes"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.IntervalMs == 0 {
		c.IntervalMs = 1000
	}
	if c.CounterSource == "" {
		c.CounterSource = SourceSysfs
	}
	if c.SysfsRoot == "" {
		c.SysfsRoot = "/sys/class/net"
	}
	if c.ProcNetDev == "" {
		c.ProcNetDev = "/proc/net/dev"
	}
	if len(c.Exclude.Names) == 0 {
		c.Exclude.Names = []string{"lo"}
	}
	if len(c.Exclude.Prefixes) == 0 {
		c.Exclude.Prefixes = []string{"vnet", "virbr"}
	}
	if c.LogLevel == "" {
		c.LogLevel = "warn"
	}
}

func (c *Config) validate() error {
	if c.IntervalMs == 0 {
		return fmt.Errorf("interval_ms must be positive")
	}
	switch c.CounterSource {
	case SourceSysfs, SourceProcfs:
	default:
		return fmt.Errorf("counter_source must be %q or %q, got %q", SourceSysfs, SourceProcfs, c.CounterSource)
	}
	for _, p := range c.Exclude.Prefixes {
		if p == "" {
			return fmt.Errorf("exclude.prefixes cannot contain an empty prefix")
		}
	}
	return nil
}
