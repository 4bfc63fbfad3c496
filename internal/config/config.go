package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/quimicai/surfacelab/internal/domain"
	"github.com/quimicai/surfacelab/internal/surface"
)

const (
	DefaultDomain       = "chem"
	DefaultPoints       = 50
	MaxPoints           = 100
	DefaultWeight       = 0.5
	DefaultOptimizer    = "placeholder"
	DefaultLatency      = 10 * time.Second
	DefaultAddr         = ":8080"
	DefaultInboxPath    = "quimicai.db"
	DefaultContactRate  = 1.0
	DefaultContactBurst = 5
	DefaultLogLevel     = "warn"
	DefaultRunsDir      = "runs"
)

type Config struct {
	Domain     string                 `yaml:"domain"`
	Metric     string                 `yaml:"metric,omitempty"`
	Variables  []string               `yaml:"variables,omitempty"`
	Points     int                    `yaml:"points"`
	Ranges     map[string]RangeConfig `yaml:"ranges,omitempty"`
	Weight     float64                `yaml:"weight"`
	ContentDir string                 `yaml:"content_dir,omitempty"`
	RunsDir    string                 `yaml:"runs_dir"`
	LogLevel   string                 `yaml:"log_level"`
	Optimizer  OptimizerConfig        `yaml:"optimizer"`
	Server     ServerConfig           `yaml:"server"`
}

type RangeConfig struct {
	Low  float64 `yaml:"low"`
	High float64 `yaml:"high"`
}

type OptimizerConfig struct {
	Kind    string        `yaml:"kind"`
	Latency time.Duration `yaml:"latency"`
}

type ServerConfig struct {
	Addr         string  `yaml:"addr"`
	InboxPath    string  `yaml:"inbox_path"`
	ContactRate  float64 `yaml:"contact_rate"`
	ContactBurst int     `yaml:"contact_burst"`
}

// DefaultConfig leaves Metric and Variables empty; callers fall back to the
// domain's first metric and first parameter.
func DefaultConfig() *Config {
	return &Config{
		Domain:   DefaultDomain,
		Points:   DefaultPoints,
		Weight:   DefaultWeight,
		LogLevel: DefaultLogLevel,
		RunsDir:  DefaultRunsDir,
		Optimizer: OptimizerConfig{
			Kind:    DefaultOptimizer,
			Latency: DefaultLatency,
		},
		Server: ServerConfig{
			Addr:         DefaultAddr,
			InboxPath:    DefaultInboxPath,
			ContactRate:  DefaultContactRate,
			ContactBurst: DefaultContactBurst,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks values that do not depend on a domain.
func (c *Config) Validate() error {
	if c.Points < 1 || c.Points > MaxPoints {
		return fmt.Errorf("config: points must be in [1, %d], got %d", MaxPoints, c.Points)
	}
	if c.Weight < 0 || c.Weight > 1 {
		return fmt.Errorf("config: weight must be in [0, 1], got %g", c.Weight)
	}
	if c.Optimizer.Latency < 0 {
		return fmt.Errorf("config: negative optimizer latency %s", c.Optimizer.Latency)
	}
	for name, r := range c.Ranges {
		if r.Low > r.High {
			return fmt.Errorf("config: range for %s has low > high", name)
		}
	}
	return nil
}

// SurfaceRanges converts the configured overrides for the evaluator.
func (c *Config) SurfaceRanges() map[string]surface.Range {
	if len(c.Ranges) == 0 {
		return nil
	}
	out := make(map[string]surface.Range, len(c.Ranges))
	for name, r := range c.Ranges {
		out[name] = surface.Range{Low: r.Low, High: r.High}
	}
	return out
}

// Clone returns a deep copy, so presets can be adjusted by flags safely.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Variables = append([]string(nil), c.Variables...)
	if c.Ranges != nil {
		cp.Ranges = make(map[string]RangeConfig, len(c.Ranges))
		for k, v := range c.Ranges {
			cp.Ranges[k] = v
		}
	}
	return &cp
}

// Resolve looks up the configured domain and fills in the default metric
// and variable selection when they are unset.
func (c *Config) Resolve(reg *domain.Registry) (*domain.Domain, error) {
	d, err := reg.Get(c.Domain)
	if err != nil {
		return nil, err
	}
	c.Domain = d.Tag
	if c.Metric == "" {
		c.Metric = d.Metrics[0].Name
	}
	if len(c.Variables) == 0 {
		c.Variables = d.Parameters.Names()[:1]
	}
	return d, nil
}
