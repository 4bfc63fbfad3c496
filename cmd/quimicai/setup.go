package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quimicai/surfacelab/internal/config"
	"github.com/quimicai/surfacelab/internal/content"
	"github.com/quimicai/surfacelab/internal/domain"
	"github.com/quimicai/surfacelab/internal/logger"
	"github.com/quimicai/surfacelab/internal/optim"
)

// session is the resolved state every command starts from.
type session struct {
	cfg      *config.Config
	registry *domain.Registry
	domain   *domain.Domain
}

// setup layers configuration as file, then preset, then explicit flags, and
// resolves the selected domain. External content is applied to the registry
// before lookup.
func setup(cmd *cobra.Command, args []string) (*session, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	flags := cmd.Flags()

	if !flags.Changed("log-level") && cfg.LogLevel != "" {
		logger.SetDefault(logger.NewText(cfg.LogLevel, cmd.ErrOrStderr()))
	}
	if flags.Changed("content") {
		cfg.ContentDir = contentDir
	}

	reg := domain.NewRegistry()
	if applied := content.NewLoader(cfg.ContentDir).Apply(reg); len(applied) > 0 {
		logger.Info("applied external content", "domains", applied)
	}

	configured := cfg.Domain
	if len(args) > 0 {
		cfg.Domain = args[0]
	}
	d, err := reg.Get(cfg.Domain)
	if err != nil {
		return nil, err
	}
	if prev, err := reg.Get(configured); err != nil || prev.Tag != d.Tag {
		// selections stored for another domain do not carry over
		cfg.Metric, cfg.Variables, cfg.Ranges = "", nil, nil
	}
	cfg.Domain = d.Tag

	if preset != "" {
		p := config.GetPreset(d.Tag, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset %q for %s (available: %s)",
				preset, d.Tag, strings.Join(config.ListPresets(d.Tag), ", "))
		}
		cfg.Metric, cfg.Variables, cfg.Ranges = p.Metric, p.Variables, p.Ranges
	}

	if err := applyFlags(cfg, d, flags.Changed); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if _, err := cfg.Resolve(reg); err != nil {
		return nil, err
	}
	return &session{cfg: cfg, registry: reg, domain: d}, nil
}

// applyFlags copies every explicitly set flag into cfg. Display names are
// accepted wherever a parameter key is expected.
func applyFlags(cfg *config.Config, d *domain.Domain, changed func(string) bool) error {
	if changed("vars") {
		cfg.Variables = make([]string, 0, len(variables))
		for _, v := range variables {
			cfg.Variables = append(cfg.Variables, parameterKey(d, v))
		}
	}
	if changed("metric") {
		name, err := matchMetric(d, metric)
		if err != nil {
			return err
		}
		cfg.Metric = name
	}
	if changed("range") {
		if cfg.Ranges == nil {
			cfg.Ranges = make(map[string]config.RangeConfig)
		}
		for _, spec := range ranges {
			name, r, err := parseRange(spec)
			if err != nil {
				return err
			}
			cfg.Ranges[parameterKey(d, name)] = r
		}
	}
	if changed("points") {
		cfg.Points = points
	}
	if changed("weight") {
		cfg.Weight = weight
	}
	if changed("optimizer") {
		cfg.Optimizer.Kind = optimizerKind
	}
	if changed("latency") {
		cfg.Optimizer.Latency = latency
	}
	if changed("addr") {
		cfg.Server.Addr = httpAddr
	}
	if changed("inbox") {
		cfg.Server.InboxPath = inboxPath
	}
	if changed("runs-dir") {
		cfg.RunsDir = runsDir
	}
	return nil
}

func parameterKey(d *domain.Domain, name string) string {
	if key, ok := d.KeyForDisplay(name); ok {
		return key
	}
	return name
}

// matchMetric accepts an exact name or a unique case-insensitive prefix.
func matchMetric(d *domain.Domain, name string) (string, error) {
	if _, err := d.Metric(name); err == nil {
		return name, nil
	}
	var found []string
	lower := strings.ToLower(name)
	for _, m := range d.MetricNames() {
		if strings.HasPrefix(strings.ToLower(m), lower) {
			found = append(found, m)
		}
	}
	if len(found) == 1 {
		return found[0], nil
	}
	return "", fmt.Errorf("%w: %q in domain %s (available: %s)",
		domain.ErrUnknownMetric, name, d.Tag, strings.Join(d.MetricNames(), ", "))
}

// parseRange reads name=low:high.
func parseRange(spec string) (string, config.RangeConfig, error) {
	name, bounds, ok := strings.Cut(spec, "=")
	if !ok || name == "" {
		return "", config.RangeConfig{}, fmt.Errorf("invalid range %q, expected name=low:high", spec)
	}
	lowStr, highStr, ok := strings.Cut(bounds, ":")
	if !ok {
		return "", config.RangeConfig{}, fmt.Errorf("invalid range %q, expected name=low:high", spec)
	}
	low, err := strconv.ParseFloat(strings.TrimSpace(lowStr), 64)
	if err != nil {
		return "", config.RangeConfig{}, fmt.Errorf("invalid range low in %q: %w", spec, err)
	}
	high, err := strconv.ParseFloat(strings.TrimSpace(highStr), 64)
	if err != nil {
		return "", config.RangeConfig{}, fmt.Errorf("invalid range high in %q: %w", spec, err)
	}
	return strings.TrimSpace(name), config.RangeConfig{Low: low, High: high}, nil
}

func newOptimizer(cfg *config.Config) (optim.Optimizer, error) {
	return optim.New(cfg.Optimizer.Kind, cfg.Optimizer.Latency)
}
