package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/quimicai/surfacelab/internal/domain"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Domain != "chem" {
		t.Errorf("expected domain chem, got %s", cfg.Domain)
	}
	if cfg.Points != 50 {
		t.Errorf("expected 50 points, got %d", cfg.Points)
	}
	if cfg.Optimizer.Latency != 10*time.Second {
		t.Errorf("expected 10s latency, got %s", cfg.Optimizer.Latency)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero points", func(c *Config) { c.Points = 0 }},
		{"too many points", func(c *Config) { c.Points = 101 }},
		{"weight above one", func(c *Config) { c.Weight = 1.5 }},
		{"negative latency", func(c *Config) { c.Optimizer.Latency = -time.Second }},
		{"inverted range", func(c *Config) { c.Ranges = map[string]RangeConfig{"Temp": {Low: 100, High: 70}} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lab.yaml")
	cfg := GetPreset(domain.TagChemical, "reactor")
	cfg.Optimizer.Latency = 250 * time.Millisecond

	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Metric != domain.MetricChemYield || len(got.Variables) != 2 {
		t.Errorf("unexpected config %+v", got)
	}
	if got.Ranges["Temp"].Low != 75 {
		t.Errorf("expected Temp low 75, got %v", got.Ranges["Temp"].Low)
	}
	if got.Optimizer.Latency != 250*time.Millisecond {
		t.Errorf("latency = %s", got.Optimizer.Latency)
	}
}

func TestLoadKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("domain: bio\noptimizer:\n  latency: 2s\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Domain != "bio" || cfg.Points != DefaultPoints {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.Optimizer.Latency != 2*time.Second || cfg.Optimizer.Kind != DefaultOptimizer {
		t.Errorf("unexpected optimizer %+v", cfg.Optimizer)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset(domain.TagChemical, "reactor")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Ranges["Presion"].High != 16 {
		t.Errorf("expected Presion high 16, got %f", cfg.Ranges["Presion"].High)
	}

	cfg.Ranges["Presion"] = RangeConfig{Low: 1, High: 2}
	if GetPreset(domain.TagChemical, "reactor").Ranges["Presion"].High != 16 {
		t.Error("preset was mutated through returned copy")
	}
	if GetPreset("chem", "missing") != nil || GetPreset("nope", "cost") != nil {
		t.Error("expected nil for unknown preset")
	}
}

func TestPresetsMatchDomains(t *testing.T) {
	reg := domain.NewRegistry()
	for tag := range Presets {
		d, err := reg.Get(tag)
		if err != nil {
			t.Fatalf("preset domain %s: %v", tag, err)
		}
		for _, name := range ListPresets(tag) {
			cfg := GetPreset(tag, name)
			if _, err := d.Metric(cfg.Metric); err != nil {
				t.Errorf("%s/%s: %v", tag, name, err)
			}
			for _, v := range cfg.Variables {
				p, ok := d.Parameters.Get(v)
				if !ok {
					t.Errorf("%s/%s: unknown variable %s", tag, name, v)
					continue
				}
				if r, ok := cfg.Ranges[v]; ok && !p.Contains(r.Low, r.High) {
					t.Errorf("%s/%s: range for %s outside parameter bounds", tag, name, v)
				}
			}
		}
	}
}

func TestResolveDefaults(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Domain = "Material"
	d, err := cfg.Resolve(domain.NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	if d.Tag != domain.TagMaterial || cfg.Domain != domain.TagMaterial {
		t.Errorf("expected mat, got %s", cfg.Domain)
	}
	if cfg.Metric != domain.MetricMatYieldStrength {
		t.Errorf("expected first metric, got %s", cfg.Metric)
	}
	if len(cfg.Variables) != 1 || cfg.Variables[0] != "Ni" {
		t.Errorf("expected [Ni], got %v", cfg.Variables)
	}

	cfg.Domain = "physics"
	if _, err := cfg.Resolve(domain.NewRegistry()); err == nil {
		t.Error("expected unknown domain error")
	}
}
