package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/signalsfoundry/motorsim/timectrl"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load(New(), "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Fatalf("log = %+v, want info/text", cfg.Log)
	}
	if cfg.Sim.TimeStep != 0.01 || cfg.Sim.MaxTime != 600 || cfg.Sim.RodLength != 1 {
		t.Fatalf("sim = %+v", cfg.Sim)
	}
	if got := cfg.DriverSettings().Mode; got != timectrl.Accelerated {
		t.Fatalf("mode = %v, want accelerated", got)
	}
	if cfg.TracingSettings().Enabled {
		t.Fatalf("tracing enabled by default")
	}
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "motorsim.yaml")
	body := "log:\n  level: warn\n  format: json\nsim:\n  time_step: 0.02\n  parallelism: 3\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	t.Setenv("MOTORSIM_LOG_LEVEL", "debug")
	t.Setenv("MOTORSIM_SIM_MAX_TIME", "120")

	cfg, err := Load(New(), path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("log.level = %q, want debug", cfg.Log.Level)
	}
	if cfg.Log.Format != "json" {
		t.Fatalf("log.format = %q, want json", cfg.Log.Format)
	}
	if cfg.Sim.TimeStep != 0.02 || cfg.Sim.MaxTime != 120 || cfg.Sim.Parallelism != 3 {
		t.Fatalf("sim = %+v", cfg.Sim)
	}
	if got := cfg.Logging().Format; got != "json" {
		t.Fatalf("Logging().Format = %q, want json", got)
	}
}

func TestValidateRejectsBadSettings(t *testing.T) {
	cases := map[string]func(*Config){
		"time_step":    func(c *Config) { c.Sim.TimeStep = 0 },
		"max_time":     func(c *Config) { c.Sim.MaxTime = -1 },
		"rod_length":   func(c *Config) { c.Sim.RodLength = -0.5 },
		"sim.mode":     func(c *Config) { c.Sim.Mode = "warp" },
		"sample_ratio": func(c *Config) { c.Tracing.SampleRatio = 2 },
		"exporter":     func(c *Config) { c.Tracing.Exporter = "zipkin" },
	}
	for field, mutate := range cases {
		cfg, err := Load(New(), "")
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		mutate(&cfg)
		err = cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), field) {
			t.Fatalf("%s: err = %v", field, err)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(New(), filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected missing file to fail")
	}
}
