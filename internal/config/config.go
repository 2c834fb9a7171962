// Package config loads simulator settings from defaults, an optional config
// file and MOTORSIM_* environment variables, in increasing precedence.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/signalsfoundry/motorsim/internal/logging"
	"github.com/signalsfoundry/motorsim/internal/observability"
	"github.com/signalsfoundry/motorsim/sim"
	"github.com/signalsfoundry/motorsim/timectrl"
)

// EnvPrefix prefixes every environment override, e.g. MOTORSIM_LOG_LEVEL.
const EnvPrefix = "MOTORSIM"

// Config is the resolved runtime configuration.
type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Tracing TracingConfig `mapstructure:"tracing"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Sim     SimConfig     `mapstructure:"sim"`
}

type LogConfig struct {
	Level     string `mapstructure:"level"`
	Format    string `mapstructure:"format"`
	AddSource bool   `mapstructure:"add_source"`
}

type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	Exporter    string  `mapstructure:"exporter"`
	Endpoint    string  `mapstructure:"endpoint"`
	ServiceName string  `mapstructure:"service_name"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

// MetricsConfig.Addr is the listen address of the /metrics endpoint; empty
// disables it.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// SimConfig tunes the vertical stepper and the what-if pool.
type SimConfig struct {
	TimeStep    float64 `mapstructure:"time_step"`
	MaxTime     float64 `mapstructure:"max_time"`
	RodLength   float64 `mapstructure:"rod_length"`
	Mode        string  `mapstructure:"mode"`
	Parallelism int     `mapstructure:"parallelism"`
}

// New returns a viper instance with defaults and environment binding set
// up. Callers may bind flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func setDefaults(v *viper.Viper) {
	d := sim.DefaultDriverSettings()
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.add_source", false)
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.exporter", "stdout")
	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.service_name", "motorsim")
	v.SetDefault("tracing.sample_ratio", 1.0)
	v.SetDefault("metrics.addr", "")
	v.SetDefault("sim.time_step", d.TimeStep)
	v.SetDefault("sim.max_time", d.MaxTime)
	v.SetDefault("sim.rod_length", d.RodLength)
	v.SetDefault("sim.mode", d.Mode.String())
	v.SetDefault("sim.parallelism", 0)
}

// Load reads path into v when path is non-empty and returns the validated
// configuration.
func Load(v *viper.Viper, path string) (Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the simulator cannot run with.
func (c Config) Validate() error {
	if c.Sim.TimeStep <= 0 {
		return fmt.Errorf("config: sim.time_step must be positive, got %v", c.Sim.TimeStep)
	}
	if c.Sim.MaxTime <= 0 {
		return fmt.Errorf("config: sim.max_time must be positive, got %v", c.Sim.MaxTime)
	}
	if c.Sim.RodLength < 0 {
		return fmt.Errorf("config: sim.rod_length must not be negative, got %v", c.Sim.RodLength)
	}
	if _, err := timectrl.ParseMode(c.Sim.Mode); err != nil {
		return fmt.Errorf("config: sim.mode: %w", err)
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("config: tracing.sample_ratio must be within [0, 1], got %v", c.Tracing.SampleRatio)
	}
	switch strings.ToLower(c.Tracing.Exporter) {
	case "stdout", "otlp":
	default:
		return fmt.Errorf("config: tracing.exporter %q is not stdout or otlp", c.Tracing.Exporter)
	}
	return nil
}

// Logging converts to the logger's configuration.
func (c Config) Logging() logging.Config {
	return logging.Config{Level: c.Log.Level, Format: c.Log.Format, AddSource: c.Log.AddSource}
}

// TracingSettings converts to the tracer's configuration.
func (c Config) TracingSettings() observability.TracingConfig {
	return observability.TracingConfig{
		Enabled:     c.Tracing.Enabled,
		ServiceName: c.Tracing.ServiceName,
		Exporter:    strings.ToLower(c.Tracing.Exporter),
		Endpoint:    c.Tracing.Endpoint,
		SampleRatio: c.Tracing.SampleRatio,
	}
}

// DriverSettings converts to the stepper's settings. Validate has already
// checked the mode.
func (c Config) DriverSettings() sim.DriverSettings {
	mode, _ := timectrl.ParseMode(c.Sim.Mode)
	return sim.DriverSettings{
		TimeStep:  c.Sim.TimeStep,
		MaxTime:   c.Sim.MaxTime,
		RodLength: c.Sim.RodLength,
		Mode:      mode,
	}
}
