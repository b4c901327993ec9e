package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"vllmsup/internal/supervisor"
)

// Config holds runtime parameters for the supervisor and CLI.
// Zero values mean "unspecified" and are replaced by ApplyDefaults.
// Durations are strings in time.ParseDuration syntax (e.g. "2s").
type Config struct {
	Command        string            `json:"command" yaml:"command" toml:"command"`
	BaseArgs       []string          `json:"base_args" yaml:"base_args" toml:"base_args"`
	ExtraArgs      []string          `json:"extra_args" yaml:"extra_args" toml:"extra_args"`
	Env            map[string]string `json:"env" yaml:"env" toml:"env"`
	Host           string            `json:"host" yaml:"host" toml:"host"`
	PollInterval   string            `json:"poll_interval" yaml:"poll_interval" toml:"poll_interval"`
	RequestTimeout string            `json:"request_timeout" yaml:"request_timeout" toml:"request_timeout"`
	GracePeriod    string            `json:"grace_period" yaml:"grace_period" toml:"grace_period"`
	HealthTimeout  string            `json:"health_timeout" yaml:"health_timeout" toml:"health_timeout"`
	ReclaimCommand string            `json:"reclaim_command" yaml:"reclaim_command" toml:"reclaim_command"`
	ReclaimArgs    []string          `json:"reclaim_args" yaml:"reclaim_args" toml:"reclaim_args"`
	// ReclaimDisabled skips the accelerator reclaim helper entirely.
	ReclaimDisabled bool     `json:"reclaim_disabled" yaml:"reclaim_disabled" toml:"reclaim_disabled"`
	StatusAddr      string   `json:"status_addr" yaml:"status_addr" toml:"status_addr"`
	CORSOrigins     []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
	CORSMethods     []string `json:"cors_methods" yaml:"cors_methods" toml:"cors_methods"`
	CORSHeaders     []string `json:"cors_headers" yaml:"cors_headers" toml:"cors_headers"`
	LogLevel        string   `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat       string   `json:"log_format" yaml:"log_format" toml:"log_format"`
}

// Defaults for CLI-level settings; supervisor defaults live in package supervisor.
const (
	DefaultStatusAddr = ":9090"
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "console"
)

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	path, err := expandHome(path)
	if err != nil {
		return cfg, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// envPrefix namespaces environment overrides.
const envPrefix = "VLLMSUP_"

// FromEnv overlays VLLMSUP_* environment variables onto cfg. List values are
// comma separated.
func FromEnv(cfg Config, getenv func(string) string) Config {
	if getenv == nil {
		getenv = os.Getenv
	}
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(envPrefix + key)); v != "" {
			*dst = v
		}
	}
	list := func(key string, dst *[]string) {
		if v := strings.TrimSpace(getenv(envPrefix + key)); v != "" {
			*dst = splitCSV(v)
		}
	}
	str("COMMAND", &cfg.Command)
	list("BASE_ARGS", &cfg.BaseArgs)
	list("EXTRA_ARGS", &cfg.ExtraArgs)
	str("HOST", &cfg.Host)
	str("POLL_INTERVAL", &cfg.PollInterval)
	str("REQUEST_TIMEOUT", &cfg.RequestTimeout)
	str("GRACE_PERIOD", &cfg.GracePeriod)
	str("HEALTH_TIMEOUT", &cfg.HealthTimeout)
	str("RECLAIM_COMMAND", &cfg.ReclaimCommand)
	str("STATUS_ADDR", &cfg.StatusAddr)
	list("CORS_ORIGINS", &cfg.CORSOrigins)
	list("CORS_METHODS", &cfg.CORSMethods)
	list("CORS_HEADERS", &cfg.CORSHeaders)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("LOG_FORMAT", &cfg.LogFormat)
	if v := strings.ToLower(strings.TrimSpace(getenv(envPrefix + "RECLAIM_DISABLED"))); v != "" {
		cfg.ReclaimDisabled = v == "1" || v == "true" || v == "yes"
	}
	return cfg
}

// ApplyDefaults fills unset CLI-level fields.
func (c Config) ApplyDefaults() Config {
	if c.StatusAddr == "" {
		c.StatusAddr = DefaultStatusAddr
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = DefaultLogFormat
	}
	return c
}

// Validate checks that durations parse and enumerations are known.
func (c Config) Validate() error {
	if _, err := c.SupervisorConfig(); err != nil {
		return err
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "json", "console":
	default:
		return fmt.Errorf("log_format: unknown value %q (want json|console)", c.LogFormat)
	}
	return nil
}

// SupervisorConfig converts c into a supervisor.Config.
func (c Config) SupervisorConfig() (supervisor.Config, error) {
	command, err := expandHome(c.Command)
	if err != nil {
		return supervisor.Config{}, err
	}
	out := supervisor.Config{
		Command:   command,
		BaseArgs:  c.BaseArgs,
		ExtraArgs: c.ExtraArgs,
		Env:       c.Env,
		Host:      c.Host,
	}
	for _, d := range []struct {
		name string
		src  string
		dst  *time.Duration
	}{
		{"poll_interval", c.PollInterval, &out.PollInterval},
		{"request_timeout", c.RequestTimeout, &out.RequestTimeout},
		{"grace_period", c.GracePeriod, &out.GracePeriod},
		{"health_timeout", c.HealthTimeout, &out.HealthTimeout},
	} {
		if d.src == "" {
			continue
		}
		v, err := time.ParseDuration(d.src)
		if err != nil {
			return out, fmt.Errorf("%s: %w", d.name, err)
		}
		if v < 0 {
			return out, fmt.Errorf("%s: must not be negative", d.name)
		}
		*d.dst = v
	}
	return out, nil
}

// Reclaimer builds the memory reclaimer described by c.
func (c Config) Reclaimer() supervisor.MemoryReclaimer {
	if c.ReclaimDisabled {
		return supervisor.NoopReclaimer{}
	}
	if c.ReclaimCommand != "" {
		command, err := expandHome(c.ReclaimCommand)
		if err != nil {
			command = c.ReclaimCommand
		}
		return &supervisor.ExecReclaimer{Command: command, Args: c.ReclaimArgs, Timeout: 30 * time.Second}
	}
	// Use the interpreter that runs the server when it is python.
	python := supervisor.DefaultCommand
	if strings.Contains(filepath.Base(c.Command), "python") {
		if p, err := expandHome(c.Command); err == nil {
			python = p
		}
	}
	return supervisor.NewTorchReclaimer(python)
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
