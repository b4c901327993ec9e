package supervisor

import (
	"time"
)

// Defaults applied when corresponding Config fields are unset.
const (
	DefaultCommand        = "python3"
	DefaultHost           = "localhost"
	DefaultPollInterval   = 2 * time.Second
	DefaultRequestTimeout = 2 * time.Second
	DefaultGracePeriod    = 5 * time.Second
	DefaultHealthTimeout  = 120 * time.Second
	// HealthPath is the readiness endpoint exposed by the vLLM server.
	HealthPath = "/health"
)

// DefaultBaseArgs is the entry point of vLLM's OpenAI-compatible server.
var DefaultBaseArgs = []string{"-m", "vllm.entrypoints.openai.api_server"}

// Config encapsulates the tunables for Supervisor construction.
type Config struct {
	// Command is the executable launched for the server (python interpreter by default).
	Command string
	// BaseArgs precede --model/--port on the command line.
	BaseArgs []string
	// ExtraArgs follow --model/--port on the command line.
	ExtraArgs []string
	// Env is merged over the parent environment.
	Env map[string]string
	// Host used to build the health URL.
	Host string

	PollInterval   time.Duration
	RequestTimeout time.Duration
	GracePeriod    time.Duration
	// HealthTimeout is used when WaitForHealth is called with timeout <= 0.
	HealthTimeout time.Duration
}

// withDefaults returns a copy of cfg with zero fields replaced by defaults.
func (cfg Config) withDefaults() Config {
	if cfg.Command == "" {
		cfg.Command = DefaultCommand
		if cfg.BaseArgs == nil {
			cfg.BaseArgs = append([]string(nil), DefaultBaseArgs...)
		}
	}
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.GracePeriod <= 0 {
		cfg.GracePeriod = DefaultGracePeriod
	}
	if cfg.HealthTimeout <= 0 {
		cfg.HealthTimeout = DefaultHealthTimeout
	}
	return cfg
}
