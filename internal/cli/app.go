package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"vllmsup/internal/config"
	"vllmsup/internal/httpapi"
	"vllmsup/internal/logging"
	"vllmsup/internal/supervisor"
)

// rootOptions holds persistent flag values.
type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
	stdout     io.Writer
	stderr     io.Writer
	getenv     func(string) string
}

// app is the resolved runtime for one command invocation.
type app struct {
	cfg config.Config
	log zerolog.Logger
	out io.Writer
}

// loadApp resolves file config, env overrides, flags and defaults, in that order.
func loadApp(o *rootOptions) (*app, error) {
	var cfg config.Config
	if o.configPath != "" {
		c, err := config.Load(o.configPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = c
	}
	getenv := o.getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	cfg = config.FromEnv(cfg, getenv)
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.logFormat != "" {
		cfg.LogFormat = o.logFormat
	}
	cfg = cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &app{cfg: cfg, log: logging.New(cfg.LogLevel, cfg.LogFormat, o.stderr), out: o.stdout}, nil
}

func (a *app) newSupervisor() (*supervisor.Supervisor, error) {
	sc, err := a.cfg.SupervisorConfig()
	if err != nil {
		return nil, err
	}
	return supervisor.New(sc,
		supervisor.WithLogger(a.log.With().Str("component", "supervisor").Logger()),
		supervisor.WithReclaimer(a.cfg.Reclaimer()),
	), nil
}

func (a *app) httpOptions() httpapi.Options {
	return httpapi.Options{
		CORSOrigins: a.cfg.CORSOrigins,
		CORSMethods: a.cfg.CORSMethods,
		CORSHeaders: a.cfg.CORSHeaders,
	}
}
