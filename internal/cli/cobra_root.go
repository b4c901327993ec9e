package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"vllmsup/internal/supervisor"
)

// buildRootCmdWith constructs the Cobra command tree bound to o.
func buildRootCmdWith(o *rootOptions) *cobra.Command {
	root := &cobra.Command{
		Use:           "vllmsup",
		Short:         "Launch, health-check and stop a local vLLM server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(o.stdout)
	root.SetErr(o.stderr)
	root.PersistentFlags().StringVar(&o.configPath, "config", "", "Config file (.yaml|.yml|.json|.toml)")
	root.PersistentFlags().StringVar(&o.logLevel, "log-level", "", "Log level: debug|info|warn|error|off (defaults VLLMSUP_LOG_LEVEL or info)")
	root.PersistentFlags().StringVar(&o.logFormat, "log-format", "", "Log format: console|json")

	var (
		model   string
		port    int
		timeout time.Duration
	)
	addServerFlags := func(c *cobra.Command) {
		c.Flags().StringVar(&model, "model", defaultSmokeModel, "Model id served by vLLM")
		c.Flags().IntVar(&port, "port", defaultSmokePort, "Port the server listens on")
		c.Flags().DurationVar(&timeout, "timeout", 0, "Health wait timeout (0 uses health_timeout or 120s)")
	}

	smokeCmd := &cobra.Command{
		Use:     "smoke",
		Short:   "Start the server, wait until healthy, then terminate it",
		Example: "  vllmsup smoke --model TinyLlama/TinyLlama-1.1B-Chat-v1.0 --port 8000",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(o)
			if err != nil {
				return err
			}
			return runSmoke(cmd.Context(), a, model, port, timeout)
		},
	}
	addServerFlags(smokeCmd)

	var statusAddr string
	serveCmd := &cobra.Command{
		Use:     "serve",
		Short:   "Start the server and keep it up with a status API until interrupted",
		Example: "  vllmsup serve --model facebook/opt-125m --port 8000 --status-addr :9090",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(o)
			if err != nil {
				return err
			}
			addr := statusAddr
			if addr == "" {
				addr = a.cfg.StatusAddr
			}
			return runServe(cmd.Context(), a, model, port, timeout, addr)
		},
	}
	addServerFlags(serveCmd)
	serveCmd.Flags().StringVar(&statusAddr, "status-addr", "", "Status API listen address (defaults status_addr or :9090)")

	var host string
	var probePort int
	healthCmd := &cobra.Command{
		Use:   "health",
		Short: "Probe a server's /health endpoint once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(o)
			if err != nil {
				return err
			}
			return runHealth(cmd.Context(), a, host, probePort)
		},
	}
	healthCmd.Flags().StringVar(&host, "host", "", "Server host (defaults host or "+supervisor.DefaultHost+")")
	healthCmd.Flags().IntVar(&probePort, "port", defaultSmokePort, "Server port")

	root.AddCommand(smokeCmd, serveCmd, healthCmd)
	return root
}

// exitCode maps command errors to process exit codes.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case supervisor.IsHealthTimeout(err):
		return 3
	case supervisor.IsUsage(err):
		return 2
	default:
		return 1
	}
}

// MainWithArgs is a testable variant of Main that accepts args and streams explicitly.
// It returns an exit code (0 for success, non-zero on error).
func MainWithArgs(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	o := &rootOptions{stdout: stdout, stderr: stderr}
	root := buildRootCmdWith(o)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err != nil && err != errNotHealthy {
		fmt.Fprintln(stderr, "error:", err.Error())
	}
	return exitCode(err)
}

// Main runs the CLI with os.Args and cancels on SIGINT/SIGTERM.
func Main() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return MainWithArgs(ctx, os.Args[1:], os.Stdout, os.Stderr)
}
