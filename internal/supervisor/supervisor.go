package supervisor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog"
)

// waitDelay bounds how long Wait keeps copying output after the child exits,
// in case grandchildren still hold the pipes open.
const waitDelay = 2 * time.Second

// Supervisor manages one model-server subprocess at a time.
type Supervisor struct {
	cfg        Config
	log        zerolog.Logger
	publisher  EventPublisher
	reclaimer  MemoryReclaimer
	httpClient *http.Client

	mu    sync.Mutex
	state procState
}

// Option customizes a Supervisor.
type Option func(*Supervisor)

// WithLogger installs a structured logger.
func WithLogger(l zerolog.Logger) Option { return func(s *Supervisor) { s.log = l } }

// WithPublisher installs an EventPublisher for lifecycle events.
func WithPublisher(p EventPublisher) Option {
	return func(s *Supervisor) {
		if p == nil {
			p = noopPublisher{}
		}
		s.publisher = p
	}
}

// WithReclaimer installs the accelerator memory reclaimer run by Terminate.
func WithReclaimer(r MemoryReclaimer) Option {
	return func(s *Supervisor) {
		if r == nil {
			r = NoopReclaimer{}
		}
		s.reclaimer = r
	}
}

// WithHTTPClient overrides the client used for health probes.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Supervisor) {
		if c != nil {
			s.httpClient = c
		}
	}
}

// New constructs an idle Supervisor from cfg.
func New(cfg Config, opts ...Option) *Supervisor {
	s := &Supervisor{
		cfg:       cfg.withDefaults(),
		log:       zerolog.Nop(),
		publisher: noopPublisher{},
		reclaimer: NoopReclaimer{},
		// Timeout=0: every probe carries its own context deadline.
		httpClient: &http.Client{Timeout: 0},
		state:      notStarted{},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Config returns the effective configuration after defaults.
func (s *Supervisor) Config() Config { return s.cfg }

// Start spawns the server for modelID on port and returns without waiting
// for readiness.
func (s *Supervisor) Start(modelID string, port int) error {
	modelID = strings.TrimSpace(modelID)
	if modelID == "" {
		return invalidArg("model id is empty")
	}
	if port <= 0 || port > 65535 {
		return invalidArg("port %d out of range", port)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.state.(*running); ok && !r.exited() {
		return ErrAlreadyRunning
	}

	runID := xid.New().String()
	log := s.log.With().Str("run_id", runID).Str("model", modelID).Int("port", port).Logger()

	args := append([]string(nil), s.cfg.BaseArgs...)
	args = append(args, "--model", modelID, "--port", strconv.Itoa(port))
	args = append(args, s.cfg.ExtraArgs...)

	cmd := exec.Command(s.cfg.Command, args...)
	cmd.Env = mergeEnv(os.Environ(), s.cfg.Env)
	cmd.WaitDelay = waitDelay
	detach(cmd)
	r := &running{
		cmd:    cmd,
		model:  modelID,
		port:   port,
		runID:  runID,
		stdout: newLineTail(log, "stdout"),
		stderr: newLineTail(log, "stderr"),
		done:   make(chan struct{}),
	}
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr

	if err := cmd.Start(); err != nil {
		spawnsTotal.WithLabelValues("error").Inc()
		log.Error().Err(err).Str("command", s.cfg.Command).Msg("spawn failed")
		return fmt.Errorf("start server: %w", err)
	}
	r.startedAt = time.Now()
	s.state = r
	spawnsTotal.WithLabelValues("ok").Inc()
	runningGauge.Set(1)
	log.Info().Int("pid", cmd.Process.Pid).Str("command", s.cfg.Command).Strs("args", args).Str("event", EventSpawnStart).Msg("server spawned")
	s.publisher.Publish(Event{Name: EventSpawnStart, ModelID: modelID, Fields: map[string]any{"pid": cmd.Process.Pid, "port": port, "run_id": runID}})

	go s.reap(r, log)
	return nil
}

// reap waits for the child so its exit status can be polled without blocking.
func (s *Supervisor) reap(r *running, log zerolog.Logger) {
	err := r.cmd.Wait()
	r.exitErr = err
	close(r.done)
	ev := log.Info()
	if err != nil {
		ev = log.Warn().Err(err)
	}
	ev.Int("pid", r.cmd.Process.Pid).Str("event", EventSpawnExit).Msg("server exited")
	fields := map[string]any{"pid": r.cmd.Process.Pid, "run_id": r.runID}
	if err != nil {
		fields["error"] = err.Error()
	}
	s.publisher.Publish(Event{Name: EventSpawnExit, ModelID: r.model, Fields: fields})
}

// Terminate stops the tracked child, if any, then releases accelerator and
// host memory. It is idempotent and safe to call before Start.
func (s *Supervisor) Terminate() error {
	s.mu.Lock()
	r, _ := s.state.(*running)
	s.state = notStarted{}
	s.mu.Unlock()
	runningGauge.Set(0)

	mode := stopNone
	var model string
	if r != nil {
		model = r.model
		if !r.exited() {
			mode = s.stop(r)
		}
	}
	terminationsTotal.WithLabelValues(mode).Inc()
	s.publisher.Publish(Event{Name: EventTerminate, ModelID: model, Fields: map[string]any{"mode": mode}})

	s.releaseMemory()
	return nil
}

// stop escalates SIGTERM to SIGKILL after the grace period and blocks until
// the child is reaped.
func (s *Supervisor) stop(r *running) string {
	log := s.log.With().Str("run_id", r.runID).Int("pid", r.cmd.Process.Pid).Logger()
	if err := terminateProcess(r.cmd); err != nil {
		log.Warn().Err(err).Msg("sigterm failed")
	}
	select {
	case <-r.done:
		log.Info().Str("mode", stopGraceful).Msg("server stopped")
		return stopGraceful
	case <-time.After(s.cfg.GracePeriod):
	}
	log.Warn().Dur("grace", s.cfg.GracePeriod).Msg("still alive after grace period; killing")
	if err := killProcess(r.cmd); err != nil {
		log.Warn().Err(err).Msg("sigkill failed")
	}
	<-r.done
	log.Info().Str("mode", stopForced).Msg("server stopped")
	return stopForced
}

func (s *Supervisor) releaseMemory() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := s.reclaimer.Reclaim(ctx); err != nil && !errors.Is(err, ErrRuntimeUnavailable) {
		s.log.Warn().Err(err).Msg("accelerator memory release failed")
	}
	reclaimHostMemory()
}

// Status returns a snapshot of the supervisor state.
func (s *Supervisor) Status() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.state.(*running)
	if !ok {
		return Snapshot{State: StateIdle}
	}
	snap := Snapshot{
		State:     StateRunning,
		Model:     r.model,
		Port:      r.port,
		PID:       r.cmd.Process.Pid,
		RunID:     r.runID,
		StartedAt: r.startedAt,
	}
	if r.exited() {
		snap.State = StateExited
		if r.exitErr != nil {
			snap.ExitErr = r.exitErr.Error()
		}
	}
	return snap
}

// BaseURL returns the server's base URL, or "" when not started.
func (s *Supervisor) BaseURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.state.(*running); ok {
		return s.baseURL(r.port)
	}
	return ""
}

func (s *Supervisor) baseURL(port int) string {
	return fmt.Sprintf("http://%s:%d", s.cfg.Host, port)
}

// mergeEnv overlays extra onto base (KEY=VALUE entries).
func mergeEnv(base []string, extra map[string]string) []string {
	if len(extra) == 0 {
		return base
	}
	out := make([]string, 0, len(base)+len(extra))
	for _, kv := range base {
		k, _, _ := strings.Cut(kv, "=")
		if _, ok := extra[k]; ok {
			continue
		}
		out = append(out, kv)
	}
	for k, v := range extra {
		out = append(out, k+"="+v)
	}
	return out
}
