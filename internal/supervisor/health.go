package supervisor

import (
	"context"
	"io"
	"net/http"
	"time"
)

// WaitForHealth polls the server's /health endpoint until it answers 200,
// the timeout elapses (HealthTimeoutError), the child exits
// (ProcessExitedError) or ctx is done. timeout <= 0 selects the configured
// default. Connection failures and non-200 responses count as not ready.
func (s *Supervisor) WaitForHealth(ctx context.Context, timeout time.Duration) error {
	s.mu.Lock()
	r, ok := s.state.(*running)
	s.mu.Unlock()
	if !ok {
		return ErrNotStarted
	}
	if timeout <= 0 {
		timeout = s.cfg.HealthTimeout
	}
	url := s.baseURL(r.port) + HealthPath
	log := s.log.With().Str("run_id", r.runID).Str("url", url).Logger()

	start := time.Now()
	deadline := start.Add(timeout)
	for time.Now().Before(deadline) {
		if r.exited() {
			return s.exitedBeforeReady(r)
		}
		if s.probe(ctx, url) {
			readySeconds.Observe(time.Since(start).Seconds())
			log.Info().Dur("elapsed", time.Since(start)).Str("event", EventHealthReady).Msg("server healthy")
			s.publisher.Publish(Event{Name: EventHealthReady, ModelID: r.model, Fields: map[string]any{"port": r.port, "elapsed": time.Since(start)}})
			return nil
		}
		t := time.NewTimer(s.cfg.PollInterval)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-r.done:
			t.Stop()
			return s.exitedBeforeReady(r)
		case <-t.C:
		}
	}
	log.Warn().Dur("timeout", timeout).Str("event", EventHealthTimeout).Msg("server not healthy in time")
	s.publisher.Publish(Event{Name: EventHealthTimeout, ModelID: r.model, Fields: map[string]any{"port": r.port, "timeout": timeout}})
	return &HealthTimeoutError{Port: r.port, Timeout: timeout}
}

func (s *Supervisor) exitedBeforeReady(r *running) error {
	return &ProcessExitedError{Port: r.port, Err: r.exitErr, StderrTail: r.stderr.String()}
}

// probe issues a single GET with the request timeout and reports whether it
// got a 200. Every transport error is treated as not ready.
func (s *Supervisor) probe(ctx context.Context, url string) bool {
	ok, err := Probe(ctx, s.httpClient, url, s.cfg.RequestTimeout)
	switch {
	case err != nil:
		healthPollsTotal.WithLabelValues(pollError).Inc()
		s.log.Debug().Err(err).Str("url", url).Msg("health probe failed")
	case ok:
		healthPollsTotal.WithLabelValues(pollOK).Inc()
	default:
		healthPollsTotal.WithLabelValues(pollNotReady).Inc()
	}
	return ok
}

// Probe performs one health GET against url. It returns true only on a 200;
// err is non-nil when no response was received at all.
func Probe(ctx context.Context, client *http.Client, url string, timeout time.Duration) (bool, error) {
	if client == nil {
		client = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	return resp.StatusCode == http.StatusOK, nil
}

// Healthy performs a single probe of the running server. It is false when
// no server is tracked.
func (s *Supervisor) Healthy(ctx context.Context) bool {
	base := s.BaseURL()
	if base == "" {
		return false
	}
	ok, _ := Probe(ctx, s.httpClient, base+HealthPath, s.cfg.RequestTimeout)
	return ok
}
