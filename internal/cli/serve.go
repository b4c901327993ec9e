package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"vllmsup/internal/httpapi"
)

// runServe holds the server up and exposes the status API until ctx is done.
func runServe(ctx context.Context, a *app, model string, port int, timeout time.Duration, statusAddr string) error {
	sup, err := a.newSupervisor()
	if err != nil {
		return err
	}
	defer func() { _ = sup.Terminate() }()

	if err := sup.Start(model, port); err != nil {
		return err
	}
	if err := sup.WaitForHealth(ctx, timeout); err != nil {
		return err
	}

	ln, err := net.Listen("tcp", statusAddr)
	if err != nil {
		return fmt.Errorf("status listener: %w", err)
	}
	mux := httpapi.NewMux(sup, a.log.With().Str("component", "httpapi").Logger(), a.httpOptions())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", ln.Addr().String()).Str("upstream", sup.BaseURL()).Msg("status api listening")
		errCh <- srv.Serve(ln)
	}()
	fmt.Fprintf(a.out, "Serving %s on port %d; status API on %s\n", model, port, ln.Addr())

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("status server: %w", err)
		}
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Warn().Err(err).Msg("graceful shutdown error")
	}
	return nil
}
