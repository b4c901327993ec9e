package cli

import (
	"context"
	"fmt"
	"time"
)

// Defaults used by the smoke command; they mirror a small chat model that
// fits on a single consumer GPU.
const (
	defaultSmokeModel = "TinyLlama/TinyLlama-1.1B-Chat-v1.0"
	defaultSmokePort  = 8000
)

// runSmoke starts the server, waits for health and always terminates it.
func runSmoke(ctx context.Context, a *app, model string, port int, timeout time.Duration) (err error) {
	sup, err := a.newSupervisor()
	if err != nil {
		return err
	}
	defer func() {
		_ = sup.Terminate()
		fmt.Fprintln(a.out, "Server terminated and accelerator memory released.")
	}()

	if err := sup.Start(model, port); err != nil {
		return err
	}
	if err := sup.WaitForHealth(ctx, timeout); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Server is alive and healthy on port %d.\n", port)
	return nil
}
