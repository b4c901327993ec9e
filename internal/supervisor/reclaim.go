package supervisor

import (
	"context"
	"errors"
	"os/exec"
	"runtime"
	"runtime/debug"
	"time"
)

// ErrRuntimeUnavailable reports that no accelerator runtime is present.
// Terminate treats it as a silent no-op.
var ErrRuntimeUnavailable = errors.New("accelerator runtime unavailable")

// MemoryReclaimer releases accelerator memory held on behalf of the server.
type MemoryReclaimer interface {
	Reclaim(ctx context.Context) error
}

// ReclaimerFunc adapts a function to MemoryReclaimer.
type ReclaimerFunc func(ctx context.Context) error

func (f ReclaimerFunc) Reclaim(ctx context.Context) error { return f(ctx) }

// NoopReclaimer is the default reclaimer; it does nothing.
type NoopReclaimer struct{}

func (NoopReclaimer) Reclaim(context.Context) error { return nil }

// unavailableExitCode is what the default torch helper exits with when CUDA
// is not available.
const unavailableExitCode = 3

// DefaultReclaimScript empties the CUDA cache and collects IPC handles when
// torch and a CUDA device are present.
const DefaultReclaimScript = `import sys
try:
    import torch
except ImportError:
    sys.exit(3)
if not torch.cuda.is_available():
    sys.exit(3)
torch.cuda.empty_cache()
torch.cuda.ipc_collect()
`

// ExecReclaimer runs an external helper to release accelerator memory.
// A missing executable or exit code 3 map to ErrRuntimeUnavailable.
type ExecReclaimer struct {
	Command string
	Args    []string
	Timeout time.Duration
}

// NewTorchReclaimer returns an ExecReclaimer running DefaultReclaimScript with python.
func NewTorchReclaimer(python string) *ExecReclaimer {
	if python == "" {
		python = DefaultCommand
	}
	return &ExecReclaimer{Command: python, Args: []string{"-c", DefaultReclaimScript}, Timeout: 30 * time.Second}
}

func (r *ExecReclaimer) Reclaim(ctx context.Context) error {
	if r == nil || r.Command == "" {
		return ErrRuntimeUnavailable
	}
	if _, err := exec.LookPath(r.Command); err != nil {
		return ErrRuntimeUnavailable
	}
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	err := exec.CommandContext(ctx, r.Command, r.Args...).Run()
	var ee *exec.ExitError
	if errors.As(err, &ee) && ee.ExitCode() == unavailableExitCode {
		return ErrRuntimeUnavailable
	}
	return err
}

// reclaimHostMemory runs the general memory reclamation pass.
func reclaimHostMemory() {
	runtime.GC()
	debug.FreeOSMemory()
}
