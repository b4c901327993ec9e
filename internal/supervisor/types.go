package supervisor

import (
	"os/exec"
	"time"
)

// State is the externally visible lifecycle state of the supervised process.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StateExited  State = "exited"
)

// procState is either notStarted or *running.
type procState interface{ isProcState() }

type notStarted struct{}

func (notStarted) isProcState() {}

// running is the state between a successful Start and Terminate.
// done is closed by the reaper once Wait has returned; exitErr is only
// read after done is closed.
type running struct {
	cmd       *exec.Cmd
	model     string
	port      int
	runID     string
	startedAt time.Time
	stdout    *lineTail
	stderr    *lineTail

	done    chan struct{}
	exitErr error
}

func (*running) isProcState() {}

// exited reports whether the child has been reaped, without blocking.
func (r *running) exited() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

// Snapshot is a read-only projection of the supervisor state.
type Snapshot struct {
	State     State     `json:"state"`
	Model     string    `json:"model,omitempty"`
	Port      int       `json:"port,omitempty"`
	PID       int       `json:"pid,omitempty"`
	RunID     string    `json:"run_id,omitempty"`
	StartedAt time.Time `json:"started_at,omitempty"`
	ExitErr   string    `json:"exit_error,omitempty"`
}
