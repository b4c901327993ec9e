//go:build unix

package supervisor

import (
	"errors"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// detach places the child in its own process group so it does not receive
// the caller's terminal signals and its workers can be signalled together.
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// signalGroup delivers sig to the child's process group, falling back to the
// child alone when the group is gone.
func signalGroup(cmd *exec.Cmd, sig unix.Signal) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	pid := cmd.Process.Pid
	err := unix.Kill(-pid, sig)
	if errors.Is(err, unix.ESRCH) {
		err = unix.Kill(pid, sig)
	}
	if errors.Is(err, unix.ESRCH) {
		return nil
	}
	return err
}

func terminateProcess(cmd *exec.Cmd) error { return signalGroup(cmd, unix.SIGTERM) }

func killProcess(cmd *exec.Cmd) error { return signalGroup(cmd, unix.SIGKILL) }
