//go:build !unix

package supervisor

import (
	"errors"
	"os"
	"os/exec"
)

func detach(cmd *exec.Cmd) {}

// terminateProcess has no cooperative signal outside unix; it kills.
func terminateProcess(cmd *exec.Cmd) error { return killProcess(cmd) }

func killProcess(cmd *exec.Cmd) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}
