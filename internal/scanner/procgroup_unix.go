//go:build unix

package scanner

import (
	"os/exec"
	"syscall"
)

// isolateProcessGroup runs the tool in its own process group so that
// cancelling kills everything it spawned, not just the direct child.
func isolateProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
