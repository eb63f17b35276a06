//go:build windows

package transport

import (
	"os/exec"
	"syscall"
)

func setProcessGroup(*exec.Cmd) {}

// signalGroup kills the provider; windows has no process group signals.
func signalGroup(cmd *exec.Cmd, signal syscall.Signal) error {
	if signal == syscall.SIGKILL {
		return cmd.Process.Kill()
	}
	return cmd.Process.Signal(signal)
}
