//go:build !windows

package server

import (
	"os/exec"
	"syscall"
)

// startDetached starts cmd in its own session so it outlives this process.
func startDetached(cmd *exec.Cmd) error {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return err
	}
	if cmd.Process != nil {
		_ = cmd.Process.Release()
	}
	return nil
}
