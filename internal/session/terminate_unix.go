//go:build !windows

package session

import (
	"os/exec"
	"syscall"
)

// setSysProcAttr puts the bridge in its own process group so termination
// reaches the whole tree (bridge, PTY child, its descendants).
func setSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// terminateProcess sends SIGTERM to the bridge's process group, falling
// back to killing the single process when the group lookup fails (the
// child may already be reaped).
func terminateProcess(cmd *exec.Cmd) {
	pgid, err := syscall.Getpgid(cmd.Process.Pid)
	if err == nil {
		_ = syscall.Kill(-pgid, syscall.SIGTERM)
	} else {
		_ = cmd.Process.Kill()
	}
}
