//go:build windows

package session

import "os/exec"

func setSysProcAttr(cmd *exec.Cmd) {}

func terminateProcess(cmd *exec.Cmd) {
	_ = cmd.Process.Kill()
}
