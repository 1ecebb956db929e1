//go:build !windows
// +build !windows

package bridge

import (
	"bytes"
	"strings"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func runBridge(t *testing.T, stdin string, cmd ...string) (int, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Run(strings.NewReader(stdin), &stdout, &stderr, 80, 24, cmd[0], cmd[1:]...)
	return code, &stdout, &stderr
}

func TestRunReturnsChildExitCode(t *testing.T) {
	code, _, _ := runBridge(t, "", "sh", "-c", "exit 3")
	assert.Equal(t, 3, code)
}

func TestRunZeroExit(t *testing.T) {
	code, _, _ := runBridge(t, "", "sh", "-c", "exit 0")
	assert.Equal(t, 0, code)
}

func TestRunSignaledChild(t *testing.T) {
	code, _, _ := runBridge(t, "", "sh", "-c", "kill -TERM $$")
	assert.Equal(t, 128+int(syscall.SIGTERM), code)
}

func TestRunForwardsChildOutput(t *testing.T) {
	code, stdout, _ := runBridge(t, "", "sh", "-c", "printf bridged-output")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "bridged-output")
}

func TestRunUnstartableCommand(t *testing.T) {
	code, _, stderr := runBridge(t, "", "/nonexistent/opencode-binary")
	assert.Equal(t, 127, code)
	assert.Contains(t, stderr.String(), "opencode-bridge:")
}
