//go:build windows
// +build windows

package bridge

import (
	"fmt"
	"io"
)

// Run is not available on Windows: the bridge helper relies on Unix PTY
// semantics. ConPTY support would need a separate helper.
func Run(stdin io.Reader, stdout, stderr io.Writer, cols, rows int, name string, args ...string) int {
	fmt.Fprintln(stderr, "opencode-bridge: not supported on Windows")
	return 1
}
