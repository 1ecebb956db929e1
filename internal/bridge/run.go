//go:build !windows
// +build !windows

package bridge

import (
	"fmt"
	"io"
	"os/exec"
	"syscall"

	"github.com/creack/pty"
)

// Run executes name with args inside a freshly allocated PTY sized
// cols×rows, relaying PTY output to stdout and stdin to the PTY while
// stripping and applying resize control sequences from stdin.
//
// Run blocks until the child exits and returns its exit code
// (128+signal when terminated by a signal, 127 when the command could
// not be started).
func Run(stdin io.Reader, stdout, stderr io.Writer, cols, rows int, name string, args ...string) int {
	cmd := exec.Command(name, args...)

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{
		Cols: uint16(cols),
		Rows: uint16(rows),
	})
	if err != nil {
		fmt.Fprintf(stderr, "opencode-bridge: %v\n", err)
		return 127
	}
	defer func() { _ = ptmx.Close() }()

	parser := NewParser(func(c, r int) {
		_ = pty.Setsize(ptmx, &pty.Winsize{Cols: uint16(c), Rows: uint16(r)})
		if cmd.Process != nil {
			// Nudge the child in case it doesn't watch the winsize ioctl.
			_ = cmd.Process.Signal(syscall.SIGWINCH)
		}
	})

	// PTY output to stdout. Read errors (EIO after child exit) end the loop.
	copyDone := make(chan struct{})
	go func() {
		defer close(copyDone)
		_, _ = io.Copy(stdout, ptmx)
	}()

	// Stdin to the PTY. Runs until stdin closes or a PTY write fails;
	// a blocked read here is abandoned when the bridge process exits.
	go func() {
		buf := make([]byte, 4096)
		for {
			n, rerr := stdin.Read(buf)
			if n > 0 {
				if literal := parser.Feed(buf[:n]); len(literal) > 0 {
					if _, werr := ptmx.Write(literal); werr != nil {
						return
					}
				}
			}
			if rerr != nil {
				if literal := parser.Flush(); len(literal) > 0 {
					_, _ = ptmx.Write(literal)
				}
				return
			}
		}
	}()

	waitErr := cmd.Wait()
	<-copyDone

	// Wait has reaped the child; Signal on a done process is a no-op, so
	// this only matters if something in its group outlived it.
	if cmd.Process != nil {
		_ = cmd.Process.Signal(syscall.SIGTERM)
	}

	return exitCode(cmd, waitErr)
}

// exitCode maps the wait result to an exit code, using 128+signal for
// signal-terminated children.
func exitCode(cmd *exec.Cmd, waitErr error) int {
	state := cmd.ProcessState
	if state == nil {
		if waitErr != nil {
			return 1
		}
		return 0
	}
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	if code := state.ExitCode(); code >= 0 {
		return code
	}
	return 1
}
