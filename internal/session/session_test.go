package session

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireUnix(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell-script fake bridge requires a Unix shell")
	}
}

// writeScript writes an executable fake bridge script.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-bridge")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func newTestSession(t *testing.T, script string) *Session {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	ClearUserConfigCache()
	t.Cleanup(ClearUserConfigCache)

	s := New(t.TempDir(), 80, 24)
	s.Bridge = writeScript(t, script)
	t.Cleanup(s.Close)
	return s
}

// collectUntilExit drains events until ExitEvent or timeout, returning the
// concatenated stdout bytes and the exit event.
func collectUntilExit(t *testing.T, s *Session, timeout time.Duration) (string, ExitEvent) {
	t.Helper()
	var out strings.Builder
	deadline := time.After(timeout)
	for {
		select {
		case ev := <-s.Events():
			switch e := ev.(type) {
			case StdoutEvent:
				out.Write(e.Data)
			case ExitEvent:
				return out.String(), e
			case ErrorEvent:
				t.Fatalf("unexpected error event: %v", e.Err)
			}
		case <-deadline:
			t.Fatalf("timed out waiting for exit; output so far: %q", out.String())
		}
	}
}

func TestSessionExitZero(t *testing.T) {
	requireUnix(t)
	s := newTestSession(t, `printf hello; exit 0`)
	require.NoError(t, s.Spawn(context.Background()))

	out, exit := collectUntilExit(t, s, 5*time.Second)
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "[OpenCode exited with code 0]")
	assert.Equal(t, 1, strings.Count(out, "[OpenCode exited with code"))
	assert.Equal(t, 0, exit.Code)
	assert.False(t, exit.Signaled)
	assert.Equal(t, StateExited, s.State())
}

func TestSessionExitCode(t *testing.T) {
	requireUnix(t)
	s := newTestSession(t, `exit 3`)
	require.NoError(t, s.Spawn(context.Background()))

	out, exit := collectUntilExit(t, s, 5*time.Second)
	assert.Contains(t, out, "[OpenCode exited with code 3]")
	assert.Equal(t, 3, exit.Code)
	assert.False(t, exit.Signaled)
}

func TestSessionChunkOrdering(t *testing.T) {
	requireUnix(t)
	s := newTestSession(t, `
for part in aaaaa bbbbb ccccc ddddd eeeee; do
  printf "%s" "$part"
  sleep 0.02
done`)
	require.NoError(t, s.Spawn(context.Background()))

	out, _ := collectUntilExit(t, s, 10*time.Second)
	body := strings.TrimSuffix(out, exitLine(0, false))
	assert.Equal(t, "aaaaabbbbbcccccddddd"+"eeeee", body)
}

func TestSessionStderrForwarded(t *testing.T) {
	requireUnix(t)
	s := newTestSession(t, `printf oops >&2; exit 0`)
	require.NoError(t, s.Spawn(context.Background()))

	var stderr strings.Builder
	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev := <-s.Events():
			switch e := ev.(type) {
			case StderrEvent:
				stderr.Write(e.Data)
			case ExitEvent:
				assert.Equal(t, "oops", stderr.String())
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for exit")
		}
	}
}

func TestSessionSpawnArgs(t *testing.T) {
	requireUnix(t)
	s := newTestSession(t, `printf "%s|%s|%s" "$1" "$2" "$3"`)
	s.Binary = "/fake/opencode"
	require.NoError(t, s.Spawn(context.Background()))

	out, _ := collectUntilExit(t, s, 5*time.Second)
	assert.Contains(t, out, "80|24|/fake/opencode")
}

func TestSessionEnv(t *testing.T) {
	requireUnix(t)
	s := newTestSession(t, `printf "%s" "$TERM"`)
	require.NoError(t, s.Spawn(context.Background()))

	out, _ := collectUntilExit(t, s, 5*time.Second)
	assert.Contains(t, out, "xterm-256color")
}

func TestSessionSpawnFailure(t *testing.T) {
	requireUnix(t)
	s := newTestSession(t, "")
	s.Bridge = filepath.Join(t.TempDir(), "does-not-exist")

	err := s.Spawn(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateErrored, s.State())

	// Inline error line, then the terminal ErrorEvent.
	var sawErrLine, sawErrEvent bool
	deadline := time.After(2 * time.Second)
	for !sawErrEvent {
		select {
		case ev := <-s.Events():
			switch e := ev.(type) {
			case StdoutEvent:
				if strings.Contains(string(e.Data), "Error") {
					sawErrLine = true
				}
			case ErrorEvent:
				sawErrEvent = true
				assert.Error(t, e.Err)
			}
		case <-deadline:
			t.Fatal("timed out waiting for error event")
		}
	}
	assert.True(t, sawErrLine, "expected an inline line containing Error")

	// Session must remain disposable without panicking.
	s.Close()
	assert.Equal(t, StateDisposed, s.State())
}

func TestSessionCloseIdempotent(t *testing.T) {
	requireUnix(t)
	s := newTestSession(t, `sleep 30`)
	require.NoError(t, s.Spawn(context.Background()))

	s.Close()
	s.Close()
	assert.Equal(t, StateDisposed, s.State())
}

func TestSessionCloseBeforeSpawn(t *testing.T) {
	requireUnix(t)
	s := newTestSession(t, "")
	s.Close()
	assert.Equal(t, StateDisposed, s.State())

	// Spawn after disposal is refused.
	assert.Error(t, s.Spawn(context.Background()))
}

func TestSessionWriteForwarded(t *testing.T) {
	requireUnix(t)
	s := newTestSession(t, `exec cat`)
	require.NoError(t, s.Spawn(context.Background()))

	s.Write([]byte("typed input"))

	var out strings.Builder
	deadline := time.After(5 * time.Second)
	for !strings.Contains(out.String(), "typed input") {
		select {
		case ev := <-s.Events():
			if e, ok := ev.(StdoutEvent); ok {
				out.Write(e.Data)
			}
		case <-deadline:
			t.Fatalf("input never echoed; got %q", out.String())
		}
	}
	s.Close()
}

func TestSessionWriteDroppedWhenNotRunning(t *testing.T) {
	requireUnix(t)
	s := newTestSession(t, "")

	// Never spawned: must not panic, must not queue.
	s.Write([]byte("dropped"))

	s.Close()
	s.Write([]byte("dropped again"))
}

func TestSessionPasteImage(t *testing.T) {
	requireUnix(t)
	s := newTestSession(t, `exec cat`)
	require.NoError(t, s.Spawn(context.Background()))

	img := []byte{0x89, 'P', 'N', 'G', 1, 2, 3}
	path, err := s.PasteImage(img, "png")
	require.NoError(t, err)
	defer os.Remove(path)

	// The temp file holds the raw bytes.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, img, data)

	// stdin received the quoted path, not the image bytes.
	var out strings.Builder
	deadline := time.After(5 * time.Second)
	for !strings.Contains(out.String(), `"`+path+`"`) {
		select {
		case ev := <-s.Events():
			if e, ok := ev.(StdoutEvent); ok {
				out.Write(e.Data)
			}
		case <-deadline:
			t.Fatalf("quoted path never echoed; got %q", out.String())
		}
	}
	assert.NotContains(t, out.String(), string(img))
	s.Close()
}

func TestSessionResizeControlSequence(t *testing.T) {
	requireUnix(t)
	s := newTestSession(t, `exec cat`)
	require.NoError(t, s.Spawn(context.Background()))

	s.Resize(100, 30)

	var out strings.Builder
	deadline := time.After(5 * time.Second)
	for !strings.Contains(out.String(), "\x1b]RESIZE;100;30\x07") {
		select {
		case ev := <-s.Events():
			if e, ok := ev.(StdoutEvent); ok {
				out.Write(e.Data)
			}
		case <-deadline:
			t.Fatalf("resize sequence never seen; got %q", out.String())
		}
	}
	s.Close()
}

func TestSessionInvalidResizeSuppressed(t *testing.T) {
	requireUnix(t)
	s := newTestSession(t, `exec cat`)
	require.NoError(t, s.Spawn(context.Background()))

	s.Resize(0, 30)
	s.Resize(-1, -1)
	time.Sleep(100 * time.Millisecond)

	// Nothing reached stdin, so nothing echoes back.
	select {
	case ev := <-s.Events():
		if e, ok := ev.(StdoutEvent); ok {
			assert.NotContains(t, string(e.Data), "RESIZE")
		}
	default:
	}
	s.Close()
}

func TestNewFallbackDimensions(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	ClearUserConfigCache()
	t.Cleanup(ClearUserConfigCache)

	s := New(t.TempDir(), 0, -5)
	defer s.Close()
	assert.Equal(t, 80, s.Cols)
	assert.Equal(t, 24, s.Rows)
}

func TestNewUniqueIDs(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	ClearUserConfigCache()
	t.Cleanup(ClearUserConfigCache)

	a := New(t.TempDir(), 80, 24)
	defer a.Close()
	b := New(t.TempDir(), 80, 24)
	defer b.Close()
	assert.NotEqual(t, a.ID, b.ID)
}

func TestExitLine(t *testing.T) {
	assert.Equal(t, "\r\n[OpenCode exited with code 0]\r\n", exitLine(0, false))
	assert.Equal(t, "\r\n[OpenCode exited with code 137]\r\n", exitLine(137, false))
	assert.Equal(t, "\r\n[OpenCode exited with code none]\r\n", exitLine(143, true))
}

func TestErrorLineContainsError(t *testing.T) {
	line := errorLine(os.ErrNotExist)
	assert.Contains(t, line, "Error")
	assert.Contains(t, line, os.ErrNotExist.Error())
}
