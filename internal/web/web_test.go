package web

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/asheshgoplani/opencode-console/internal/session"
)

// startTestSession registers a session backed by a shell script standing in
// for the bridge helper.
func startTestSession(t *testing.T, m *session.Manager, body string) *session.Handle {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell-script bridge stand-in requires a unix shell")
	}

	t.Setenv("HOME", t.TempDir())
	session.ClearUserConfigCache()
	t.Cleanup(session.ClearUserConfigCache)

	script := filepath.Join(t.TempDir(), "fake-bridge")
	if err := os.WriteFile(script, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("failed to write fake bridge: %v", err)
	}

	sess := session.New(t.TempDir(), 80, 24)
	sess.Bridge = script
	handle, err := m.Start(context.Background(), sess)
	if err != nil {
		t.Fatalf("failed to start session: %v", err)
	}
	t.Cleanup(handle.Close)
	return handle
}
