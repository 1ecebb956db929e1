package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigWatcherDeliversReload(t *testing.T) {
	setTestHome(t)

	w, err := NewConfigWatcher()
	require.NoError(t, err)
	go w.Start()
	defer w.Stop()

	// Let the watcher register before mutating the directory.
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, SaveUserConfig(&UserConfig{Theme: "light"}))

	select {
	case <-w.ReloadCh():
	case <-time.After(3 * time.Second):
		t.Fatal("no reload notification after config save")
	}

	// The cache was cleared, so the next load sees the new value.
	cfg, err := LoadUserConfig()
	require.NoError(t, err)
	assert.Equal(t, "light", cfg.Theme)
}

func TestConfigWatcherCoalescesBursts(t *testing.T) {
	setTestHome(t)

	w, err := NewConfigWatcher()
	require.NoError(t, err)
	go w.Start()
	defer w.Stop()

	time.Sleep(100 * time.Millisecond)

	for i := 0; i < 5; i++ {
		require.NoError(t, SaveUserConfig(&UserConfig{Theme: "dark"}))
	}

	select {
	case <-w.ReloadCh():
	case <-time.After(3 * time.Second):
		t.Fatal("no reload notification after burst")
	}

	// The burst settles into at most one further pending notification.
	time.Sleep(300 * time.Millisecond)
	pending := 0
	for {
		select {
		case <-w.ReloadCh():
			pending++
			continue
		default:
		}
		break
	}
	assert.LessOrEqual(t, pending, 1)
}

func TestConfigWatcherStopIdempotentChannel(t *testing.T) {
	setTestHome(t)

	w, err := NewConfigWatcher()
	require.NoError(t, err)
	go w.Start()
	w.Stop()
}
