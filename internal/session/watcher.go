package session

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/asheshgoplani/opencode-console/internal/logging"
)

var configLog = logging.ForComponent(logging.CompConfig)

// ConfigWatcher watches the user config file with fsnotify and delivers a
// reload notification after changes settle. The watch covers the config
// directory rather than the file itself: SaveUserConfig replaces the file
// by atomic rename, which would orphan a file-level watch.
type ConfigWatcher struct {
	configPath string
	watcher    *fsnotify.Watcher
	reloadCh   chan struct{}
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewConfigWatcher creates a watcher for the user config file.
// Call Start() in a goroutine, then read from ReloadCh().
func NewConfigWatcher() (*ConfigWatcher, error) {
	configPath, err := GetUserConfigPath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0o700); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &ConfigWatcher{
		configPath: configPath,
		watcher:    watcher,
		reloadCh:   make(chan struct{}, 1),
		ctx:        ctx,
		cancel:     cancel,
	}, nil
}

// Start begins watching. Must be called in a goroutine.
// Blocks until Stop() is called.
func (w *ConfigWatcher) Start() {
	if err := w.watcher.Add(filepath.Dir(w.configPath)); err != nil {
		configLog.Warn("config_watcher_add_failed",
			slog.String("dir", filepath.Dir(w.configPath)),
			slog.String("error", err.Error()),
		)
		return
	}

	// Debounce timer: editors and SaveUserConfig produce bursts of events
	var debounceTimer *time.Timer

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if filepath.Base(event.Name) != UserConfigFileName {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(100*time.Millisecond, w.notifyReload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			configLog.Warn("config_watcher_error", slog.String("error", err.Error()))
		}
	}
}

// Stop shuts down the watcher.
func (w *ConfigWatcher) Stop() {
	w.cancel()
	_ = w.watcher.Close()
}

// ReloadCh returns the channel that delivers reload notifications.
func (w *ConfigWatcher) ReloadCh() <-chan struct{} {
	return w.reloadCh
}

func (w *ConfigWatcher) notifyReload() {
	ClearUserConfigCache()
	configLog.Debug("config_reloaded", slog.String("path", w.configPath))

	// Non-blocking send: a pending notification already covers this change
	select {
	case w.reloadCh <- struct{}{}:
	default:
	}
}
