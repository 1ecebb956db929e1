package session

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"

	dark "github.com/thiagokokada/dark-mode-go"
)

// UserConfigFileName is the TOML config file for user preferences
const UserConfigFileName = "config.toml"

// UserConfig represents user-facing configuration in TOML format
type UserConfig struct {
	// Theme sets the color scheme: "dark" (default), "light", or "system"
	Theme string `toml:"theme"`

	// OpenCode defines how the OpenCode binary is launched
	OpenCode OpenCodeSettings `toml:"opencode"`

	// Terminal defines initial terminal dimensions and terminal type
	Terminal TerminalSettings `toml:"terminal"`

	// Logs defines debug log management settings
	Logs LogSettings `toml:"logs"`

	// Web defines the WebSocket mirror server settings
	Web WebSettings `toml:"web"`

	// History defines session history recording settings
	History HistorySettings `toml:"history"`
}

// OpenCodeSettings defines how new sessions launch the OpenCode CLI
type OpenCodeSettings struct {
	// Command overrides binary resolution entirely (path or bare name).
	// When empty, the well-known install locations are searched.
	Command string `toml:"command"`

	// Model is passed as --model for new sessions
	// Format: "provider/model" (e.g., "anthropic/claude-sonnet-4-5")
	// If empty, OpenCode uses its own default
	Model string `toml:"model"`

	// Agent is passed as --agent for new sessions
	Agent string `toml:"agent"`

	// ExtraArgs are appended verbatim to every session's command line
	ExtraArgs []string `toml:"extra_args"`
}

// TerminalSettings defines initial PTY dimensions and the terminal type
// advertised to the child
type TerminalSettings struct {
	// Cols is the initial column count (default: 80)
	Cols int `toml:"cols"`

	// Rows is the initial row count (default: 24)
	Rows int `toml:"rows"`

	// Term is the TERM value set on the child (default: "xterm-256color")
	Term string `toml:"term"`
}

// GetCols returns the initial column count, defaulting to 80
func (t *TerminalSettings) GetCols() int {
	if t.Cols <= 0 {
		return defaultCols
	}
	return t.Cols
}

// GetRows returns the initial row count, defaulting to 24
func (t *TerminalSettings) GetRows() int {
	if t.Rows <= 0 {
		return defaultRows
	}
	return t.Rows
}

// GetTerm returns the TERM value, defaulting to a 256-color type
func (t *TerminalSettings) GetTerm() string {
	if t.Term == "" {
		return "xterm-256color"
	}
	return t.Term
}

// LogSettings defines debug log management configuration
type LogSettings struct {
	// DebugLevel sets the minimum log level: "debug", "info", "warn", "error"
	// Default: "info"
	DebugLevel string `toml:"debug_level"`

	// DebugFormat sets the log format: "json" (default) or "text"
	DebugFormat string `toml:"debug_format"`

	// DebugMaxMB is the max size in MB for debug.log before rotation
	// Default: 10
	DebugMaxMB int `toml:"debug_max_mb"`

	// DebugBackups is the number of rotated debug.log files to keep
	// Default: 5
	DebugBackups int `toml:"debug_backups"`

	// DebugRetentionDays is the number of days to keep rotated debug logs
	// Default: 10
	DebugRetentionDays int `toml:"debug_retention_days"`

	// DebugCompress enables gzip compression for rotated debug logs
	// Default: true
	DebugCompress *bool `toml:"debug_compress"`

	// RingBufferMB is the in-memory ring buffer size in MB for crash dumps
	// Default: 10
	RingBufferMB int `toml:"ring_buffer_mb"`

	// PprofEnabled starts a pprof server on localhost:6060 when debug mode is active
	// Default: false
	PprofEnabled bool `toml:"pprof_enabled"`

	// AggregateIntervalS is the event aggregation flush interval in seconds
	// Default: 30
	AggregateIntervalS int `toml:"aggregate_interval_secs"`
}

// GetDebugCompress returns whether rotated logs are compressed, defaulting to true
func (l *LogSettings) GetDebugCompress() bool {
	if l.DebugCompress == nil {
		return true
	}
	return *l.DebugCompress
}

// WebSettings defines the WebSocket mirror server configuration
type WebSettings struct {
	// Listen is the bind address for `serve` (default: "127.0.0.1:7684")
	Listen string `toml:"listen"`

	// Token, when set, is required as a Bearer token on every request
	Token string `toml:"token"`

	// ReadOnly rejects input and resize messages from web clients
	ReadOnly bool `toml:"read_only"`

	// AllowedOrigins is the Origin allowlist for WebSocket upgrades.
	// Empty means same-host origins only.
	AllowedOrigins []string `toml:"allowed_origins"`
}

// GetListen returns the bind address, defaulting to loopback
func (w *WebSettings) GetListen() string {
	if w.Listen == "" {
		return "127.0.0.1:7684"
	}
	return w.Listen
}

// HistorySettings defines session history recording configuration
type HistorySettings struct {
	// Enabled records every session in the history database (default: true)
	Enabled *bool `toml:"enabled"`

	// KeepDays prunes history records older than this many days (default: 90)
	KeepDays int `toml:"keep_days"`
}

// GetEnabled returns whether history recording is on, defaulting to true
func (h *HistorySettings) GetEnabled() bool {
	if h.Enabled == nil {
		return true
	}
	return *h.Enabled
}

// GetKeepDays returns the history retention window, defaulting to 90 days
func (h *HistorySettings) GetKeepDays() int {
	if h.KeepDays <= 0 {
		return 90
	}
	return h.KeepDays
}

var defaultUserConfig = UserConfig{}

// Cache for user config (loaded once per run)
var (
	userConfigCache   *UserConfig
	userConfigCacheMu sync.RWMutex
)

// GetUserConfigPath returns the path to the user config file
func GetUserConfigPath() (string, error) {
	dir, err := GetConsoleDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, UserConfigFileName), nil
}

// LoadUserConfig loads the user configuration from TOML file
// Returns cached config after first load
func LoadUserConfig() (*UserConfig, error) {
	userConfigCacheMu.RLock()
	if userConfigCache != nil {
		defer userConfigCacheMu.RUnlock()
		return userConfigCache, nil
	}
	userConfigCacheMu.RUnlock()

	userConfigCacheMu.Lock()
	defer userConfigCacheMu.Unlock()

	// Double-check after acquiring write lock
	if userConfigCache != nil {
		return userConfigCache, nil
	}

	configPath, err := GetUserConfigPath()
	if err != nil {
		userConfigCache = &defaultUserConfig
		return userConfigCache, nil
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		userConfigCache = &defaultUserConfig
		return userConfigCache, nil
	}

	var config UserConfig
	if _, err := toml.DecodeFile(configPath, &config); err != nil {
		// Return error so the caller can display it; still cache the
		// default to prevent repeated parse attempts
		userConfigCache = &defaultUserConfig
		return userConfigCache, fmt.Errorf("config.toml parse error: %w", err)
	}

	userConfigCache = &config
	return userConfigCache, nil
}

// ReloadUserConfig forces a reload of the user config
func ReloadUserConfig() (*UserConfig, error) {
	userConfigCacheMu.Lock()
	userConfigCache = nil
	userConfigCacheMu.Unlock()
	return LoadUserConfig()
}

// ClearUserConfigCache clears the cached user config, allowing tests and
// the config watcher to reset state. The next LoadUserConfig() reads fresh
// from disk.
func ClearUserConfigCache() {
	userConfigCacheMu.Lock()
	userConfigCache = nil
	userConfigCacheMu.Unlock()
}

// SaveUserConfig writes the config to config.toml using atomic write pattern
// This clears the cache so next LoadUserConfig() reads fresh values
func SaveUserConfig(config *UserConfig) error {
	configPath, err := GetUserConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.WriteString("# OpenCode Console Configuration\n\n"); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	// Atomic write: temp file, fsync, rename. Prevents a torn config on
	// crash or power loss.
	tmpPath := configPath + ".tmp"

	if err := os.WriteFile(tmpPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := syncConfigFile(tmpPath); err != nil {
		// Atomic rename still provides some safety
		_ = err
	}

	if err := os.Rename(tmpPath, configPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to finalize config save: %w", err)
	}

	ClearUserConfigCache()
	return nil
}

// syncConfigFile calls fsync on a file to ensure data is written to disk
func syncConfigFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}

// GetTheme returns the configured theme, defaulting to "dark"
func GetTheme() string {
	config, err := LoadUserConfig()
	if err != nil || config == nil {
		return "dark"
	}
	switch config.Theme {
	case "dark", "light", "system":
		return config.Theme
	default:
		return "dark"
	}
}

// ResolveTheme resolves the configured theme to "dark" or "light".
// If theme is "system", detects the OS dark mode setting.
// Falls back to "dark" on detection failure.
func ResolveTheme() string {
	theme := GetTheme()
	if theme != "system" {
		return theme
	}
	isDark, err := dark.IsDarkMode()
	if err != nil {
		return "dark"
	}
	if isDark {
		return "dark"
	}
	return "light"
}

// GetLogSettings returns log management settings with defaults applied
func GetLogSettings() LogSettings {
	settings := LogSettings{}
	if config, err := LoadUserConfig(); err == nil && config != nil {
		settings = config.Logs
	}

	if settings.DebugLevel == "" {
		settings.DebugLevel = "info"
	}
	if settings.DebugMaxMB <= 0 {
		settings.DebugMaxMB = 10
	}
	if settings.DebugBackups <= 0 {
		settings.DebugBackups = 5
	}
	if settings.DebugRetentionDays <= 0 {
		settings.DebugRetentionDays = 10
	}
	if settings.RingBufferMB <= 0 {
		settings.RingBufferMB = 10
	}
	if settings.AggregateIntervalS <= 0 {
		settings.AggregateIntervalS = 30
	}
	return settings
}

// CreateExampleConfig creates an example config file if none exists
func CreateExampleConfig() error {
	configPath, err := GetUserConfigPath()
	if err != nil {
		return err
	}

	// Don't overwrite existing config
	if _, err := os.Stat(configPath); err == nil {
		return nil
	}

	exampleConfig := `# OpenCode Console Configuration
# This file is loaded on startup and reloaded when it changes.

# Color scheme: "dark" (default), "light", or "system"
# theme = "dark"

# [opencode]
# Override binary resolution with an explicit command or path
# command = "~/.opencode/bin/opencode"
# Model for new sessions (format: "provider/model")
# model = "anthropic/claude-sonnet-4-5"
# Agent for new sessions
# agent = ""
# Extra arguments appended to every session
# extra_args = []

# [terminal]
# Initial PTY dimensions (default: 80x24)
# cols = 120
# rows = 32
# TERM advertised to the child (default: "xterm-256color")
# term = "xterm-256color"

# [logs]
# Minimum level for ~/.opencode-console/debug.log: "debug", "info", "warn", "error"
# debug_level = "info"
# Log format: "json" (default) or "text"
# debug_format = "json"

# [web]
# Bind address for the 'serve' subcommand (default: loopback)
# listen = "127.0.0.1:7684"
# Require this Bearer token on every request
# token = ""
# Reject input and resize from web clients
# read_only = false

# [history]
# Record sessions in the history database (default: true)
# enabled = true
# Prune records older than this many days (default: 90)
# keep_days = 90
`

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	return os.WriteFile(configPath, []byte(exampleConfig), 0o600)
}
