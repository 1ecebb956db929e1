package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setTestHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	ClearUserConfigCache()
	t.Cleanup(ClearUserConfigCache)
	return home
}

func TestLoadUserConfigMissingFile(t *testing.T) {
	setTestHome(t)

	cfg, err := LoadUserConfig()
	require.NoError(t, err)
	assert.Equal(t, 80, cfg.Terminal.GetCols())
	assert.Equal(t, 24, cfg.Terminal.GetRows())
	assert.Equal(t, "xterm-256color", cfg.Terminal.GetTerm())
	assert.True(t, cfg.History.GetEnabled())
	assert.Equal(t, 90, cfg.History.GetKeepDays())
	assert.Equal(t, "127.0.0.1:7684", cfg.Web.GetListen())
}

func TestLoadUserConfigParsesValues(t *testing.T) {
	home := setTestHome(t)

	dir := filepath.Join(home, ConsoleDirName)
	require.NoError(t, os.MkdirAll(dir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, UserConfigFileName), []byte(`
theme = "light"

[opencode]
command = "/custom/opencode"
model = "anthropic/claude-sonnet-4-5"
extra_args = ["--verbose"]

[terminal]
cols = 120
rows = 32
`), 0o600))

	cfg, err := LoadUserConfig()
	require.NoError(t, err)
	assert.Equal(t, "light", cfg.Theme)
	assert.Equal(t, "/custom/opencode", cfg.OpenCode.Command)
	assert.Equal(t, "anthropic/claude-sonnet-4-5", cfg.OpenCode.Model)
	assert.Equal(t, []string{"--verbose"}, cfg.OpenCode.ExtraArgs)
	assert.Equal(t, 120, cfg.Terminal.GetCols())
	assert.Equal(t, 32, cfg.Terminal.GetRows())
}

func TestLoadUserConfigCaches(t *testing.T) {
	setTestHome(t)

	first, err := LoadUserConfig()
	require.NoError(t, err)
	second, err := LoadUserConfig()
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestLoadUserConfigParseError(t *testing.T) {
	home := setTestHome(t)

	dir := filepath.Join(home, ConsoleDirName)
	require.NoError(t, os.MkdirAll(dir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, UserConfigFileName), []byte("theme = [broken"), 0o600))

	cfg, err := LoadUserConfig()
	assert.Error(t, err)
	// Default config is still usable after a parse error.
	require.NotNil(t, cfg)
	assert.Equal(t, 80, cfg.Terminal.GetCols())
}

func TestSaveUserConfigRoundTrip(t *testing.T) {
	home := setTestHome(t)

	cfg := &UserConfig{Theme: "light"}
	cfg.Terminal.Cols = 100
	cfg.OpenCode.Model = "anthropic/claude-sonnet-4-5"
	require.NoError(t, SaveUserConfig(cfg))

	// No stray temp file left behind.
	entries, err := os.ReadDir(filepath.Join(home, ConsoleDirName))
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp")
	}

	loaded, err := LoadUserConfig()
	require.NoError(t, err)
	assert.Equal(t, "light", loaded.Theme)
	assert.Equal(t, 100, loaded.Terminal.Cols)
	assert.Equal(t, "anthropic/claude-sonnet-4-5", loaded.OpenCode.Model)
}

func TestGetThemeValidation(t *testing.T) {
	setTestHome(t)

	require.NoError(t, SaveUserConfig(&UserConfig{Theme: "neon"}))
	assert.Equal(t, "dark", GetTheme())

	require.NoError(t, SaveUserConfig(&UserConfig{Theme: "light"}))
	assert.Equal(t, "light", GetTheme())
}

func TestResolveThemeNonSystem(t *testing.T) {
	setTestHome(t)

	require.NoError(t, SaveUserConfig(&UserConfig{Theme: "light"}))
	assert.Equal(t, "light", ResolveTheme())
}

func TestGetLogSettingsDefaults(t *testing.T) {
	setTestHome(t)

	s := GetLogSettings()
	assert.Equal(t, "info", s.DebugLevel)
	assert.Equal(t, 10, s.DebugMaxMB)
	assert.Equal(t, 5, s.DebugBackups)
	assert.Equal(t, 10, s.DebugRetentionDays)
	assert.True(t, s.GetDebugCompress())
	assert.Equal(t, 30, s.AggregateIntervalS)
}

func TestCreateExampleConfig(t *testing.T) {
	home := setTestHome(t)

	require.NoError(t, CreateExampleConfig())

	path := filepath.Join(home, ConsoleDirName, UserConfigFileName)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[opencode]")

	// Existing config is never overwritten.
	require.NoError(t, os.WriteFile(path, []byte(`theme = "light"`), 0o600))
	require.NoError(t, CreateExampleConfig())
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `theme = "light"`, string(data))
}
