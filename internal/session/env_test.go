package session

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildEnvPrefixesPath(t *testing.T) {
	sep := string(os.PathListSeparator)
	base := []string{"PATH=/usr/bin" + sep + "/bin", "EDITOR=vi"}

	env := BuildEnv(base, "/opt/opencode/bin", "xterm-256color")

	var path string
	for _, kv := range env {
		if strings.HasPrefix(kv, "PATH=") {
			path = kv
		}
	}
	assert.Equal(t, "PATH=/opt/opencode/bin"+sep+"/usr/bin"+sep+"/bin", path)
	assert.Contains(t, env, "EDITOR=vi")
}

func TestBuildEnvForcesTerm(t *testing.T) {
	env := BuildEnv([]string{"TERM=dumb"}, "", "xterm-256color")
	assert.Contains(t, env, "TERM=xterm-256color")
	assert.NotContains(t, env, "TERM=dumb")
}

func TestBuildEnvAddsMissingVars(t *testing.T) {
	env := BuildEnv([]string{"HOME=/home/u"}, "/opt/bin", "xterm-256color")
	assert.Contains(t, env, "PATH=/opt/bin")
	assert.Contains(t, env, "TERM=xterm-256color")
	assert.Contains(t, env, "HOME=/home/u")
}

func TestBuildEnvEmptyPrefixKeepsPath(t *testing.T) {
	env := BuildEnv([]string{"PATH=/usr/bin"}, "", "xterm-256color")
	assert.Contains(t, env, "PATH=/usr/bin")
}

func TestExpandPathTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "x"), ExpandPath("~/x"))
	assert.Equal(t, home, ExpandPath("~"))
	assert.Equal(t, "/abs/path", ExpandPath("/abs/path"))
}

func TestExpandPathEnvVar(t *testing.T) {
	t.Setenv("OPENCODE_TEST_DIR", "/data")
	assert.Equal(t, "/data/x", ExpandPath("$OPENCODE_TEST_DIR/x"))
}
