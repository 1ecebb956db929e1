package session

import (
	"os"
	"path/filepath"
	"strings"
)

// BuildEnv returns the child environment: base with PATH prefixed by
// pathPrefix (the well-known install directories, so a PATH-resolved
// binary name finds them even when the parent shell's PATH is minimal)
// and TERM forced to term. All other variables pass through unchanged.
func BuildEnv(base []string, pathPrefix, term string) []string {
	env := make([]string, 0, len(base)+2)
	sawPath := false
	sawTerm := false

	for _, kv := range base {
		switch {
		case strings.HasPrefix(kv, "PATH="):
			sawPath = true
			if pathPrefix != "" {
				kv = "PATH=" + pathPrefix + string(os.PathListSeparator) + kv[len("PATH="):]
			}
		case strings.HasPrefix(kv, "TERM="):
			sawTerm = true
			kv = "TERM=" + term
		}
		env = append(env, kv)
	}

	if !sawPath && pathPrefix != "" {
		env = append(env, "PATH="+pathPrefix)
	}
	if !sawTerm {
		env = append(env, "TERM="+term)
	}
	return env
}

// ExpandPath expands environment variables and a ~ prefix in a path.
func ExpandPath(path string) string {
	// Env vars first so $HOME/.config resolves before the tilde check.
	path = os.ExpandEnv(path)

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return home
	}

	return path
}
