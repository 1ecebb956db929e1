package session

import (
	"fmt"
	"os"
	"path/filepath"
)

// ConsoleDirName is the per-user data directory under $HOME.
const ConsoleDirName = ".opencode-console"

// GetConsoleDir returns the per-user data directory (~/.opencode-console),
// home to the config file, logs, and the history database.
func GetConsoleDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ConsoleDirName), nil
}
