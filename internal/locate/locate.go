// Package locate resolves the OpenCode binary and the PTY bridge helper
// from a fixed list of well-known install locations.
package locate

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// CommandName is the bare OpenCode command, used when no candidate
// path exists on disk and resolution is deferred to PATH lookup.
const CommandName = "opencode"

// BridgeName is the PTY bridge helper binary shipped alongside the console.
const BridgeName = "opencode-bridge"

// BinDirs returns the ordered, platform-specific directories where the
// OpenCode binary is commonly installed. Home-relative install dirs come
// first, then system dirs.
func BinDirs(goos, home string) []string {
	if goos == "windows" {
		return []string{
			filepath.Join(home, ".opencode", "bin"),
			filepath.Join(home, "AppData", "Local", "Programs", "opencode"),
			filepath.Join(home, "scoop", "shims"),
		}
	}
	return []string{
		filepath.Join(home, ".opencode", "bin"),
		filepath.Join(home, ".local", "bin"),
		filepath.Join(home, "bin"),
		"/usr/local/bin",
		"/opt/homebrew/bin",
		"/usr/bin",
	}
}

// Candidates returns the full ordered candidate paths for the OpenCode binary.
func Candidates(goos, home string) []string {
	name := Fallback(goos)
	dirs := BinDirs(goos, home)
	paths := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		paths = append(paths, filepath.Join(dir, name))
	}
	return paths
}

// Fallback returns the bare command name for the platform.
func Fallback(goos string) string {
	if goos == "windows" {
		return CommandName + ".exe"
	}
	return CommandName
}

// Resolve returns the path to the OpenCode binary: the first candidate that
// exists on disk, or the bare command name when none do. Never fails.
func Resolve() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return ResolveFrom(Candidates(runtime.GOOS, home), Fallback(runtime.GOOS))
}

// ResolveFrom returns the first candidate that exists on disk, in list
// order, falling back to fallback when none exist. Stat failures
// (permission denied, transport errors) are treated as "does not exist".
func ResolveFrom(candidates []string, fallback string) string {
	for _, path := range candidates {
		if exists(path) {
			return path
		}
	}
	return fallback
}

// BridgePath locates the opencode-bridge helper. It prefers the directory
// of the running executable (the normal install layout ships both binaries
// side by side), then falls back to PATH resolution by bare name.
func BridgePath() string {
	name := BridgeName
	if runtime.GOOS == "windows" {
		name += ".exe"
	}

	if exe, err := os.Executable(); err == nil {
		sibling := filepath.Join(filepath.Dir(exe), name)
		if exists(sibling) {
			return sibling
		}
	}
	return name
}

// PathPrefix returns the candidate bin directories joined with the platform
// list separator, for prefixing the child's PATH.
func PathPrefix() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return strings.Join(BinDirs(runtime.GOOS, home), string(os.PathListSeparator))
}

// exists reports whether path is present on disk. Errors of any kind
// (including permission denied) count as absent so resolution continues
// down the candidate list.
func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
