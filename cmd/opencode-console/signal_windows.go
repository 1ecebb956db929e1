//go:build windows

package main

// startCrashDumpListener is a no-op on Windows (no SIGUSR1).
func startCrashDumpListener(baseDir string) {}
