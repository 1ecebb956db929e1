package platform

import (
	"os"
	"runtime"
	"strings"
	"sync"
)

// Platform identifies the host environment, with WSL split out from native
// Linux because clipboard and path handling differ there.
type Platform string

const (
	PlatformMacOS   Platform = "macos"
	PlatformLinux   Platform = "linux"
	PlatformWSL1    Platform = "wsl1"
	PlatformWSL2    Platform = "wsl2"
	PlatformWindows Platform = "windows"
	PlatformUnknown Platform = "unknown"
)

var (
	detectOnce sync.Once
	detected   Platform
)

// Detect returns the host platform. Detection runs once per process.
func Detect() Platform {
	detectOnce.Do(func() {
		detected = classify()
	})
	return detected
}

func classify() Platform {
	switch runtime.GOOS {
	case "darwin":
		return PlatformMacOS
	case "windows":
		return PlatformWindows
	case "linux":
		return classifyLinux()
	default:
		return PlatformUnknown
	}
}

// classifyLinux tells native Linux apart from the two WSL generations.
func classifyLinux() Platform {
	if os.Getenv("WSL_DISTRO_NAME") != "" {
		return wslVersion()
	}

	procVersion, err := os.ReadFile("/proc/version")
	if err != nil {
		return PlatformLinux
	}
	if v := string(procVersion); strings.Contains(v, "microsoft") || strings.Contains(v, "Microsoft") {
		return wslVersion()
	}
	return PlatformLinux
}

// wslVersion picks WSL1 or WSL2. WSL2 kernels carry "microsoft-standard";
// WSL1 kernels say "Microsoft" without it.
func wslVersion() Platform {
	if procVersion, err := os.ReadFile("/proc/version"); err == nil {
		v := string(procVersion)
		if strings.Contains(v, "microsoft-standard") {
			return PlatformWSL2
		}
		if strings.Contains(v, "Microsoft") {
			return PlatformWSL1
		}
	}

	// Only WSL2's VM exposes these.
	if _, err := os.Stat("/run/WSL"); err == nil {
		return PlatformWSL2
	}
	if _, err := os.Stat("/dev/vsock"); err == nil {
		return PlatformWSL2
	}

	// Undeterminable: assume the more limited generation.
	return PlatformWSL1
}

// IsWSL reports whether we are inside either WSL generation.
func IsWSL() bool {
	p := Detect()
	return p == PlatformWSL1 || p == PlatformWSL2
}

// IsWindows reports native Windows, not WSL.
func IsWindows() bool {
	return Detect() == PlatformWindows
}

func (p Platform) String() string {
	switch p {
	case PlatformMacOS:
		return "macOS"
	case PlatformLinux:
		return "Linux"
	case PlatformWSL1:
		return "WSL1"
	case PlatformWSL2:
		return "WSL2"
	case PlatformWindows:
		return "Windows"
	default:
		return "Unknown"
	}
}
