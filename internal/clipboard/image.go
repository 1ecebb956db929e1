package clipboard

import (
	"encoding/base64"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/asheshgoplani/opencode-console/internal/platform"
)

// ReadImage reads an image from the system clipboard using
// platform-appropriate tools. Returns the image bytes and the image
// subtype ("png" for every current backend).
func ReadImage() ([]byte, string, error) {
	p := platform.Detect()

	switch p {
	case platform.PlatformMacOS:
		return readImageMacOS()

	case platform.PlatformWSL1, platform.PlatformWSL2:
		return readImageWSL()

	case platform.PlatformLinux:
		return readImageLinux()

	default:
		return nil, "", fmt.Errorf("clipboard image read not supported on %s", p)
	}
}

// TempImageFile writes pasted image bytes to a temp file named with the
// current timestamp and image subtype, and returns the absolute path.
// The caller forwards a quoted reference to this path instead of the raw
// bytes.
func TempImageFile(data []byte, subtype string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("no image data")
	}
	if subtype == "" {
		subtype = "png"
	}

	name := fmt.Sprintf("opencode-paste-%d.%s", time.Now().UnixMilli(), subtype)
	path := filepath.Join(os.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("write paste file: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return path, nil
	}
	return abs, nil
}

func readImageMacOS() ([]byte, string, error) {
	// pngpaste is the fast path when installed
	if path, err := exec.LookPath("pngpaste"); err == nil {
		out, err := exec.Command(path, "-").Output()
		if err == nil && len(out) > 0 {
			return out, "png", nil
		}
	}

	// osascript fallback: write the clipboard PNG to a temp file
	tmp := filepath.Join(os.TempDir(), fmt.Sprintf("opencode-clip-%d.png", time.Now().UnixNano()))
	defer os.Remove(tmp)

	script := fmt.Sprintf(
		`set f to open for access POSIX file %q with write permission
try
	write (the clipboard as «class PNGf») to f
end try
close access f`, tmp)
	if err := exec.Command("osascript", "-e", script).Run(); err != nil {
		return nil, "", fmt.Errorf("osascript clipboard read: %w", err)
	}

	data, err := os.ReadFile(tmp)
	if err != nil || len(data) == 0 {
		return nil, "", fmt.Errorf("no image on clipboard")
	}
	return data, "png", nil
}

func readImageLinux() ([]byte, string, error) {
	// Wayland takes priority over X11
	if os.Getenv("WAYLAND_DISPLAY") != "" {
		if path, err := exec.LookPath("wl-paste"); err == nil {
			out, err := exec.Command(path, "--type", "image/png").Output()
			if err == nil && len(out) > 0 {
				return out, "png", nil
			}
		}
	}
	if path, err := exec.LookPath("xclip"); err == nil {
		out, err := exec.Command(path, "-selection", "clipboard", "-t", "image/png", "-o").Output()
		if err == nil && len(out) > 0 {
			return out, "png", nil
		}
	}
	return nil, "", fmt.Errorf("no image on clipboard (need wl-paste or xclip)")
}

func readImageWSL() ([]byte, string, error) {
	// powershell.exe prints the clipboard image as base64; decoding via
	// stdout avoids Windows/WSL temp path translation entirely.
	script := `Add-Type -AssemblyName System.Windows.Forms
$img = [System.Windows.Forms.Clipboard]::GetImage()
if ($img -eq $null) { exit 1 }
$ms = New-Object System.IO.MemoryStream
$img.Save($ms, [System.Drawing.Imaging.ImageFormat]::Png)
[Convert]::ToBase64String($ms.ToArray())`

	out, err := exec.Command("powershell.exe", "-NoProfile", "-Command", script).Output()
	if err != nil {
		return nil, "", fmt.Errorf("no image on clipboard")
	}

	data, err := decodeBase64(out)
	if err != nil || len(data) == 0 {
		return nil, "", fmt.Errorf("decode clipboard image: %w", err)
	}
	return data, "png", nil
}

// decodeBase64 decodes powershell output, tolerating the CRLF line
// endings it appends.
func decodeBase64(out []byte) ([]byte, error) {
	s := strings.TrimSpace(string(out))
	return base64.StdEncoding.DecodeString(s)
}
