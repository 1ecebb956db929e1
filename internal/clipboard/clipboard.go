package clipboard

import (
	"encoding/base64"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/asheshgoplani/opencode-console/internal/platform"
)

// CopyResult describes how a copy landed on the clipboard.
type CopyResult struct {
	Method    string // tool or mechanism used ("pbcopy", "xclip", "osc52", ...)
	ByteSize  int
	LineCount int
}

// Copy puts text on the system clipboard. A platform-native tool is tried
// first; when none is available and the hosting terminal supports OSC 52,
// the escape-sequence path is used instead.
func Copy(text string, supportsOSC52 bool) (*CopyResult, error) {
	if text == "" {
		return nil, fmt.Errorf("no content to copy")
	}

	res := &CopyResult{
		ByteSize:  len(text),
		LineCount: countLines(text),
	}

	method, err := nativeCopy(text)
	if err == nil {
		res.Method = method
		return res, nil
	}

	if supportsOSC52 {
		if err := osc52Copy(text); err != nil {
			return nil, fmt.Errorf("OSC 52 clipboard failed: %w", err)
		}
		res.Method = "osc52"
		return res, nil
	}

	return nil, fmt.Errorf("no clipboard method available (install pbcopy, xclip, xsel, or wl-copy)")
}

// nativeCopy pipes text into whichever clipboard tool the platform has,
// returning the tool name.
func nativeCopy(text string) (string, error) {
	switch p := platform.Detect(); p {
	case platform.PlatformMacOS:
		return "pbcopy", pipeTo("pbcopy", nil, text)

	case platform.PlatformWSL1, platform.PlatformWSL2:
		return "clip.exe", pipeTo("clip.exe", nil, text)

	case platform.PlatformLinux:
		// Wayland before X11.
		if os.Getenv("WAYLAND_DISPLAY") != "" {
			if path, err := exec.LookPath("wl-copy"); err == nil {
				return "wl-copy", pipeTo(path, nil, text)
			}
		}
		if path, err := exec.LookPath("xclip"); err == nil {
			return "xclip", pipeTo(path, []string{"-selection", "clipboard"}, text)
		}
		if path, err := exec.LookPath("xsel"); err == nil {
			return "xsel", pipeTo(path, []string{"--clipboard", "--input"}, text)
		}
		return "", fmt.Errorf("no clipboard command found on Linux")

	default:
		return "", fmt.Errorf("unsupported platform: %s", p)
	}
}

func pipeTo(name string, args []string, text string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = strings.NewReader(text)
	return cmd.Run()
}

// osc52Copy emits the OSC 52 sequence straight to the controlling terminal,
// so it works even when stdout is redirected.
func osc52Copy(text string) error {
	encoded := base64.StdEncoding.EncodeToString([]byte(text))
	seq := generateOSC52(encoded, os.Getenv("TMUX") != "")

	tty, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("cannot open /dev/tty: %w", err)
	}
	defer tty.Close()

	_, err = tty.WriteString(seq)
	return err
}

// generateOSC52 builds the OSC 52 sequence, wrapped in a DCS passthrough
// when running under tmux so the outer terminal sees it.
func generateOSC52(base64Content string, inTmux bool) string {
	osc := "\x1b]52;c;" + base64Content + "\x07"
	if inTmux {
		return "\x1bPtmux;\x1b" + osc + "\x1b\\"
	}
	return osc
}

// countLines reports how many lines text spans. A trailing newline does not
// start another line.
func countLines(text string) int {
	if text == "" {
		return 0
	}
	n := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}
