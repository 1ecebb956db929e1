package logging

import (
	"bytes"
	"log/slog"
	"strings"
)

// BridgeWriter adapts slog to io.Writer so stdlib log.Printf output, both
// ours and the TUI libraries', lands in the structured log. Lines shaped
// like "[CATEGORY] message" have the category lifted into the component
// field.
type BridgeWriter struct {
	logger    *slog.Logger
	component string
}

// NewBridgeWriter returns a writer forwarding to slog. Lines without a
// [CATEGORY] prefix are attributed to defaultComponent.
func NewBridgeWriter(defaultComponent string) *BridgeWriter {
	return &BridgeWriter{
		logger:    Logger(),
		component: defaultComponent,
	}
}

// Write treats each write as one log line. The stdlib timestamp prefix is
// dropped (slog stamps records itself) and a leading [CATEGORY] tag becomes
// the component field.
func (bw *BridgeWriter) Write(p []byte) (int, error) {
	n := len(p)
	msg := string(bytes.TrimSpace(p))
	if msg == "" {
		return n, nil
	}

	msg = stripLogTimestamp(msg)

	component := bw.component
	if strings.HasPrefix(msg, "[") {
		if idx := strings.Index(msg, "] "); idx > 0 {
			component = strings.ToLower(msg[1:idx])
			msg = msg[idx+2:]
		}
	}

	bw.logger.Info(msg, slog.String("component", canonicalComponent(component)))
	return n, nil
}

// stripLogTimestamp removes the time prefix that log.SetFlags adds.
func stripLogTimestamp(s string) string {
	// log.Ltime|log.Lmicroseconds: "15:04:05.000000 "
	if len(s) > 16 && s[2] == ':' && s[5] == ':' && s[8] == '.' && s[15] == ' ' {
		return s[16:]
	}
	// log.Ltime: "15:04:05 "
	if len(s) > 9 && s[2] == ':' && s[5] == ':' && s[8] == ' ' {
		return s[9:]
	}
	return s
}

// canonicalComponent folds legacy log prefixes into the Comp* names.
func canonicalComponent(cat string) string {
	switch cat {
	case "session", "spawn", "resize", "opencode":
		return CompSession
	case "bridge", "pty":
		return CompBridge
	case "locate", "binary":
		return CompLocate
	case "ui", "tui":
		return CompUI
	case "web", "ws", "http":
		return CompWeb
	case "history", "storage":
		return CompHistory
	case "clipboard", "paste":
		return CompClipboard
	case "config":
		return CompConfig
	default:
		return cat
	}
}
