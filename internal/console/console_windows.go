//go:build windows

package console

import (
	"context"
	"fmt"

	"github.com/asheshgoplani/opencode-console/internal/session"
)

// DetachKey is the single byte that detaches the terminal (Ctrl+Q).
const DetachKey = 0x11

func Run(ctx context.Context, dir string, extraArgs ...string) error {
	return fmt.Errorf("direct terminal attach is not supported on Windows")
}

func Attach(ctx context.Context, sess *session.Session) error {
	return fmt.Errorf("direct terminal attach is not supported on Windows")
}

func AttachHandle(ctx context.Context, h *session.Handle) error {
	return fmt.Errorf("direct terminal attach is not supported on Windows")
}
