//go:build !windows

// Package console binds a Session to the invoking terminal: raw mode,
// SIGWINCH-driven resize proposals, and a Ctrl+Q detach key.
package console

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/asheshgoplani/opencode-console/internal/session"
)

// DetachKey is the single byte that detaches the terminal from the
// session without disposing it (Ctrl+Q).
const DetachKey = 0x11

// surface is the slice of session behavior the attach loop needs.
type surface interface {
	Write(p []byte)
	Resize(cols, rows int)
}

// Run spawns a session in dir, attaches it to the invoking terminal, and
// disposes it on return.
func Run(ctx context.Context, dir string, extraArgs ...string) error {
	cols, rows := initialSize()
	sess := session.New(dir, cols, rows, extraArgs...)
	defer sess.Close()

	if err := sess.Spawn(ctx); err != nil {
		return err
	}
	return Attach(ctx, sess)
}

// Attach puts the invoking terminal into raw mode and wires it to sess:
// stdin bytes become session input, session output events are written
// through, and window size changes become resize proposals. Returns when
// the session ends, the user presses Ctrl+Q, or ctx is cancelled. The
// session itself is not disposed on detach.
func Attach(ctx context.Context, sess *session.Session) error {
	return attach(ctx, sess, sess.Events(), nil)
}

// AttachHandle attaches a manager-owned session. Output is observed
// through a subscription so the manager's own consumer keeps running, and
// the accumulated scrollback is replayed first.
func AttachHandle(ctx context.Context, h *session.Handle) error {
	events, replay, cancel := h.Subscribe()
	defer cancel()
	return attach(ctx, h, events, replay)
}

func attach(ctx context.Context, target surface, events <-chan session.Event, replay []byte) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		return fmt.Errorf("failed to set raw mode: %w", err)
	}
	defer func() { _ = term.Restore(int(os.Stdin.Fd()), oldState) }()

	if len(replay) > 0 {
		_, _ = os.Stdout.Write(replay)
	}

	// Window size changes become resize proposals
	sigwinch := make(chan os.Signal, 1)
	signal.Notify(sigwinch, syscall.SIGWINCH)
	sigwinchDone := make(chan struct{})
	defer func() {
		signal.Stop(sigwinch)
		close(sigwinchDone)
	}()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-sigwinchDone:
				return
			case _, ok := <-sigwinch:
				if !ok {
					return
				}
				if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
					target.Resize(w, h)
				}
			}
		}
	}()
	// Initial sync
	sigwinch <- syscall.SIGWINCH

	detachCh := make(chan struct{})

	// Ignore terminal capability replies that arrive right after entering
	// raw mode, so they are not forwarded as user input.
	startTime := time.Now()
	const controlSeqTimeout = 50 * time.Millisecond

	// stdin → session input, with Ctrl+Q intercepted
	go func() {
		buf := make([]byte, 32)
		for {
			n, err := os.Stdin.Read(buf)
			if err != nil {
				return
			}
			if time.Since(startTime) < controlSeqTimeout {
				continue
			}
			if n == 1 && buf[0] == DetachKey {
				close(detachCh)
				cancel()
				return
			}
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			target.Write(chunk)
		}
	}()

	// session events → terminal
	endCh := make(chan struct{})
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					close(endCh)
					return
				}
				switch e := ev.(type) {
				case session.StdoutEvent:
					_, _ = os.Stdout.Write(e.Data)
				case session.StderrEvent:
					_, _ = os.Stderr.Write(e.Data)
				case session.ExitEvent:
					close(endCh)
					return
				case session.ErrorEvent:
					// Already surfaced as an inline line; terminal for
					// the process.
					close(endCh)
					return
				}
			}
		}
	}()

	select {
	case <-detachCh:
		return nil
	case <-endCh:
		return nil
	case <-ctx.Done():
		return nil
	}
}

// initialSize samples the invoking terminal's dimensions. Zero values let
// the session fall back to its configured defaults.
func initialSize() (int, int) {
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 && h > 0 {
		return w, h
	}
	return 0, 0
}
