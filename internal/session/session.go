// Package session owns the lifecycle of one OpenCode console session: it
// spawns the PTY bridge helper around the resolved OpenCode binary, relays
// byte streams between the child and the display surface, coalesces resize
// proposals into the in-band control protocol, and guarantees exactly-once
// termination on disposal.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/asheshgoplani/opencode-console/internal/bridge"
	"github.com/asheshgoplani/opencode-console/internal/clipboard"
	"github.com/asheshgoplani/opencode-console/internal/locate"
	"github.com/asheshgoplani/opencode-console/internal/logging"
)

var sessionLog = logging.ForComponent(logging.CompSession)

// State is the lifecycle state of a Session.
type State string

const (
	StateSpawning State = "spawning"
	StateRunning  State = "running"
	StateExited   State = "exited"
	StateErrored  State = "errored"
	StateDisposed State = "disposed"
)

const (
	defaultCols = 80
	defaultRows = 24

	outputBufSize = 4096
	eventBufSize  = 64
)

// Session binds one child process to one display surface. The process
// handle is exclusively owned by the Session; concurrent Sessions never
// share one. The Binary path is immutable once resolved.
type Session struct {
	ID     string
	Dir    string
	Binary string
	Cols   int
	Rows   int

	// Bridge overrides helper resolution when non-empty. Set before Spawn.
	Bridge string

	args []string
	term string

	mu    sync.Mutex
	state State
	cmd   *exec.Cmd
	stdin io.WriteCloser

	events    chan Event
	resizer   *Resizer
	done      chan struct{}
	readerWG  sync.WaitGroup
	closeOnce sync.Once
	started   time.Time
}

// New creates a Session for the given working directory and initial
// dimensions. Non-positive dimensions fall back to the configured terminal
// size (80x24 when unconfigured). The OpenCode binary is resolved once,
// here: the configured command override wins, otherwise the well-known
// install locations are searched with a bare-name PATH fallback.
func New(dir string, cols, rows int, extraArgs ...string) *Session {
	cfg, _ := LoadUserConfig()

	if cols <= 0 {
		cols = cfg.Terminal.GetCols()
	}
	if rows <= 0 {
		rows = cfg.Terminal.GetRows()
	}

	binary := locate.Resolve()
	if cfg.OpenCode.Command != "" {
		binary = ExpandPath(cfg.OpenCode.Command)
	}

	var args []string
	if cfg.OpenCode.Model != "" {
		args = append(args, "--model", cfg.OpenCode.Model)
	}
	if cfg.OpenCode.Agent != "" {
		args = append(args, "--agent", cfg.OpenCode.Agent)
	}
	args = append(args, cfg.OpenCode.ExtraArgs...)
	args = append(args, extraArgs...)

	s := &Session{
		ID:      generateID(),
		Dir:     dir,
		Binary:  binary,
		Cols:    cols,
		Rows:    rows,
		args:    args,
		term:    cfg.Terminal.GetTerm(),
		state:   StateSpawning,
		events:  make(chan Event, eventBufSize),
		done:    make(chan struct{}),
		started: time.Now(),
	}
	s.resizer = NewResizer(func(c, r int) {
		s.Write(bridge.EncodeResize(c, r))
		logging.Aggregate(logging.CompSession, "resize_sent", slog.String("session", s.ID))
	})
	return s
}

// Spawn starts the bridge helper with positional args
// <cols> <rows> <binary> [extra...], working dir set, and the child env
// carrying a prefixed PATH plus the 256-color TERM. Spawn failures are
// surfaced as an inline error line and an ErrorEvent; the returned error
// carries the same cause for callers that log it. The Session remains
// disposable after a failed spawn.
func (s *Session) Spawn(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateSpawning {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("session %s: spawn in state %s", s.ID, state)
	}
	s.mu.Unlock()

	bridgePath := s.Bridge
	if bridgePath == "" {
		bridgePath = locate.BridgePath()
	}
	argv := append([]string{strconv.Itoa(s.Cols), strconv.Itoa(s.Rows), s.Binary}, s.args...)
	cmd := exec.CommandContext(ctx, bridgePath, argv...)
	cmd.Dir = s.Dir
	cmd.Env = BuildEnv(os.Environ(), locate.PathPrefix(), s.term)
	setSysProcAttr(cmd)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		s.fail(fmt.Errorf("stdin pipe: %w", err))
		return err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		s.fail(fmt.Errorf("stdout pipe: %w", err))
		return err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		s.fail(fmt.Errorf("stderr pipe: %w", err))
		return err
	}

	if err := cmd.Start(); err != nil {
		s.fail(fmt.Errorf("spawn %s: %w", bridgePath, err))
		return err
	}

	s.mu.Lock()
	s.cmd = cmd
	s.stdin = stdin
	s.state = StateRunning
	s.mu.Unlock()

	sessionLog.Info("session_spawned",
		slog.String("session", s.ID),
		slog.String("binary", s.Binary),
		slog.String("dir", s.Dir),
		slog.Int("cols", s.Cols),
		slog.Int("rows", s.Rows),
	)

	s.readerWG.Add(2)
	go s.readLoop(stdout, func(p []byte) Event { return StdoutEvent{Data: p} })
	go s.readLoop(stderr, func(p []byte) Event { return StderrEvent{Data: p} })
	go s.waitForExit()

	return nil
}

// Events returns the channel delivering output chunks, the exit report,
// and errors. ExitEvent and ErrorEvent are terminal; the channel itself is
// never closed.
func (s *Session) Events() <-chan Event {
	return s.events
}

// Done returns a channel closed when the Session is disposed.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Started returns the spawn-request time.
func (s *Session) Started() time.Time {
	return s.started
}

// Write forwards p verbatim to the bridge's stdin. When the stream is not
// writable (never spawned, already exited, or disposed) the write is
// silently dropped: no queue, no error.
func (s *Session) Write(p []byte) {
	s.mu.Lock()
	w := s.stdin
	writable := s.state == StateRunning && w != nil
	s.mu.Unlock()

	if !writable {
		return
	}
	_, _ = w.Write(p)
}

// Resize proposes new terminal dimensions. Proposals are debounced and
// coalesced; the settled value is encoded as the in-band resize control
// sequence and written to the bridge's stdin.
func (s *Session) Resize(cols, rows int) {
	s.resizer.Notify(cols, rows)
}

// PasteImage writes pasted image bytes to a temp file and forwards a
// quoted path literal to stdin instead of the raw bytes, so the assistant
// receives a referencable file path. Returns the temp file path.
func (s *Session) PasteImage(data []byte, subtype string) (string, error) {
	path, err := clipboard.TempImageFile(data, subtype)
	if err != nil {
		return "", fmt.Errorf("paste image: %w", err)
	}
	s.Write([]byte(strconv.Quote(path)))
	return path, nil
}

// Close disposes the Session: stop the resize coordinator, terminate the
// child process group if present, close stdin, mark disposed. Reachable
// from any state, terminal, and idempotent: a second Close (and a
// termination racing a natural exit) is a no-op.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.resizer.Stop()

		s.mu.Lock()
		cmd := s.cmd
		stdin := s.stdin
		s.state = StateDisposed
		s.stdin = nil
		s.mu.Unlock()

		close(s.done)

		if cmd != nil && cmd.Process != nil {
			terminateProcess(cmd)
		}
		if stdin != nil {
			_ = stdin.Close()
		}

		sessionLog.Info("session_disposed", slog.String("session", s.ID))
	})
}

// readLoop forwards chunks verbatim, in arrival order, as typed events.
func (s *Session) readLoop(r io.Reader, wrap func([]byte) Event) {
	defer s.readerWG.Done()

	buf := make([]byte, outputBufSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			s.emit(wrap(chunk))
			logging.Aggregate(logging.CompSession, "chunk_forwarded", slog.String("session", s.ID))
		}
		if err != nil {
			return
		}
	}
}

// waitForExit reaps the child after both output streams drain, then emits
// the human-readable exit line followed by the terminal ExitEvent.
func (s *Session) waitForExit() {
	s.readerWG.Wait()
	waitErr := s.cmd.Wait()
	code, signaled := exitStatus(waitErr)

	s.mu.Lock()
	if s.state == StateRunning {
		s.state = StateExited
	}
	s.stdin = nil
	s.mu.Unlock()

	sessionLog.Info("session_exited",
		slog.String("session", s.ID),
		slog.Int("code", code),
		slog.Bool("signaled", signaled),
	)

	s.emit(StdoutEvent{Data: []byte(exitLine(code, signaled))})
	s.emit(ExitEvent{Code: code, Signaled: signaled})
}

// fail marks the Session errored and surfaces the error inline. Late
// errors after disposal are no-ops.
func (s *Session) fail(err error) {
	s.mu.Lock()
	if s.state == StateDisposed {
		s.mu.Unlock()
		return
	}
	s.state = StateErrored
	s.mu.Unlock()

	sessionLog.Error("session_error",
		slog.String("session", s.ID),
		slog.String("error", err.Error()),
	)

	s.emit(StdoutEvent{Data: []byte(errorLine(err))})
	s.emit(ErrorEvent{Err: err})
}

// emit delivers an event unless the Session has been disposed.
func (s *Session) emit(ev Event) {
	select {
	case s.events <- ev:
	case <-s.done:
	}
}

// exitLine formats the status line shown when the child exits. A signaled
// exit has no code to report.
func exitLine(code int, signaled bool) string {
	codeStr := strconv.Itoa(code)
	if signaled {
		codeStr = "none"
	}
	return "\r\n[OpenCode exited with code " + codeStr + "]\r\n"
}

// errorLine formats a spawn/runtime failure as a red inline line.
func errorLine(err error) string {
	return "\r\n\x1b[31m[OpenCode Error: " + err.Error() + "]\x1b[0m\r\n"
}

// exitStatus extracts the exit code from cmd.Wait's error. A signaled
// child reports 128+signal with signaled=true.
func exitStatus(waitErr error) (int, bool) {
	if waitErr == nil {
		return 0, false
	}
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			return 128 + int(ws.Signal()), true
		}
		return exitErr.ExitCode(), false
	}
	return 1, false
}
