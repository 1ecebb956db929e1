package session

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// scrollbackLimit caps the per-session replay buffer handed to late joiners.
const scrollbackLimit = 256 * 1024

// Manager tracks live sessions so the TUI and the web mirror can share them.
// Each session's event stream is consumed once by the manager and fanned out
// to any number of subscribers.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Handle

	// OnStart and OnEnd observe lifecycle transitions when set. OnEnd
	// receives the terminal event (ExitEvent or ErrorEvent), or nil when
	// the session was disposed before producing one. Both are invoked from
	// manager goroutines.
	OnStart func(*Session)
	OnEnd   func(*Session, Event)
}

// Handle wraps a managed Session with output fan-out and scrollback replay.
type Handle struct {
	*Session

	mu          sync.Mutex
	subscribers map[chan Event]struct{}
	scrollback  []byte
	ended       chan struct{}
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Handle)}
}

// Spawn creates a session for dir, starts it, and registers it with the
// manager. The returned handle is valid until Remove.
func (m *Manager) Spawn(ctx context.Context, dir string, cols, rows int, extraArgs ...string) (*Handle, error) {
	return m.Start(ctx, New(dir, cols, rows, extraArgs...))
}

// Start spawns an already-constructed session and registers it.
func (m *Manager) Start(ctx context.Context, sess *Session) (*Handle, error) {
	if err := sess.Spawn(ctx); err != nil {
		return nil, err
	}

	h := &Handle{
		Session:     sess,
		subscribers: make(map[chan Event]struct{}),
		ended:       make(chan struct{}),
	}

	m.mu.Lock()
	m.sessions[sess.ID] = h
	m.mu.Unlock()

	if m.OnStart != nil {
		m.OnStart(sess)
	}

	go m.pump(h)
	return h, nil
}

// Get returns the handle for id, if registered.
func (m *Manager) Get(id string) (*Handle, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.sessions[id]
	return h, ok
}

// List returns all registered handles, oldest first.
func (m *Manager) List() []*Handle {
	m.mu.RLock()
	handles := make([]*Handle, 0, len(m.sessions))
	for _, h := range m.sessions {
		handles = append(handles, h)
	}
	m.mu.RUnlock()

	sort.Slice(handles, func(i, j int) bool {
		if handles[i].Started().Equal(handles[j].Started()) {
			return handles[i].ID < handles[j].ID
		}
		return handles[i].Started().Before(handles[j].Started())
	})
	return handles
}

// Remove closes the session and drops it from the registry.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	h, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		h.Close()
	}
}

// CloseAll disposes every registered session. Disposal blocks on process
// termination, so the sessions are closed in parallel.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	handles := make([]*Handle, 0, len(m.sessions))
	for id, h := range m.sessions {
		handles = append(handles, h)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	g := new(errgroup.Group)
	for _, h := range handles {
		g.Go(func() error {
			h.Close()
			return nil
		})
	}
	_ = g.Wait()
}

// pump drains the session's event stream, buffering output for replay and
// broadcasting each event to subscribers. It ends on the terminal event or
// on disposal.
func (m *Manager) pump(h *Handle) {
	for {
		select {
		case ev := <-h.Session.Events():
			h.broadcast(ev)
			switch ev.(type) {
			case ExitEvent, ErrorEvent:
				h.finish()
				if m.OnEnd != nil {
					m.OnEnd(h.Session, ev)
				}
				return
			}
		case <-h.Session.Done():
			h.finish()
			if m.OnEnd != nil {
				m.OnEnd(h.Session, nil)
			}
			return
		}
	}
}

func (h *Handle) broadcast(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch e := ev.(type) {
	case StdoutEvent:
		h.appendScrollback(e.Data)
	case StderrEvent:
		h.appendScrollback(e.Data)
	}

	for ch := range h.subscribers {
		select {
		case ch <- ev:
		default:
			// Slow subscriber; the chunk is dropped for it, not for others.
		}
	}
}

func (h *Handle) appendScrollback(data []byte) {
	h.scrollback = append(h.scrollback, data...)
	if over := len(h.scrollback) - scrollbackLimit; over > 0 {
		h.scrollback = h.scrollback[over:]
	}
}

func (h *Handle) finish() {
	h.mu.Lock()
	defer h.mu.Unlock()
	select {
	case <-h.ended:
	default:
		close(h.ended)
	}
	for ch := range h.subscribers {
		delete(h.subscribers, ch)
		close(ch)
	}
}

// Subscribe registers an observer. It returns the event channel, a copy of
// the scrollback accumulated so far, and a cancel func. The channel is
// closed when the session ends or the subscription is cancelled.
func (h *Handle) Subscribe() (<-chan Event, []byte, func()) {
	h.mu.Lock()
	ch := make(chan Event, eventBufSize)
	replay := append([]byte(nil), h.scrollback...)
	select {
	case <-h.ended:
		close(ch)
	default:
		h.subscribers[ch] = struct{}{}
	}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subscribers[ch]; ok {
			delete(h.subscribers, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, replay, cancel
}

// Ended returns a channel closed once the session has produced its terminal
// event or been disposed.
func (h *Handle) Ended() <-chan struct{} {
	return h.ended
}
