package session

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// frameInterval paces resize writes to roughly one per display frame.
// A resize storm (drag-resizing the host window) collapses to at most one
// control sequence per interval no matter how many raw events fire.
const frameInterval = 16 * time.Millisecond

// Resizer keeps the bridge PTY's dimensions synchronized with the display
// surface. Notify records the latest proposal; a background goroutine
// flushes the settled value at most once per frame interval. Invalid
// proposals (zero or negative) are dropped, never queued, and a settled
// size identical to the last one sent is not re-sent.
type Resizer struct {
	write   func(cols, rows int)
	limiter *rate.Limiter

	mu         sync.Mutex
	cols, rows int

	kick     chan struct{}
	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewResizer starts a resizer that delivers settled dimensions to write.
// Call Stop when the owning Session is disposed.
func NewResizer(write func(cols, rows int)) *Resizer {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Resizer{
		write:   write,
		limiter: rate.NewLimiter(rate.Every(frameInterval), 1),
		kick:    make(chan struct{}, 1),
		ctx:     ctx,
		cancel:  cancel,
	}
	r.wg.Add(1)
	go r.loop()
	return r
}

// Notify records a proposed size. Proposals with a non-positive dimension
// are suppressed entirely; the previous PTY size stays in effect. Safe to
// call from any goroutine; never blocks.
func (r *Resizer) Notify(cols, rows int) {
	if cols <= 0 || rows <= 0 {
		return
	}

	r.mu.Lock()
	r.cols, r.rows = cols, rows
	r.mu.Unlock()

	// Coalesce: one pending flush at a time.
	select {
	case r.kick <- struct{}{}:
	default:
	}
}

// Stop shuts down the flush goroutine. Idempotent.
func (r *Resizer) Stop() {
	r.stopOnce.Do(func() {
		r.cancel()
	})
	r.wg.Wait()
}

func (r *Resizer) loop() {
	defer r.wg.Done()

	lastCols, lastRows := 0, 0
	for {
		select {
		case <-r.ctx.Done():
			return
		case <-r.kick:
			if err := r.limiter.Wait(r.ctx); err != nil {
				return
			}

			r.mu.Lock()
			cols, rows := r.cols, r.rows
			r.mu.Unlock()

			if cols == lastCols && rows == lastRows {
				continue
			}
			lastCols, lastRows = cols, rows
			r.write(cols, rows)
		}
	}
}
