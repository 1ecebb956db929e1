package logging

import (
	"log/slog"
	"sync"
	"time"
)

// tallyKey identifies one event stream for batching.
type tallyKey struct {
	component string
	event     string
}

// tally holds the running count and the most recent fields for a stream.
type tally struct {
	count  int64
	fields []slog.Attr
}

// Aggregator batches high-frequency events (output chunks, resize writes)
// and emits one summary line per stream each flush interval, keeping the
// debug log readable under load.
type Aggregator struct {
	logger   *slog.Logger
	interval time.Duration

	mu      sync.Mutex
	tallies map[tallyKey]*tally

	done chan struct{}
	wg   sync.WaitGroup
}

// NewAggregator creates an aggregator that flushes every intervalSecs
// seconds. A nil logger silently drops recorded events.
func NewAggregator(logger *slog.Logger, intervalSecs int) *Aggregator {
	if intervalSecs <= 0 {
		intervalSecs = 30
	}
	return &Aggregator{
		logger:   logger,
		interval: time.Duration(intervalSecs) * time.Second,
		tallies:  make(map[tallyKey]*tally),
		done:     make(chan struct{}),
	}
}

// Start begins the background flush goroutine.
func (a *Aggregator) Start() {
	a.wg.Add(1)
	go a.flushLoop()
}

// Stop halts the background goroutine and flushes whatever remains.
func (a *Aggregator) Stop() {
	close(a.done)
	a.wg.Wait()
	a.flush()
}

// Record increments the counter for an event stream. The fields of the
// most recent call win; they provide context for the summary line.
func (a *Aggregator) Record(component, event string, fields ...slog.Attr) {
	a.mu.Lock()
	defer a.mu.Unlock()

	key := tallyKey{component: component, event: event}
	entry, ok := a.tallies[key]
	if !ok {
		entry = &tally{}
		a.tallies[key] = entry
	}
	entry.count++
	if len(fields) > 0 {
		entry.fields = fields
	}
}

func (a *Aggregator) flushLoop() {
	defer a.wg.Done()
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.flush()
		case <-a.done:
			return
		}
	}
}

func (a *Aggregator) flush() {
	a.mu.Lock()
	if len(a.tallies) == 0 {
		a.mu.Unlock()
		return
	}
	tallies := a.tallies
	a.tallies = make(map[tallyKey]*tally)
	a.mu.Unlock()

	if a.logger == nil {
		return
	}

	for key, entry := range tallies {
		attrs := []any{
			slog.String("component", key.component),
			slog.String("event", key.event),
			slog.Int64("count", entry.count),
			slog.Int("window_seconds", int(a.interval.Seconds())),
		}
		for _, f := range entry.fields {
			attrs = append(attrs, f)
		}
		a.logger.Info("event_summary", attrs...)
	}
}
