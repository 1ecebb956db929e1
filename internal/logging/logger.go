package logging

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Component constants for structured logging.
const (
	CompSession   = "session"
	CompBridge    = "bridge"
	CompLocate    = "locate"
	CompUI        = "ui"
	CompWeb       = "web"
	CompHistory   = "history"
	CompClipboard = "clipboard"
	CompConfig    = "config"
)

// Config controls where logs go and how much is kept around.
type Config struct {
	// LogDir is where debug.log and its rotations live
	// (e.g. ~/.opencode-console). Empty plus Debug=false means discard.
	LogDir string

	// Level is the minimum level: "debug", "info", "warn", "error".
	Level string

	// Format selects the handler: "json" (default) or "text".
	Format string

	// Rotation knobs, passed straight to lumberjack.
	MaxSizeMB  int // default 10
	MaxBackups int // default 5
	MaxAgeDays int // default 10
	Compress   bool

	// RingBufferSize is the crash-dump ring size in bytes (default 10MB).
	RingBufferSize int

	// AggregateIntervalSecs is how often batched events flush (default 30).
	AggregateIntervalSecs int

	// PprofEnabled starts the localhost pprof server.
	PprofEnabled bool

	// Debug enables file logging even without an explicit LogDir.
	Debug bool
}

var (
	activeLogger *slog.Logger
	activeRing   *RingBuffer
	activeAgg    *Aggregator
	stateMu      sync.RWMutex
	fileWriter   *lumberjack.Logger
)

// Init initializes the global logging system.
// When debug is false and no log dir is provided, logs are discarded.
func Init(cfg Config) {
	stateMu.Lock()
	defer stateMu.Unlock()

	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = 10
	}
	if cfg.MaxBackups <= 0 {
		cfg.MaxBackups = 5
	}
	if cfg.MaxAgeDays <= 0 {
		cfg.MaxAgeDays = 10
	}
	if cfg.RingBufferSize <= 0 {
		cfg.RingBufferSize = 10 * 1024 * 1024 // 10MB
	}
	if cfg.AggregateIntervalSecs <= 0 {
		cfg.AggregateIntervalSecs = 30
	}

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	// Outside debug mode with no explicit log dir, everything is discarded
	// so log writes cannot corrupt the TUI.
	if !cfg.Debug && cfg.LogDir == "" {
		activeLogger = slog.New(slog.NewJSONHandler(io.Discard, nil))
		activeRing = NewRingBuffer(1024)
		activeAgg = NewAggregator(nil, cfg.AggregateIntervalSecs)
		return
	}

	logPath := filepath.Join(cfg.LogDir, "debug.log")
	fileWriter = &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}

	// Every record goes both to the rotated file and to the in-memory ring,
	// so a crash dump has the recent history even if the file write lags.
	activeRing = NewRingBuffer(cfg.RingBufferSize)
	multi := io.MultiWriter(fileWriter, activeRing)

	handlerOpts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(multi, handlerOpts)
	} else {
		handler = slog.NewJSONHandler(multi, handlerOpts)
	}

	activeLogger = slog.New(handler)

	activeAgg = NewAggregator(activeLogger, cfg.AggregateIntervalSecs)
	activeAgg.Start()

	if cfg.PprofEnabled {
		startPprof()
	}
}

// Logger returns the global logger. Before Init it returns a discard logger.
func Logger() *slog.Logger {
	stateMu.RLock()
	defer stateMu.RUnlock()
	if activeLogger == nil {
		return slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return activeLogger
}

// ForComponent returns a logger tagged with the given component name.
func ForComponent(name string) *slog.Logger {
	return slog.New(&lazyHandler{component: name})
}

// lazyHandler implements slog.Handler by resolving the current global
// handler at log time. Package-level component loggers
// (var configLog = logging.ForComponent(CompConfig)) are constructed before
// Init runs; binding the handler eagerly would freeze them on the discard
// handler and lose their output for the life of the process.
type lazyHandler struct {
	component string
	attrs     []slog.Attr
	group     string
}

func (h *lazyHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return Logger().Handler().Enabled(ctx, level)
}

func (h *lazyHandler) Handle(ctx context.Context, r slog.Record) error {
	handler := Logger().Handler()
	handler = handler.WithAttrs([]slog.Attr{slog.String("component", h.component)})
	if len(h.attrs) > 0 {
		handler = handler.WithAttrs(h.attrs)
	}
	if h.group != "" {
		handler = handler.WithGroup(h.group)
	}
	return handler.Handle(ctx, r)
}

func (h *lazyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	copy(newAttrs[len(h.attrs):], attrs)
	return &lazyHandler{component: h.component, attrs: newAttrs, group: h.group}
}

func (h *lazyHandler) WithGroup(name string) slog.Handler {
	return &lazyHandler{component: h.component, attrs: h.attrs, group: name}
}

// Aggregate counts a high-frequency event instead of logging each occurrence.
func Aggregate(component, key string, fields ...slog.Attr) {
	stateMu.RLock()
	agg := activeAgg
	stateMu.RUnlock()
	if agg != nil {
		agg.Record(component, key, fields...)
	}
}

// DumpRingBuffer writes the recent log history to path. No-op before Init.
func DumpRingBuffer(path string) error {
	stateMu.RLock()
	ring := activeRing
	stateMu.RUnlock()
	if ring == nil {
		return nil
	}
	return ring.DumpToFile(path)
}

// Shutdown flushes the aggregator and closes writers.
func Shutdown() {
	stateMu.Lock()
	defer stateMu.Unlock()

	if activeAgg != nil {
		activeAgg.Stop()
		activeAgg = nil
	}
	if fileWriter != nil {
		fileWriter.Close()
		fileWriter = nil
	}
	activeLogger = nil
	activeRing = nil
}
