package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/asheshgoplani/opencode-console/internal/console"
	"github.com/asheshgoplani/opencode-console/internal/history"
	"github.com/asheshgoplani/opencode-console/internal/logging"
	"github.com/asheshgoplani/opencode-console/internal/session"
	"github.com/asheshgoplani/opencode-console/internal/ui"
	"github.com/asheshgoplani/opencode-console/internal/web"
)

const Version = "0.3.0"

// init sets up color profile for consistent terminal colors across environments
func init() {
	initColorProfile()
}

// initColorProfile configures lipgloss color profile based on terminal
// capabilities. Prefers TrueColor, falls back to ANSI256.
func initColorProfile() {
	// OPENCODE_CONSOLE_COLOR: truecolor, 256, 16, none
	if colorEnv := os.Getenv("OPENCODE_CONSOLE_COLOR"); colorEnv != "" {
		switch strings.ToLower(colorEnv) {
		case "truecolor", "true", "24bit":
			lipgloss.SetColorProfile(termenv.TrueColor)
			return
		case "256", "ansi256":
			lipgloss.SetColorProfile(termenv.ANSI256)
			return
		case "16", "ansi", "basic":
			lipgloss.SetColorProfile(termenv.ANSI)
			return
		case "none", "off":
			lipgloss.SetColorProfile(termenv.Ascii)
			return
		}
	}

	switch termenv.ColorProfile() {
	case termenv.TrueColor:
		lipgloss.SetColorProfile(termenv.TrueColor)
	default:
		lipgloss.SetColorProfile(termenv.ANSI256)
	}
}

func main() {
	args := os.Args[1:]
	if len(args) > 0 {
		switch args[0] {
		case "version", "--version", "-v":
			fmt.Printf("OpenCode Console v%s\n", Version)
			return
		case "help", "--help", "-h":
			printHelp()
			return
		case "run":
			handleRun(args[1:])
			return
		case "serve":
			handleServe(args[1:])
			return
		case "history":
			handleHistory(args[1:])
			return
		default:
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", args[0])
			printHelp()
			os.Exit(1)
		}
	}

	launch(nil)
}

// launch runs the TUI session manager, optionally with the web mirror
// alongside.
func launch(webCfg *web.Config) {
	_ = session.CreateExampleConfig()
	ui.InitTheme(session.ResolveTheme())

	shutdownLogging := initLogging()
	defer shutdownLogging()

	manager := session.NewManager()
	defer manager.CloseAll()

	store := openHistory(manager)
	if store != nil {
		defer store.Close()
	}

	watcher := startConfigWatcher()
	if watcher != nil {
		defer watcher.Stop()
	}

	var server *web.Server
	if webCfg != nil {
		webCfg.Sessions = manager
		server = web.NewServer(*webCfg)
		go func() {
			if err := server.Start(); err != nil {
				fmt.Fprintf(os.Stderr, "web server error: %v\n", err)
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
		}()
		fmt.Fprintf(os.Stderr, "Web mirror listening on %s\n", server.Addr())
	}

	// SIGINT/SIGTERM dispose sessions before exit
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		manager.CloseAll()
		os.Exit(0)
	}()

	if err := runTUI(manager); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runTUI alternates between the home screen and raw-mode attach until the
// user quits.
func runTUI(manager *session.Manager) error {
	for {
		model := ui.NewModel(manager)
		p := tea.NewProgram(model, tea.WithAltScreen())

		finalModel, err := p.Run()
		if err != nil {
			return err
		}

		m, ok := finalModel.(*ui.Model)
		if !ok || m.AttachID == "" {
			return nil
		}

		if handle, found := manager.Get(m.AttachID); found {
			if err := console.AttachHandle(context.Background(), handle); err != nil {
				fmt.Fprintf(os.Stderr, "attach failed: %v\n", err)
			}
		}
	}
}

// initLogging configures the structured logging stack from user config.
// When OPENCODE_CONSOLE_DEBUG is unset, logs are discarded to avoid TUI
// interference. Returns the shutdown func.
func initLogging() func() {
	debugMode := os.Getenv("OPENCODE_CONSOLE_DEBUG") != ""
	baseDir, err := session.GetConsoleDir()
	if err != nil {
		return func() {}
	}

	ls := session.GetLogSettings()
	logging.Init(logging.Config{
		Debug:                 debugMode,
		LogDir:                baseDir,
		Level:                 ls.DebugLevel,
		Format:                ls.DebugFormat,
		MaxSizeMB:             ls.DebugMaxMB,
		MaxBackups:            ls.DebugBackups,
		MaxAgeDays:            ls.DebugRetentionDays,
		Compress:              ls.GetDebugCompress(),
		RingBufferSize:        ls.RingBufferMB * 1024 * 1024,
		PprofEnabled:          ls.PprofEnabled,
		AggregateIntervalSecs: ls.AggregateIntervalS,
	})

	// Route stray stdlib log output (ours and vendored libraries') into
	// the structured logger instead of the terminal.
	log.SetOutput(logging.NewBridgeWriter(logging.CompUI))

	if debugMode {
		logging.ForComponent(logging.CompUI).Info("instance_started",
			slog.Int("pid", os.Getpid()),
			slog.String("version", Version))
	}

	startCrashDumpListener(baseDir)

	return logging.Shutdown
}

// openHistory wires session lifecycle recording when history is enabled.
func openHistory(manager *session.Manager) *history.Store {
	cfg, _ := session.LoadUserConfig()
	if cfg != nil && !cfg.History.GetEnabled() {
		return nil
	}

	dbPath, err := history.DefaultPath()
	if err != nil {
		return nil
	}
	store, err := history.Open(dbPath)
	if err != nil {
		logging.ForComponent(logging.CompHistory).Warn("history_disabled",
			slog.String("error", err.Error()))
		return nil
	}

	keepDays := 90
	if cfg != nil {
		keepDays = cfg.History.GetKeepDays()
	}
	if _, err := store.Prune(keepDays); err != nil {
		logging.ForComponent(logging.CompHistory).Warn("history_prune_failed",
			slog.String("error", err.Error()))
	}

	manager.OnStart = func(s *session.Session) {
		_ = store.RecordStart(history.Record{
			ID:        s.ID,
			Binary:    s.Binary,
			Dir:       s.Dir,
			Cols:      s.Cols,
			Rows:      s.Rows,
			StartedAt: s.Started(),
		})
	}
	manager.OnEnd = func(s *session.Session, ev session.Event) {
		outcome := history.OutcomeDisposed
		exitCode := 0
		signaled := false
		switch e := ev.(type) {
		case session.ExitEvent:
			outcome = history.OutcomeExited
			exitCode = e.Code
			signaled = e.Signaled
		case session.ErrorEvent:
			outcome = history.OutcomeErrored
			exitCode = -1
		}
		_ = store.RecordEnd(s.ID, time.Now(), exitCode, signaled, outcome)
	}

	return store
}

// startConfigWatcher reloads the theme when config.toml changes on disk.
func startConfigWatcher() *session.ConfigWatcher {
	watcher, err := session.NewConfigWatcher()
	if err != nil {
		return nil
	}
	// Start blocks until Stop, so it gets its own goroutine.
	go watcher.Start()

	go func() {
		for range watcher.ReloadCh() {
			ui.InitTheme(session.ResolveTheme())
		}
	}()
	return watcher
}

func printHelp() {
	fmt.Println("OpenCode Console - embedded terminal manager for the OpenCode CLI")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  opencode-console              Launch the TUI session manager")
	fmt.Println("  opencode-console run [dir]    Run a single session in the current terminal")
	fmt.Println("  opencode-console serve        Launch the TUI with the WebSocket mirror alongside")
	fmt.Println("  opencode-console history      Show recent session history")
	fmt.Println("  opencode-console version      Print the version")
	fmt.Println()
	fmt.Println("Configuration lives in ~/.opencode-console/config.toml.")
	fmt.Println("Inside a session, press Ctrl+Q to detach back to the manager.")
}
