package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/asheshgoplani/opencode-console/internal/console"
	"github.com/asheshgoplani/opencode-console/internal/session"
)

// handleRun starts a single session attached to the current terminal,
// bypassing the TUI. Arguments after "--" are passed to the OpenCode CLI.
func handleRun(args []string) {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	dirFlag := fs.String("dir", "", "Working directory for the session")
	fs.Usage = func() {
		fmt.Println("Usage: opencode-console run [-dir DIR | dir] [-- extra args...]")
		fmt.Println()
		fmt.Println("Run a single OpenCode session in the current terminal.")
		fmt.Println("Detach is disabled in this mode; the session ends when OpenCode exits.")
		fmt.Println()
		fmt.Println("Options:")
		fs.PrintDefaults()
	}

	var extraArgs []string
	for i, a := range args {
		if a == "--" {
			extraArgs = args[i+1:]
			args = args[:i]
			break
		}
	}

	if err := fs.Parse(normalizeArgs(fs, args)); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if fs.NArg() > 1 {
		fmt.Fprintf(os.Stderr, "Error: unexpected arguments: %v\n", fs.Args()[1:])
		os.Exit(1)
	}

	dir := *dirFlag
	if dir == "" && fs.NArg() == 1 {
		dir = fs.Arg(0)
	}
	if dir != "" {
		dir = session.ExpandPath(dir)
	} else {
		dir, _ = os.Getwd()
	}

	shutdownLogging := initLogging()
	defer shutdownLogging()

	if err := console.Run(context.Background(), dir, extraArgs...); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
