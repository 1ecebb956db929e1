package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/asheshgoplani/opencode-console/internal/history"
)

// handleHistory prints recent session records from the history database.
func handleHistory(args []string) {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	limit := fs.Int("n", 20, "Number of records to show")
	asJSON := fs.Bool("json", false, "Print records as JSON instead of a table")
	prune := fs.Int("prune", 0, "Delete records older than this many days and exit")

	fs.Usage = func() {
		fmt.Println("Usage: opencode-console history [options]")
		fmt.Println()
		fmt.Println("Options:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(normalizeArgs(fs, args)); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	dbPath, err := history.DefaultPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	store, err := history.Open(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if *prune > 0 {
		removed, err := store.Prune(*prune)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Pruned %d record(s) older than %d day(s)\n", removed, *prune)
		return
	}

	records, err := store.Recent(*limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(records); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if len(records) == 0 {
		fmt.Println("No session history.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDIR\tSTARTED\tDURATION\tOUTCOME")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Dir,
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			formatDuration(r), formatOutcome(r))
	}
	_ = w.Flush()
}

func formatDuration(r history.Record) string {
	if r.EndedAt.IsZero() {
		return "running"
	}
	d := r.EndedAt.Sub(r.StartedAt).Round(time.Second)
	if d < 0 {
		d = 0
	}
	return d.String()
}

func formatOutcome(r history.Record) string {
	switch r.Outcome {
	case history.OutcomeExited:
		if r.Signaled {
			return "exited (signaled)"
		}
		return fmt.Sprintf("exited (%d)", r.ExitCode)
	case "":
		return "running"
	default:
		return r.Outcome
	}
}
