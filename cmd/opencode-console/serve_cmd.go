package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/asheshgoplani/opencode-console/internal/session"
	"github.com/asheshgoplani/opencode-console/internal/web"
)

// handleServe launches the TUI with the WebSocket mirror alongside.
// Flag defaults come from the [web] section of config.toml.
func handleServe(args []string) {
	cfg, err := buildWebConfig(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	launch(cfg)
}

// buildWebConfig parses serve flags and returns a ready web config.
func buildWebConfig(args []string) (*web.Config, error) {
	webDefaults := session.WebSettings{}
	if userCfg, err := session.LoadUserConfig(); err == nil && userCfg != nil {
		webDefaults = userCfg.Web
	}

	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	listenAddr := fs.String("listen", webDefaults.GetListen(), "Listen address for the web mirror")
	readOnly := fs.Bool("read-only", webDefaults.ReadOnly, "Reject input and resize from web clients")
	token := fs.String("token", webDefaults.Token, "Bearer token required for API/WS access")
	origins := fs.String("allowed-origins", strings.Join(webDefaults.AllowedOrigins, ","),
		"Comma-separated Origin allowlist for WebSocket upgrades (empty = same-host only)")

	fs.Usage = func() {
		fmt.Println("Usage: opencode-console serve [options]")
		fmt.Println()
		fmt.Println("Launch the TUI with the WebSocket mirror running alongside.")
		fmt.Println()
		fmt.Println("Options:")
		fs.PrintDefaults()
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  opencode-console serve")
		fmt.Println("  opencode-console serve --listen 127.0.0.1:9000 --token s3cret")
		fmt.Println("  opencode-console serve --read-only")
	}

	if err := fs.Parse(normalizeArgs(fs, args)); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		return nil, fmt.Errorf("flag parsing: %w", err)
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	var allowedOrigins []string
	for _, origin := range strings.Split(*origins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			allowedOrigins = append(allowedOrigins, origin)
		}
	}

	return &web.Config{
		ListenAddr:     *listenAddr,
		ReadOnly:       *readOnly,
		Token:          *token,
		AllowedOrigins: allowedOrigins,
	}, nil
}
