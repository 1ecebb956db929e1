// opencode-bridge runs a command under a pseudo-terminal and relays its
// stdio. It is spawned by opencode-console; the first two arguments carry
// the initial terminal dimensions:
//
//	opencode-bridge <cols> <rows> <command> [args...]
//
// Besides forwarding input verbatim, the bridge watches stdin for the
// in-band resize control sequence (ESC ] RESIZE ; cols ; rows BEL) and
// applies it to the pseudo-terminal instead of forwarding it.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/asheshgoplani/opencode-console/internal/bridge"
)

func main() {
	if len(os.Args) < 4 {
		fmt.Fprintln(os.Stderr, "usage: opencode-bridge <cols> <rows> <command> [args...]")
		os.Exit(2)
	}

	cols, err := strconv.Atoi(os.Args[1])
	if err != nil || cols <= 0 {
		fmt.Fprintf(os.Stderr, "opencode-bridge: invalid cols %q\n", os.Args[1])
		os.Exit(2)
	}
	rows, err := strconv.Atoi(os.Args[2])
	if err != nil || rows <= 0 {
		fmt.Fprintf(os.Stderr, "opencode-bridge: invalid rows %q\n", os.Args[2])
		os.Exit(2)
	}

	os.Exit(bridge.Run(os.Stdin, os.Stdout, os.Stderr, cols, rows, os.Args[3], os.Args[4:]...))
}
