package logging

import (
	"log/slog"
	"net/http"
	_ "net/http/pprof" // registers the /debug/pprof handlers
)

// pprofAddr is localhost-only; the profiler must never be reachable from
// other hosts.
const pprofAddr = "localhost:6060"

// startPprof serves the pprof HTTP endpoints in the background. Only
// called when PprofEnabled is set in config.
func startPprof() {
	go func() {
		Logger().Info("pprof_server_start", slog.String("addr", pprofAddr))
		if err := http.ListenAndServe(pprofAddr, nil); err != nil {
			Logger().Error("pprof_server_error", slog.String("error", err.Error()))
		}
	}()
}
