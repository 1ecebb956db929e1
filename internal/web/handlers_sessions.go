package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/asheshgoplani/opencode-console/internal/session"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type sessionInfo struct {
	ID        string    `json:"id"`
	Dir       string    `json:"dir"`
	Binary    string    `json:"binary"`
	State     string    `json:"state"`
	Cols      int       `json:"cols"`
	Rows      int       `json:"rows"`
	StartedAt time.Time `json:"startedAt"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]apiError{"error": {Code: code, Message: message}})
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
		return
	}
	if !s.authorizeRequest(r) {
		writeAPIError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
		return
	}

	handles := s.sessions.List()
	infos := make([]sessionInfo, 0, len(handles))
	for _, h := range handles {
		infos = append(infos, infoFor(h))
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": infos})
}

func infoFor(h *session.Handle) sessionInfo {
	return sessionInfo{
		ID:        h.ID,
		Dir:       h.Dir,
		Binary:    h.Binary,
		State:     string(h.State()),
		Cols:      h.Cols,
		Rows:      h.Rows,
		StartedAt: h.Started().UTC(),
	}
}
