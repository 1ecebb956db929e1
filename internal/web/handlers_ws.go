package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/asheshgoplani/opencode-console/internal/logging"
	"github.com/asheshgoplani/opencode-console/internal/session"
)

type wsClientMessage struct {
	Type string `json:"type"`
	Data string `json:"data,omitempty"`
	Cols int    `json:"cols,omitempty"`
	Rows int    `json:"rows,omitempty"`
}

type wsServerMessage struct {
	Type      string    `json:"type"` // status, error
	Event     string    `json:"event,omitempty"`
	Code      string    `json:"code,omitempty"`
	Message   string    `json:"message,omitempty"`
	SessionID string    `json:"sessionId,omitempty"`
	ReadOnly  bool      `json:"readOnly,omitempty"`
	Time      time.Time `json:"time,omitempty"`
}

func (s *Server) wsUpgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     s.allowWSOrigin,
	}
}

// allowWSOrigin admits same-host origins, anything in AllowedOrigins, and
// clients that send no Origin header (native tools, curl).
func (s *Server) allowWSOrigin(r *http.Request) bool {
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil || originURL.Host == "" {
		return false
	}

	if strings.EqualFold(originURL.Host, r.Host) {
		return true
	}
	for _, allowed := range s.cfg.AllowedOrigins {
		if strings.EqualFold(strings.TrimSpace(allowed), origin) ||
			strings.EqualFold(strings.TrimSpace(allowed), originURL.Host) {
			return true
		}
	}
	return false
}

func (s *Server) handleSessionWS(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
		return
	}

	if !s.authorizeRequest(r) {
		writeAPIError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
		return
	}

	const prefix = "/ws/session/"
	sessionID := strings.TrimPrefix(r.URL.Path, prefix)
	if sessionID == "" || strings.Contains(sessionID, "/") {
		writeAPIError(w, http.StatusBadRequest, "INVALID_REQUEST", "session id is required")
		return
	}

	handle, found := s.sessions.Get(sessionID)
	if !found {
		writeAPIError(w, http.StatusNotFound, "NOT_FOUND", "session not found")
		return
	}

	conn, err := s.wsUpgrader().Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	writer := newWSConnWriter(conn)

	_ = writer.WriteJSON(wsServerMessage{
		Type:      "status",
		Event:     "connected",
		SessionID: sessionID,
		ReadOnly:  s.cfg.ReadOnly,
		Time:      time.Now().UTC(),
	})

	events, replay, cancel := handle.Subscribe()
	defer cancel()
	if len(replay) > 0 {
		_ = writer.WriteBinary(replay)
	}

	_ = writer.WriteJSON(wsServerMessage{
		Type:      "status",
		Event:     "ready",
		SessionID: sessionID,
		Time:      time.Now().UTC(),
	})

	go s.mirrorSession(r, conn, writer, sessionID, events)

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(
				err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logging.ForComponent(logging.CompWeb).Warn("websocket_closed_unexpectedly",
					slog.String("session_id", sessionID),
					slog.String("error", err.Error()))
			}
			return
		}

		var msg wsClientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			_ = writer.WriteJSON(wsServerMessage{
				Type:      "error",
				Code:      "INVALID_MESSAGE",
				Message:   "invalid json payload",
				SessionID: sessionID,
				Time:      time.Now().UTC(),
			})
			continue
		}

		switch msg.Type {
		case "ping":
			_ = writer.WriteJSON(wsServerMessage{
				Type:      "status",
				Event:     "pong",
				SessionID: sessionID,
				Time:      time.Now().UTC(),
			})
		case "input":
			if s.cfg.ReadOnly {
				_ = writer.WriteJSON(wsServerMessage{
					Type:      "error",
					Code:      "READ_ONLY",
					Message:   "input is disabled in read-only mode",
					SessionID: sessionID,
					Time:      time.Now().UTC(),
				})
				continue
			}
			handle.Write([]byte(msg.Data))
		case "resize":
			if msg.Cols <= 0 || msg.Rows <= 0 {
				_ = writer.WriteJSON(wsServerMessage{
					Type:      "error",
					Code:      "INVALID_DIMENSIONS",
					Message:   "cols and rows must be positive",
					SessionID: sessionID,
					Time:      time.Now().UTC(),
				})
				continue
			}
			handle.Resize(msg.Cols, msg.Rows)
		default:
			_ = writer.WriteJSON(wsServerMessage{
				Type:      "error",
				Code:      "UNSUPPORTED_MESSAGE",
				Message:   "supported message types: ping,input,resize",
				SessionID: sessionID,
				Time:      time.Now().UTC(),
			})
		}
	}
}

// mirrorSession forwards session events to the websocket as binary frames
// until the session ends or the request context is cancelled. It closes the
// connection on exit so the read loop unblocks.
func (s *Server) mirrorSession(r *http.Request, conn *websocket.Conn, writer *wsConnWriter, sessionID string, events <-chan session.Event) {
	defer conn.Close()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				_ = writer.WriteJSON(wsServerMessage{
					Type:      "status",
					Event:     "session_closed",
					SessionID: sessionID,
					Time:      time.Now().UTC(),
				})
				return
			}
			switch e := ev.(type) {
			case session.StdoutEvent:
				if writer.WriteBinary(e.Data) != nil {
					return
				}
			case session.StderrEvent:
				if writer.WriteBinary(e.Data) != nil {
					return
				}
			case session.ExitEvent, session.ErrorEvent:
				// The session already emitted its exit or error line as
				// output; the closed channel follows shortly.
			}
		case <-r.Context().Done():
			return
		}
	}
}
