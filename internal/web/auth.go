package web

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// authorizeRequest checks the request against the configured token. The
// token may arrive as a ?token= query parameter (browser WebSocket clients
// cannot set headers) or as an Authorization bearer header. An empty
// configured token disables auth.
func (s *Server) authorizeRequest(r *http.Request) bool {
	if s.cfg.Token == "" {
		return true
	}

	if queryToken := strings.TrimSpace(r.URL.Query().Get("token")); queryToken != "" {
		if tokenMatches(queryToken, s.cfg.Token) {
			return true
		}
	}

	if headerToken := tokenFromHeader(r.Header.Get("Authorization")); headerToken != "" {
		if tokenMatches(headerToken, s.cfg.Token) {
			return true
		}
	}

	return false
}

// tokenFromHeader extracts the token from a "Bearer <token>" header value,
// returning "" when the header carries no usable token.
func tokenFromHeader(authHeader string) string {
	const bearerPrefix = "Bearer "

	authHeader = strings.TrimSpace(authHeader)
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))
}

func tokenMatches(got, want string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
