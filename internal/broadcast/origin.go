package broadcast

import (
	"log/slog"
	"net/http"
	"strings"
)

// AllowedOrigins returns an upgrade origin check. Requests without an Origin
// header (non-browser clients) are always allowed; "*" allows every origin.
func AllowedOrigins(origins []string) func(*http.Request) bool {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[strings.TrimRight(strings.TrimSpace(o), "/")] = true
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || allowed["*"] || allowed[origin] {
			return true
		}

		slog.Warn("WebSocket origin rejected", "origin", origin, "remote_addr", r.RemoteAddr)
		return false
	}
}
