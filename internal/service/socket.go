package service

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/mmynk/splitclaim/internal/broadcast"
)

// BillSocketPattern is the mux pattern for a bill's change feed.
const BillSocketPattern = "GET /api/v1/bill/{id}/ws"

// Acceptor registers upgraded viewer connections.
type Acceptor interface {
	Accept(w http.ResponseWriter, r *http.Request, billID string) error
}

// BillSocketHandler upgrades a request into a viewer of the bill named by
// the {id} path value. Viewers receive one change token per applied claim
// and nothing else.
func BillSocketHandler(hub Acceptor) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		billID := r.PathValue("id")
		if billID == "" {
			http.Error(w, "bill id required", http.StatusBadRequest)
			return
		}
		if !websocket.IsWebSocketUpgrade(r) {
			http.Error(w, "expected websocket upgrade", http.StatusUpgradeRequired)
			return
		}

		if err := hub.Accept(w, r, billID); err != nil {
			if errors.Is(err, broadcast.ErrTooManyViewers) {
				slog.Warn("Viewer refused", "bill_id", billID, "error", err)
				return
			}
			slog.Debug("Viewer not registered", "bill_id", billID, "error", err)
			return
		}
		slog.Debug("Viewer joined", "bill_id", billID)
	})
}
