package api

import (
	"log/slog"
	"net/http"

	"github.com/ashureev/keyrelay/internal/domain"
	"github.com/ashureev/keyrelay/internal/relay"
	"github.com/ashureev/keyrelay/internal/store"
)

type stateView struct {
	Session    relay.Snapshot       `json:"session"`
	SessionLog *store.RecorderStats `json:"session_log,omitempty"`
}

// GetState returns the relay's shared session state.
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	if h.state == nil {
		Error(w, http.StatusServiceUnavailable, "relay not running")
		return
	}
	snap, err := h.state.Snapshot(r.Context())
	if err != nil {
		slog.Error("Failed to read relay state", "error", err)
		Error(w, http.StatusServiceUnavailable, "relay not running")
		return
	}

	view := stateView{Session: snap}
	if h.stats != nil {
		stats := h.stats.Stats()
		view.SessionLog = &stats
	}
	JSON(w, http.StatusOK, view)
}

// ListSessions returns recorded sessions, optionally filtered by the
// participant query parameter. It needs a backend that can read records back.
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	if h.sessions == nil {
		Error(w, http.StatusNotImplemented, "session history requires the sqlite backend")
		return
	}
	recs, err := h.sessions.List(r.Context(), r.URL.Query().Get("participant"))
	if err != nil {
		slog.Error("Failed to list sessions", "error", err)
		Error(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}
	if recs == nil {
		recs = []domain.SessionLogRecord{}
	}
	JSON(w, http.StatusOK, map[string]interface{}{"sessions": recs})
}
