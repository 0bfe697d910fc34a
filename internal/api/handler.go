// Package api provides HTTP handlers for the keyrelay API.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ashureev/keyrelay/internal/hittest"
	"github.com/ashureev/keyrelay/internal/layout"
	"github.com/ashureev/keyrelay/internal/relay"
	"github.com/ashureev/keyrelay/internal/store"
	"github.com/ashureev/keyrelay/internal/suggest"
	"github.com/go-chi/chi/v5"
)

// StateSource exposes the relay's shared state.
type StateSource interface {
	Snapshot(ctx context.Context) (relay.Snapshot, error)
}

// StatsSource exposes session log counters.
type StatsSource interface {
	Stats() store.RecorderStats
}

// Handler serves the read-only keyrelay API.
type Handler struct {
	repo          store.Repository
	state         StateSource
	stats         StatsSource
	sessions      store.Lister
	geometry      *layout.Geometry
	index         *suggest.Index
	stripWidth    float64
	healthTimeout time.Duration
}

// Deps are the collaborators a Handler reads from. State, Stats, Sessions
// and Index may be nil.
type Deps struct {
	Repo       store.Repository
	State      StateSource
	Stats      StatsSource
	Sessions   store.Lister
	Geometry   *layout.Geometry
	Index      *suggest.Index
	StripWidth float64
}

// NewHandler creates a new Handler with common dependencies.
func NewHandler(d Deps) *Handler {
	if d.StripWidth <= 0 {
		d.StripWidth = hittest.DefaultStripWidth
	}
	return &Handler{
		repo:          d.Repo,
		state:         d.State,
		stats:         d.Stats,
		sessions:      d.Sessions,
		geometry:      d.Geometry,
		index:         d.Index,
		stripWidth:    d.StripWidth,
		healthTimeout: 5 * time.Second,
	}
}

// RegisterRoutes registers all API routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.Health)
	r.Route("/api", func(r chi.Router) {
		r.Get("/layout", h.GetLayout)
		r.Get("/hit", h.GetHit)
		r.Get("/suggestions", h.GetSuggestions)
		r.Get("/state", h.GetState)
		r.Get("/sessions", h.ListSessions)
	})
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}
