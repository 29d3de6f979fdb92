// Package api implements the TennisScore REST API.
// It records points, serves scores, and upgrades live subscriptions.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/tennisscore/tennisscore/internal/live"
	"github.com/tennisscore/tennisscore/internal/matches"
	"github.com/tennisscore/tennisscore/internal/recorder"
	"github.com/tennisscore/tennisscore/pkg/match"
	"github.com/tennisscore/tennisscore/pkg/scoring"
)

// MatchStore is the part of the match store the API reads directly.
type MatchStore interface {
	CreateMatch(ctx context.Context, player1, player2 string, format match.MatchFormat) (*matches.Match, error)
	GetMatch(ctx context.Context, id string) (*matches.Match, error)
	ListMatches(ctx context.Context, status string, limit int) ([]matches.Match, error)
}

// Handler is the top-level API handler for the TennisScore service.
type Handler struct {
	store         MatchStore
	recorder      *recorder.Service
	hub           *live.Hub
	defaultFormat atomic.Pointer[match.MatchFormat]
	apiKey        string
}

// NewHandler creates a new API handler. hub may be nil when live updates
// are disabled.
func NewHandler(store MatchStore, rec *recorder.Service, hub *live.Hub, defaultFormat match.MatchFormat, apiKey string) *Handler {
	h := &Handler{
		store:    store,
		recorder: rec,
		hub:      hub,
		apiKey:   apiKey,
	}
	h.SetDefaultFormat(defaultFormat)
	return h
}

// SetDefaultFormat swaps the format used for matches created without one.
// Called on config reload.
func (h *Handler) SetDefaultFormat(f match.MatchFormat) {
	h.defaultFormat.Store(&f)
}

// RegisterRoutes registers all API routes on the given ServeMux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	auth := APIKeyAuth(h.apiKey)

	// Write endpoints (auth-protected)
	mux.Handle("POST /api/v1/matches", auth(http.HandlerFunc(h.handleCreateMatch)))
	mux.Handle("POST /api/v1/matches/{matchID}/points", auth(http.HandlerFunc(h.handleRecordPoint)))
	mux.Handle("POST /api/v1/matches/{matchID}/rebuild", auth(http.HandlerFunc(h.handleRebuild)))
	mux.Handle("POST /api/v1/rebuild", auth(http.HandlerFunc(h.handleRebuildAll)))

	// Read endpoints
	mux.HandleFunc("GET /api/v1/matches", h.handleListMatches)
	mux.HandleFunc("GET /api/v1/matches/{matchID}", h.handleGetMatch)
	mux.HandleFunc("GET /api/v1/matches/{matchID}/points", h.handleListPoints)
	mux.HandleFunc("GET /api/v1/matches/{matchID}/score", h.handleScore)
	mux.HandleFunc("GET /api/v1/matches/{matchID}/next", h.handleNext)
	mux.HandleFunc("GET /api/v1/matches/{matchID}/stats", h.handleStats)
	if h.hub != nil {
		mux.HandleFunc("GET /api/v1/matches/{matchID}/live", h.handleLive)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps domain errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, matches.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, match.ErrInvalidFormat):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, match.ErrLogIntegrity):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, scoring.ErrIllegalState), errors.Is(err, matches.ErrAbandoned):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
