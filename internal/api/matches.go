package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/tennisscore/tennisscore/internal/matches"
	"github.com/tennisscore/tennisscore/internal/recorder"
	"github.com/tennisscore/tennisscore/pkg/match"
	"github.com/tennisscore/tennisscore/pkg/scoring"
	"github.com/tennisscore/tennisscore/pkg/surface"
)

type createMatchRequest struct {
	Player1 string             `json:"player1"`
	Player2 string             `json:"player2"`
	Format  *match.MatchFormat `json:"format"` // nil means the configured default
}

type rebuildResponse struct {
	MatchID  string         `json:"match_id"`
	Score    *scoring.Score `json:"score"`
	Kept     int            `json:"kept"`
	Rejected int            `json:"rejected"`
	Error    string         `json:"error,omitempty"`
}

type rebuildAllRequest struct {
	Status string `json:"status"` // optional filter
}

type rebuildAllResponse struct {
	Rebuilt int `json:"rebuilt"`
	Errors  int `json:"errors"`
}

func (h *Handler) handleCreateMatch(w http.ResponseWriter, r *http.Request) {
	var req createMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Player1 == "" || req.Player2 == "" {
		writeError(w, http.StatusBadRequest, "player1 and player2 are required")
		return
	}

	format := *h.defaultFormat.Load()
	if req.Format != nil {
		format = *req.Format
	}

	m, err := h.store.CreateMatch(r.Context(), req.Player1, req.Player2, format)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	slog.Info("api: match created", "match_id", m.ID, "format", format.String())
	writeJSON(w, http.StatusCreated, m)
}

func (h *Handler) handleListMatches(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	list, err := h.store.ListMatches(r.Context(), r.URL.Query().Get("status"), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if list == nil {
		list = []matches.Match{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) handleGetMatch(w http.ResponseWriter, r *http.Request) {
	m, err := h.store.GetMatch(r.Context(), r.PathValue("matchID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *Handler) handleRecordPoint(w http.ResponseWriter, r *http.Request) {
	var in recorder.PointInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	u, err := h.recorder.RecordPoint(r.Context(), r.PathValue("matchID"), in)
	if err != nil {
		if !recorder.IsClientError(err) {
			slog.Error("api: record point", "match_id", r.PathValue("matchID"), "err", err)
		}
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (h *Handler) handleListPoints(w http.ResponseWriter, r *http.Request) {
	_, annotated, _, err := h.recorder.Annotated(r.Context(), r.PathValue("matchID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if annotated == nil {
		annotated = []match.PointEvent{}
	}
	writeJSON(w, http.StatusOK, annotated)
}

// handleScore renders the match report. ?output=text|markdown|json picks
// the renderer; json is the default.
func (h *Handler) handleScore(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("matchID")
	m, err := h.store.GetMatch(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	sc, err := h.recorder.Score(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	report := &surface.Report{MatchID: id, Format: m.Format, Score: sc}
	if !sc.IsComplete() {
		if report.Next, err = scoring.Classify(sc, m.Format); err != nil {
			writeServiceError(w, err)
			return
		}
	}

	output := r.URL.Query().Get("output")
	if output == "" {
		output = "json"
	}
	renderer, err := surface.ForOutput(output)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	switch output {
	case "json":
		w.Header().Set("Content-Type", "application/json")
	case "markdown", "md":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	default:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	if err := renderer.Render(w, report); err != nil {
		slog.Error("api: render score", "match_id", id, "err", err)
	}
}

func (h *Handler) handleNext(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("matchID")
	m, err := h.store.GetMatch(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	sc, err := h.recorder.Score(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	ctx, err := scoring.Classify(sc, m.Format)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ctx)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	_, annotated, _, err := h.recorder.Annotated(r.Context(), r.PathValue("matchID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scoring.ComputeStats(annotated))
}

func (h *Handler) handleRebuild(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("matchID")
	rec, err := h.recorder.Rebuild(r.Context(), id)
	if rec == nil {
		writeServiceError(w, err)
		return
	}
	resp := rebuildResponse{MatchID: id, Score: rec.Score, Kept: len(rec.Points), Rejected: len(rec.Rejected)}
	if rec.Err != nil {
		resp.Error = rec.Err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleRebuildAll recomputes the cached score of every match, optionally
// filtered by status.
func (h *Handler) handleRebuildAll(w http.ResponseWriter, r *http.Request) {
	var req rebuildAllRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
	}

	list, err := h.store.ListMatches(r.Context(), req.Status, 1000)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	var resp rebuildAllResponse
	for _, m := range list {
		if _, err := h.recorder.Rebuild(r.Context(), m.ID); err != nil {
			slog.Warn("api: rebuild failed", "match_id", m.ID, "err", err)
			resp.Errors++
			continue
		}
		resp.Rebuilt++
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleLive(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("matchID")
	if _, err := h.store.GetMatch(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	h.hub.ServeMatch(w, r, id)
}
