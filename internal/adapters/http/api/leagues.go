// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/crease-io/crease/internal/domain/model"
)

// LeagueDependencies defines the interface for league multiplier operations.
type LeagueDependencies interface {
	ConfirmLeague(ctx context.Context, leagueID string, roster []string) error
	RunDrift(ctx context.Context, leagueID string) ([]model.LeagueRosterState, error)
	Roster(ctx context.Context, leagueID string) ([]model.LeagueRosterState, error)
}

// LeaguesHandler handles league multiplier requests.
type LeaguesHandler struct {
	deps LeagueDependencies
}

// NewLeaguesHandler creates a new leagues handler.
func NewLeaguesHandler(deps LeagueDependencies) *LeaguesHandler {
	return &LeaguesHandler{deps: deps}
}

// confirmRequest mirrors the wire schema for POST /leagues/{id}/confirm.
type confirmRequest struct {
	Roster []string `json:"roster"`
}

// rosterStateResponse mirrors the wire schema for one roster member.
type rosterStateResponse struct {
	LeagueID          string    `json:"league_id"`
	PlayerID          string    `json:"player_id"`
	CurrentMultiplier float64   `json:"current_multiplier"`
	SnapshotTakenAt   time.Time `json:"snapshot_taken_at"`
	LastDriftAt       time.Time `json:"last_drift_at,omitempty"`
}

// HandleLeagues routes /leagues/{id}/confirm, /leagues/{id}/drift, and
// /leagues/{id}/roster.
func (h *LeaguesHandler) HandleLeagues(w http.ResponseWriter, r *http.Request) {
	const op = "api.leagues"
	path := strings.TrimPrefix(r.URL.Path, "/leagues/")
	leagueID, action, _ := strings.Cut(path, "/")
	if leagueID == "" || action == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	switch action {
	case "confirm":
		h.handleConfirm(w, r, leagueID)
	case "drift":
		h.handleDrift(w, r, leagueID)
	case "roster":
		h.handleRoster(w, r, leagueID)
	default:
		http.NotFound(w, r)
	}
}

func (h *LeaguesHandler) handleConfirm(w http.ResponseWriter, r *http.Request, leagueID string) {
	const op = "api.confirm_league"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if len(req.Roster) == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("empty roster")))
		return
	}
	if err := h.deps.ConfirmLeague(r.Context(), leagueID, req.Roster); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, ackResponse{Status: "confirmed"})
}

func (h *LeaguesHandler) handleDrift(w http.ResponseWriter, r *http.Request, leagueID string) {
	const op = "api.run_drift"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	states, err := h.deps.RunDrift(r.Context(), leagueID)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", Wrap(op, err))
			return
		}
		writeError(w, http.StatusConflict, "drift_aborted", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, toRosterResponse(states))
}

func (h *LeaguesHandler) handleRoster(w http.ResponseWriter, r *http.Request, leagueID string) {
	const op = "api.get_roster"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	states, err := h.deps.Roster(r.Context(), leagueID)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", Wrap(op, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, toRosterResponse(states))
}

func toRosterResponse(states []model.LeagueRosterState) []rosterStateResponse {
	out := make([]rosterStateResponse, 0, len(states))
	for i := range states {
		st := &states[i]
		out = append(out, rosterStateResponse{
			LeagueID:          st.LeagueID,
			PlayerID:          st.PlayerID,
			CurrentMultiplier: st.CurrentMultiplier,
			SnapshotTakenAt:   st.SnapshotTakenAt,
			LastDriftAt:       st.LastDriftAt,
		})
	}
	return out
}
