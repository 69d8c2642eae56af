// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/crease-io/crease/internal/domain/model"
)

// PlayerDependencies defines the interface for player identity reads.
type PlayerDependencies interface {
	Player(ctx context.Context, playerID string) (*model.PlayerIdentity, error)
	Summary(ctx context.Context, playerID string) []model.AggregatedPerformance
}

// PlayersHandler handles player identity requests.
type PlayersHandler struct {
	deps PlayerDependencies
}

// NewPlayersHandler creates a new players handler.
func NewPlayersHandler(deps PlayerDependencies) *PlayersHandler {
	return &PlayersHandler{deps: deps}
}

// playerResponse mirrors the wire schema for GET /players/{id}.
type playerResponse struct {
	ID            string   `json:"id"`
	CanonicalName string   `json:"canonical_name"`
	NameVariants  []string `json:"name_variants"`
	SourceIDs     []string `json:"source_ids,omitempty"`
}

// periodSummaryResponse mirrors the wire schema for one aggregated period.
type periodSummaryResponse struct {
	PeriodStart  time.Time `json:"period_start"`
	Runs         int       `json:"runs"`
	BallsFaced   int       `json:"balls_faced"`
	Wickets      int       `json:"wickets"`
	OversBowled  float64   `json:"overs_bowled"`
	RunsConceded int       `json:"runs_conceded"`
	Maidens      int       `json:"maidens"`
	Catches      int       `json:"catches"`
	Stumpings    int       `json:"stumpings"`
	RunOuts      int       `json:"run_outs"`
	Grades       []string  `json:"grades"`
	Records      int       `json:"records"`
	BasePoints   float64   `json:"base_points"`
	FinalPoints  float64   `json:"final_points"`
}

// HandleGetPlayer handles GET /players/{id} and GET /players/{id}/summary.
func (h *PlayersHandler) HandleGetPlayer(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_player"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/players/")
	playerID, rest, _ := strings.Cut(path, "/")
	if playerID == "" || (rest != "" && rest != "summary") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	ident, err := h.deps.Player(r.Context(), playerID)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", Wrap(op, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}

	if rest == "summary" {
		aggs := h.deps.Summary(r.Context(), playerID)
		out := make([]periodSummaryResponse, 0, len(aggs))
		for i := range aggs {
			a := &aggs[i]
			out = append(out, periodSummaryResponse{
				PeriodStart:  a.PeriodStart,
				Runs:         a.Runs,
				BallsFaced:   a.BallsFaced,
				Wickets:      a.Wickets,
				OversBowled:  a.OversBowled,
				RunsConceded: a.RunsConceded,
				Maidens:      a.Maidens,
				Catches:      a.Catches,
				Stumpings:    a.Stumpings,
				RunOuts:      a.RunOuts,
				Grades:       a.Grades,
				Records:      len(a.Breakdowns),
				BasePoints:   a.BasePoints,
				FinalPoints:  a.FinalPoints,
			})
		}
		writeJSON(w, http.StatusOK, out)
		return
	}

	writeJSON(w, http.StatusOK, playerResponse{
		ID:            ident.ID,
		CanonicalName: ident.CanonicalName,
		NameVariants:  ident.NameVariants,
		SourceIDs:     ident.SourceIDs,
	})
}
