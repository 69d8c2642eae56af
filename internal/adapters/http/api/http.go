// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	service "github.com/crease-io/crease/internal/app"
	"github.com/crease-io/crease/internal/domain/model"
	"github.com/crease-io/crease/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Enqueue pushes a record for async processing. Returns false on backpressure.
	Enqueue(ctx context.Context, rec model.RawPerformance) bool

	// ProcessBatch scores a batch synchronously and reports per-record outcomes.
	ProcessBatch(ctx context.Context, recs []model.RawPerformance) service.BatchReport

	// Read operations expose standings and identity data.
	TopN(ctx context.Context, n int) ([]Entry, error)
	Rank(ctx context.Context, playerID string) (Entry, error)
	Player(ctx context.Context, playerID string) (*model.PlayerIdentity, error)
	Summary(ctx context.Context, playerID string) []model.AggregatedPerformance
	Review(ctx context.Context) []service.ReviewItem

	// League multiplier operations.
	ConfirmLeague(ctx context.Context, leagueID string, roster []string) error
	RunDrift(ctx context.Context, leagueID string) ([]model.LeagueRosterState, error)
	Roster(ctx context.Context, leagueID string) ([]model.LeagueRosterState, error)
}

// Entry mirrors the read shape returned by standings queries.
type Entry = types.Entry

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler       *HealthHandler
	statsHandler        *StatsHandler
	performancesHandler *PerformancesHandler
	standingsHandler    *StandingsHandler
	playersHandler      *PlayersHandler
	reviewHandler       *ReviewHandler
	leaguesHandler      *LeaguesHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxStandingsLimit int) *Server {
	return &Server{
		healthHandler:       NewHealthHandler(),
		statsHandler:        NewStatsHandler(statsProvider),
		performancesHandler: NewPerformancesHandler(deps),
		standingsHandler:    NewStandingsHandler(deps, maxStandingsLimit),
		playersHandler:      NewPlayersHandler(deps),
		reviewHandler:       NewReviewHandler(deps),
		leaguesHandler:      NewLeaguesHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/performances/batch", MetricsMiddleware(s.performancesHandler.HandlePostBatch, "performances_batch"))
	mux.HandleFunc("/performances", MetricsMiddleware(s.performancesHandler.HandlePostPerformance, "performances"))
	mux.HandleFunc("/standings/", MetricsMiddleware(s.standingsHandler.HandleGetPlayerRank, "standings_player"))
	mux.HandleFunc("/standings", MetricsMiddleware(s.standingsHandler.HandleGetStandings, "standings"))
	mux.HandleFunc("/players/", MetricsMiddleware(s.playersHandler.HandleGetPlayer, "players"))
	mux.HandleFunc("/review", MetricsMiddleware(s.reviewHandler.HandleGetReview, "review"))
	mux.HandleFunc("/leagues/", MetricsMiddleware(s.leaguesHandler.HandleLeagues, "leagues"))
}

// performanceRequest mirrors the wire schema for performance submissions.
type performanceRequest struct {
	RecordID       string  `json:"record_id"`
	SourcePlayerID string  `json:"source_player_id,omitempty"`
	Name           string  `json:"name"`
	Club           string  `json:"club"`
	Grade          string  `json:"grade"`
	MatchDate      string  `json:"match_date"`
	Runs           int     `json:"runs"`
	BallsFaced     int     `json:"balls_faced"`
	IsOut          bool    `json:"is_out"`
	Wickets        int     `json:"wickets"`
	OversBowled    float64 `json:"overs_bowled"`
	RunsConceded   int     `json:"runs_conceded"`
	Maidens        int     `json:"maidens"`
	Catches        int     `json:"catches"`
	Stumpings      int     `json:"stumpings"`
	RunOuts        int     `json:"run_outs"`
	IsWicketkeeper bool    `json:"is_wicketkeeper"`
	LeagueID       string  `json:"league_id,omitempty"`
	IsCaptain      bool    `json:"is_captain,omitempty"`
	IsViceCaptain  bool    `json:"is_vice_captain,omitempty"`
}

func (p performanceRequest) validate() error {
	switch {
	case strings.TrimSpace(p.RecordID) == "":
		return errors.New("missing record_id")
	case strings.TrimSpace(p.Name) == "":
		return errors.New("missing name")
	case strings.TrimSpace(p.Club) == "":
		return errors.New("missing club")
	case strings.TrimSpace(p.Grade) == "":
		return errors.New("missing grade")
	case strings.TrimSpace(p.MatchDate) == "":
		return errors.New("missing match_date")
	}
	if _, err := time.Parse(time.RFC3339, p.MatchDate); err != nil {
		if _, err := time.Parse("2006-01-02", p.MatchDate); err != nil {
			return errors.New("invalid match_date; must be RFC3339 or YYYY-MM-DD")
		}
	}
	return nil
}

// toModel converts a validated request into the domain record.
func (p performanceRequest) toModel() model.RawPerformance {
	matchDate, err := time.Parse(time.RFC3339, p.MatchDate)
	if err != nil {
		matchDate, _ = time.Parse("2006-01-02", p.MatchDate)
	}
	return model.RawPerformance{
		RecordID:       p.RecordID,
		SourcePlayerID: p.SourcePlayerID,
		RawName:        p.Name,
		Club:           p.Club,
		GradeName:      p.Grade,
		MatchDate:      matchDate,
		Runs:           p.Runs,
		BallsFaced:     p.BallsFaced,
		IsOut:          p.IsOut,
		Wickets:        p.Wickets,
		OversBowled:    p.OversBowled,
		RunsConceded:   p.RunsConceded,
		Maidens:        p.Maidens,
		Catches:        p.Catches,
		Stumpings:      p.Stumpings,
		RunOuts:        p.RunOuts,
		IsWicketkeeper: p.IsWicketkeeper,
		LeagueID:       p.LeagueID,
		IsCaptain:      p.IsCaptain,
		IsViceCaptain:  p.IsViceCaptain,
	}
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// isNotFound allows the API to translate upstream not-found errors to 404.
// This stays generic to avoid tight coupling with specific packages.
func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "not found") ||
		strings.Contains(strings.ToLower(err.Error()), "unknown")
}
