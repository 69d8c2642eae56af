// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	recordqueue "github.com/crease-io/crease/internal/adapters/mq/queue"
	workerpool "github.com/crease-io/crease/internal/adapters/mq/worker"
	repository "github.com/crease-io/crease/internal/adapters/repository"
	"github.com/crease-io/crease/internal/domain/aggregate"
	"github.com/crease-io/crease/internal/domain/dedupe"
	"github.com/crease-io/crease/internal/domain/identity"
	"github.com/crease-io/crease/internal/domain/league"
	"github.com/crease-io/crease/internal/domain/model"
	"github.com/crease-io/crease/internal/domain/scoring"
	"github.com/crease-io/crease/internal/domain/types"
	"github.com/crease-io/crease/pkg/logger"
	"github.com/crease-io/crease/pkg/metrics"
)

// Record statuses reported for synchronous batch processing.
const (
	StatusScored    = "scored"
	StatusDuplicate = "duplicate"
	StatusRejected  = "rejected"
	StatusReview    = "review"
)

// ReviewItem is a record parked for manual identity review.
type ReviewItem struct {
	Record     model.RawPerformance `json:"record"`
	Reason     string               `json:"reason"`
	Similarity float64              `json:"similarity"`
	ParkedAt   time.Time            `json:"parked_at"`
}

// RecordResult is the per-record outcome of a synchronous batch.
type RecordResult struct {
	RecordID string `json:"record_id"`
	Status   string `json:"status"`
	Detail   string `json:"detail,omitempty"`
}

// BatchReport summarizes a synchronous batch submission.
type BatchReport struct {
	Submitted  int            `json:"submitted"`
	Scored     int            `json:"scored"`
	Duplicates int            `json:"duplicates"`
	Rejected   int            `json:"rejected"`
	Review     int            `json:"review"`
	Results    []RecordResult `json:"results"`
}

// Service implements the API dependencies for the scoring system.
type Service struct {
	mu sync.RWMutex

	// Core components
	standings repository.Store
	deduper   dedupe.Deduper
	queue     recordqueue.Queue
	registry  *identity.Registry
	leagues   *league.Engine
	pool      *workerpool.Pool

	// Scored-record log, input to period aggregation.
	scoredMu sync.RWMutex
	scored   []aggregate.Scored

	// Records awaiting manual identity review.
	reviewMu sync.RWMutex
	review   []ReviewItem

	// Configuration
	workerCount         int
	queueSize           int
	dedupeSize          int
	similarityThreshold float64
	ambiguityMargin     float64
	multiplierMin       float64
	multiplierMax       float64
	driftRetainWeight   float64
	scoringPeriodDays   int

	// State
	started bool
	stopCh  chan struct{}

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the record queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithIdentityThresholds sets the name similarity threshold and the
// ambiguity margin used by identity resolution.
func WithIdentityThresholds(threshold, margin float64) Option {
	return func(s *Service) {
		if threshold > 0 && threshold <= 1 {
			s.similarityThreshold = threshold
		}
		if margin >= 0 && margin < 1 {
			s.ambiguityMargin = margin
		}
	}
}

// WithMultiplierBounds sets the hard bounds on league multipliers.
func WithMultiplierBounds(minMultiplier, maxMultiplier float64) Option {
	return func(s *Service) {
		if minMultiplier > 0 && maxMultiplier >= minMultiplier {
			s.multiplierMin = minMultiplier
			s.multiplierMax = maxMultiplier
		}
	}
}

// WithDriftRetainWeight sets the fraction of the old multiplier retained
// per drift step.
func WithDriftRetainWeight(w float64) Option {
	return func(s *Service) {
		if w >= 0 && w <= 1 {
			s.driftRetainWeight = w
		}
	}
}

// WithScoringPeriodDays sets the aggregation period length.
func WithScoringPeriodDays(days int) Option {
	return func(s *Service) {
		if days > 0 {
			s.scoringPeriodDays = days
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:         runtime.NumCPU() * 2,
		queueSize:           100_000,
		dedupeSize:          50_000,
		similarityThreshold: 0.85,
		ambiguityMargin:     0.02,
		multiplierMin:       0.69,
		multiplierMax:       5.0,
		driftRetainWeight:   0.85,
		scoringPeriodDays:   aggregate.DefaultPeriodDays,
		stopCh:              make(chan struct{}),
		logger:              nil, // Will be replaced when service starts
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting scoring service...")

	s.standings = repository.NewTreapStore(ctx)
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.queue = recordqueue.NewInMemoryQueue(
		recordqueue.WithCapacity(s.queueSize),
		recordqueue.WithBufferSize(s.queueSize),
	)
	s.registry = identity.NewRegistry(
		identity.WithSimilarityThreshold(s.similarityThreshold),
		identity.WithAmbiguityMargin(s.ambiguityMargin),
	)
	s.leagues = league.NewEngine(
		league.WithBounds(s.multiplierMin, s.multiplierMax),
		league.WithRetainWeight(s.driftRetainWeight),
	)

	s.pool = workerpool.NewPool(s.workerCount, s.queue, s)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "scoring service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping scoring service...")

	if s.pool != nil {
		s.pool.Stop()
	}

	if s.standings != nil {
		if closer, ok := s.standings.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
	}

	if q, ok := s.queue.(*recordqueue.InMemoryQueue); ok {
		_ = q.Close()
	}

	select {
	case <-s.stopCh:
		// Channel already closed
	default:
		close(s.stopCh)
	}

	s.started = false
	s.logger.Info(context.Background(), "scoring service stopped")
}

// SeenAndRecord atomically checks if a record id was seen and records it if
// not. Returns true if the record was already seen.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordPerformanceDuplicate()
	}
	return seen
}

// Unrecord removes a record ID from the seen list, allowing it to be retried.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Enqueue submits a performance record for asynchronous processing.
// Returns true when the record was accepted or was a known duplicate.
func (s *Service) Enqueue(ctx context.Context, rec model.RawPerformance) bool {
	if s.SeenAndRecord(ctx, rec.RecordID) {
		s.logger.Debug(ctx, "duplicate record, skipping",
			logger.String("recordID", rec.RecordID),
		)
		return true
	}

	ok := s.queue.Enqueue(ctx, rec)
	if !ok {
		// Allow a retry of the same record id after a failed enqueue.
		s.Unrecord(ctx, rec.RecordID)
		return false
	}
	metrics.UpdateQueueSize(s.queue.Len(ctx))
	return true
}

// ProcessRecord resolves, validates, and scores one performance record.
// Called by the worker pool for asynchronously submitted records.
func (s *Service) ProcessRecord(ctx context.Context, rec workerpool.Record) error {
	_, err := s.processOne(ctx, &rec)
	return err
}

// ProcessBatch scores a slice of records synchronously and reports the
// outcome per record. Duplicates and rejections do not abort the batch.
func (s *Service) ProcessBatch(ctx context.Context, recs []model.RawPerformance) BatchReport {
	report := BatchReport{
		Submitted: len(recs),
		Results:   make([]RecordResult, 0, len(recs)),
	}

	for i := range recs {
		rec := &recs[i]
		if s.SeenAndRecord(ctx, rec.RecordID) {
			report.Duplicates++
			report.Results = append(report.Results, RecordResult{
				RecordID: rec.RecordID,
				Status:   StatusDuplicate,
			})
			continue
		}

		status, err := s.processOne(ctx, rec)
		res := RecordResult{RecordID: rec.RecordID, Status: status}
		if err != nil {
			res.Detail = err.Error()
		}
		report.Results = append(report.Results, res)

		switch status {
		case StatusScored:
			report.Scored++
		case StatusRejected:
			report.Rejected++
		case StatusReview:
			report.Review++
		}
	}
	return report
}

// processOne runs the full pipeline for a single record: stat-line
// validation, grade classification, identity resolution, scoring, and the
// standings update. The record id must already be recorded in the deduper.
func (s *Service) processOne(ctx context.Context, rec *model.RawPerformance) (string, error) {
	start := time.Now()

	if err := scoring.ValidateStatLine(rec); err != nil {
		metrics.RecordPerformanceRejected("invalid_stat_line")
		s.logger.Warn(ctx, "rejected invalid stat line",
			logger.String("recordID", rec.RecordID),
			logger.Error(err),
		)
		return StatusRejected, err
	}

	tier, err := scoring.ClassifyGrade(rec.GradeName)
	if err != nil {
		metrics.RecordPerformanceRejected("unknown_grade")
		s.logger.Warn(ctx, "rejected unknown grade",
			logger.String("recordID", rec.RecordID),
			logger.String("grade", rec.GradeName),
		)
		return StatusRejected, err
	}

	playerID, err := s.resolvePlayer(ctx, rec)
	if err != nil {
		if errors.Is(err, errAmbiguousIdentity) {
			return StatusReview, err
		}
		return StatusRejected, err
	}

	base := scoring.BasePoints(rec)
	tierMult := tier.Multiplier()
	leagueMult, captainMult, final := s.leagues.FinalPoints(ctx, base.Total, tierMult, rec, playerID)

	breakdown := model.PerformanceBreakdown{
		RecordID:          rec.RecordID,
		PlayerID:          playerID,
		LeagueID:          rec.LeagueID,
		BattingPoints:     base.Batting,
		BowlingPoints:     base.Bowling,
		FieldingPoints:    base.Fielding,
		BasePoints:        base.Total,
		Tier:              string(tier),
		TierMultiplier:    tierMult,
		LeagueMultiplier:  leagueMult,
		MultiplierApplied: tierMult * leagueMult,
		CaptainMultiplier: captainMult,
		FinalPoints:       final,
	}

	if _, err := s.standings.AddPoints(ctx, playerID, base.Total); err != nil {
		metrics.RecordErrorByComponent("service", "standings_update")
		return StatusRejected, fmt.Errorf("standings update for %s: %w", playerID, err)
	}

	s.scoredMu.Lock()
	s.scored = append(s.scored, aggregate.Scored{
		Performance: *rec,
		PlayerID:    playerID,
		Breakdown:   breakdown,
	})
	s.scoredMu.Unlock()

	metrics.RecordPerformanceProcessed()
	metrics.RecordScoringLatency(float64(time.Since(start).Milliseconds()))

	s.logger.Debug(ctx, "record scored",
		logger.String("recordID", rec.RecordID),
		logger.String("playerID", playerID),
		logger.Float64("basePoints", base.Total),
		logger.Float64("finalPoints", final),
	)
	return StatusScored, nil
}

// errAmbiguousIdentity tags records parked for manual review.
var errAmbiguousIdentity = errors.New("ambiguous identity")

// resolvePlayer maps a record to a canonical player id, creating a new
// identity when no known player is similar enough. Ambiguous records are
// parked on the review list instead of being guessed at.
func (s *Service) resolvePlayer(ctx context.Context, rec *model.RawPerformance) (string, error) {
	res, err := s.registry.Resolve(ctx, rec)
	if err != nil {
		metrics.RecordErrorByComponent("service", "resolve")
		return "", fmt.Errorf("resolve %q: %w", rec.RawName, err)
	}

	switch res.Decision {
	case identity.Matched:
		metrics.RecordResolutionMatched()
		return res.Identity.ID, nil

	case identity.NoCandidate:
		metrics.RecordResolutionUnmatched()
		ident, err := s.registry.Create(ctx, rec)
		if err != nil {
			metrics.RecordErrorByComponent("service", "identity_create")
			return "", fmt.Errorf("create identity for %q: %w", rec.RawName, err)
		}
		metrics.RecordIdentityCreated()
		s.logger.Info(ctx, "new player identity",
			logger.String("playerID", ident.ID),
			logger.String("name", ident.CanonicalName),
			logger.String("club", rec.Club),
		)
		return ident.ID, nil

	case identity.Ambiguous:
		metrics.RecordResolutionAmbiguous()
		s.reviewMu.Lock()
		s.review = append(s.review, ReviewItem{
			Record:     *rec,
			Reason:     res.Decision.String(),
			Similarity: res.Similarity,
			ParkedAt:   time.Now().UTC(),
		})
		s.reviewMu.Unlock()
		s.logger.Warn(ctx, "ambiguous identity, parked for review",
			logger.String("recordID", rec.RecordID),
			logger.String("name", rec.RawName),
			logger.Float64("similarity", res.Similarity),
		)
		return "", fmt.Errorf("record %s: %w", rec.RecordID, errAmbiguousIdentity)

	default:
		return "", fmt.Errorf("record %s: unexpected resolution decision %v", rec.RecordID, res.Decision)
	}
}

// Review returns the records currently awaiting manual identity review.
func (s *Service) Review(ctx context.Context) []ReviewItem {
	s.reviewMu.RLock()
	defer s.reviewMu.RUnlock()
	out := make([]ReviewItem, len(s.review))
	copy(out, s.review)
	return out
}

// Player returns the identity for a canonical player id.
func (s *Service) Player(ctx context.Context, playerID string) (*model.PlayerIdentity, error) {
	return s.registry.Find(ctx, playerID)
}

// ConfirmLeague snapshots the global multipliers for a league roster.
func (s *Service) ConfirmLeague(ctx context.Context, leagueID string, roster []string) error {
	return s.leagues.ConfirmLeague(ctx, leagueID, roster)
}

// RunDrift applies one drift step to a league, using season standings
// totals as the drift input.
func (s *Service) RunDrift(ctx context.Context, leagueID string) ([]model.LeagueRosterState, error) {
	states, err := s.leagues.RunDrift(ctx, leagueID, s.standings)
	if err != nil {
		metrics.RecordDriftFailure()
		return nil, err
	}
	metrics.RecordDriftRun()
	for i := range states {
		metrics.RecordMultiplierUpdate(states[i].CurrentMultiplier)
	}
	return states, nil
}

// Roster returns the per-player multiplier state for a confirmed league.
func (s *Service) Roster(ctx context.Context, leagueID string) ([]model.LeagueRosterState, error) {
	return s.leagues.Roster(ctx, leagueID)
}

// SetGlobalMultiplier sets a player's multiplier in the global book.
func (s *Service) SetGlobalMultiplier(ctx context.Context, playerID string, m float64) error {
	return s.leagues.SetGlobalMultiplier(ctx, playerID, m)
}

// Summary aggregates a player's scored records per scoring period.
func (s *Service) Summary(ctx context.Context, playerID string) []model.AggregatedPerformance {
	s.scoredMu.RLock()
	records := make([]aggregate.Scored, 0)
	for i := range s.scored {
		if s.scored[i].PlayerID == playerID {
			records = append(records, s.scored[i])
		}
	}
	s.scoredMu.RUnlock()

	return aggregate.ByPeriod(records, s.scoringPeriodDays)
}

// TopN returns the top N standings entries.
func (s *Service) TopN(ctx context.Context, n int) ([]types.Entry, error) {
	return s.standings.TopN(ctx, n)
}

// Rank returns the rank and season total for a given player id.
func (s *Service) Rank(ctx context.Context, playerID string) (types.Entry, error) {
	return s.standings.Rank(ctx, playerID)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}

	if s.started {
		queueLen := s.queue.Len(ctx)
		totalPlayers := s.standings.Count(ctx)

		s.reviewMu.RLock()
		reviewLen := len(s.review)
		s.reviewMu.RUnlock()

		stats["queueLength"] = queueLen
		stats["totalPlayers"] = totalPlayers
		stats["reviewLength"] = reviewLen

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateTotalPlayers(totalPlayers)
		metrics.UpdateWorkerCount(s.workerCount)
	}

	return stats
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}
