// Package model contains domain models passed between layers.
package model

import "time"

// RawPerformance is one player's stat line in one match and grade, as
// produced by the ingestion collaborator. Immutable once created.
type RawPerformance struct {
	RecordID       string    // unique id for idempotency
	SourcePlayerID string    // optional opaque id from the ingestion source
	RawName        string    // player name exactly as scraped
	Club           string    // scoping context for identity resolution
	GradeName      string    // competition grade, e.g. "Topklasse"
	MatchDate      time.Time // date the match was played

	// Batting
	Runs       int
	BallsFaced int
	IsOut      bool

	// Bowling
	Wickets      int
	OversBowled  float64
	RunsConceded int
	Maidens      int

	// Fielding
	Catches   int
	Stumpings int
	RunOuts   int

	IsWicketkeeper bool

	// Fantasy-team context, optional.
	LeagueID      string
	IsCaptain     bool
	IsViceCaptain bool
}

// PlayerIdentity is the canonical player a RawPerformance resolves to.
// The variant sets accumulate evidence over time and are never trimmed
// automatically.
type PlayerIdentity struct {
	ID            string
	CanonicalName string
	NameVariants  []string // raw names ever matched, in first-seen order
	SourceIDs     []string // source player ids ever matched
}

// HasSourceID reports whether id is among the identity's known source ids.
func (p *PlayerIdentity) HasSourceID(id string) bool {
	for _, s := range p.SourceIDs {
		if s == id {
			return true
		}
	}
	return false
}

// HasVariant reports whether raw is among the identity's known name variants.
func (p *PlayerIdentity) HasVariant(raw string) bool {
	for _, v := range p.NameVariants {
		if v == raw {
			return true
		}
	}
	return false
}

// PerformanceBreakdown is the scored output for one RawPerformance.
// FinalPoints = BasePoints * MultiplierApplied * CaptainMultiplier, where
// MultiplierApplied combines the grade-tier multiplier with the league
// multiplier. BasePoints is floored at zero before any multiplication.
type PerformanceBreakdown struct {
	RecordID string
	PlayerID string
	LeagueID string

	BattingPoints  float64
	BowlingPoints  float64
	FieldingPoints float64
	BasePoints     float64

	Tier              string
	TierMultiplier    float64
	LeagueMultiplier  float64
	MultiplierApplied float64 // TierMultiplier * LeagueMultiplier
	CaptainMultiplier float64 // 2.0 captain, 1.5 vice-captain, else 1.0

	FinalPoints float64
}

// AggregatedPerformance is the sum of one player's performances within a
// single scoring period. Point totals are always sums of the per-record
// breakdown values, never recomputed from the summed stats.
type AggregatedPerformance struct {
	PlayerID    string
	PeriodStart time.Time

	Runs         int
	BallsFaced   int
	Wickets      int
	OversBowled  float64
	RunsConceded int
	Maidens      int
	Catches      int
	Stumpings    int
	RunOuts      int

	Grades     []string // contributing grade names, for audit/display
	Breakdowns []PerformanceBreakdown

	BasePoints  float64
	FinalPoints float64
}

// LeagueRosterState is the per-(league, player) multiplier record. One
// independent record exists per league even for the same player.
type LeagueRosterState struct {
	LeagueID          string
	PlayerID          string
	CurrentMultiplier float64
	SnapshotTakenAt   time.Time
	LastDriftAt       time.Time
}
