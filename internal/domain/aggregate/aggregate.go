// Package aggregate merges a resolved player's scored performances within a
// scoring period. Point totals are always sums of per-record breakdown
// values: tier bands make scoring non-linear per record, so two 30-run
// knocks must never be re-scored as one 60-run knock.
package aggregate

import (
	"sort"
	"time"

	"github.com/crease-io/crease/internal/domain/model"
)

// DefaultPeriodDays is the scoring-period length unless the caller states
// otherwise.
const DefaultPeriodDays = 7

// periodAnchor is a Monday at 00:00 UTC; periods are aligned to it so that
// weekly periods run Monday through Sunday.
var periodAnchor = time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)

// Scored pairs a resolved performance with its computed breakdown.
type Scored struct {
	Performance model.RawPerformance
	PlayerID    string
	Breakdown   model.PerformanceBreakdown
}

// PeriodStart truncates t to the start of its scoring period.
func PeriodStart(t time.Time, periodDays int) time.Time {
	if periodDays < 1 {
		periodDays = DefaultPeriodDays
	}
	period := time.Duration(periodDays) * 24 * time.Hour
	elapsed := t.UTC().Sub(periodAnchor)
	if elapsed < 0 {
		// Round toward negative infinity so pre-anchor dates still bucket.
		n := (-elapsed + period - 1) / period
		return periodAnchor.Add(-n * period)
	}
	return periodAnchor.Add(elapsed / period * period)
}

// ByPeriod groups scored records by (player, period start) and sums stat
// fields and per-record points. Results are ordered by player id, then
// period start.
func ByPeriod(records []Scored, periodDays int) []model.AggregatedPerformance {
	type key struct {
		playerID string
		start    time.Time
	}
	groups := make(map[key]*model.AggregatedPerformance)

	for i := range records {
		r := &records[i]
		k := key{playerID: r.PlayerID, start: PeriodStart(r.Performance.MatchDate, periodDays)}
		agg, ok := groups[k]
		if !ok {
			agg = &model.AggregatedPerformance{
				PlayerID:    r.PlayerID,
				PeriodStart: k.start,
			}
			groups[k] = agg
		}
		add(agg, r)
	}

	out := make([]model.AggregatedPerformance, 0, len(groups))
	for _, agg := range groups {
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PlayerID != out[j].PlayerID {
			return out[i].PlayerID < out[j].PlayerID
		}
		return out[i].PeriodStart.Before(out[j].PeriodStart)
	})
	return out
}

// add folds one scored record into the aggregate. Raw stats are summed for
// display; points come strictly from the already-computed breakdown.
func add(agg *model.AggregatedPerformance, r *Scored) {
	p := &r.Performance

	agg.Runs += p.Runs
	agg.BallsFaced += p.BallsFaced
	agg.Wickets += p.Wickets
	agg.OversBowled += p.OversBowled
	agg.RunsConceded += p.RunsConceded
	agg.Maidens += p.Maidens
	agg.Catches += p.Catches
	agg.Stumpings += p.Stumpings
	agg.RunOuts += p.RunOuts

	if !containsGrade(agg.Grades, p.GradeName) {
		agg.Grades = append(agg.Grades, p.GradeName)
	}
	agg.Breakdowns = append(agg.Breakdowns, r.Breakdown)
	agg.BasePoints += r.Breakdown.BasePoints
	agg.FinalPoints += r.Breakdown.FinalPoints
}

func containsGrade(grades []string, name string) bool {
	for _, g := range grades {
		if g == name {
			return true
		}
	}
	return false
}
