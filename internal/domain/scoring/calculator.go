// Package scoring converts a single match performance into base fantasy
// points through the tiered formula, and classifies grades into tiers.
//
// The formula constants are part of the scoring contract, not
// configuration: changing them changes every published score.
package scoring

import (
	"math"

	"github.com/crease-io/crease/internal/domain/model"
)

// Run-scoring bands, priced progressively: each rate applies only to the
// runs falling inside its band, so 50 runs = 30*1.00 + 19*1.25 + 1*1.50.
const (
	runBand1Limit = 30
	runBand2Limit = 49
	runBand3Limit = 99

	runBand1Rate = 1.00
	runBand2Rate = 1.25
	runBand3Rate = 1.50
	runBand4Rate = 1.75
)

// Milestone bonuses are additive: a century earns both the fifty and the
// century bonus.
const (
	fiftyBonus   = 8.0
	centuryBonus = 16.0
	duckPenalty  = 2.0
)

// Wicket bands, same band-wise pricing: 5 wickets = 2*15 + 2*20 + 1*30.
const (
	wicketBand1Limit = 2
	wicketBand2Limit = 4

	wicketBand1Points = 15.0
	wicketBand2Points = 20.0
	wicketBand3Points = 30.0

	maidenBonus    = 15.0
	fiveWicketHaul = 8.0
	parEconomyRate = 6.0
)

// Fielding points. The doubled catch rate applies only to the designated
// wicketkeeper.
const (
	catchPoints       = 15.0
	keeperCatchPoints = 30.0
	stumpingPoints    = 15.0
	runOutPoints      = 6.0
)

// BaseBreakdown itemizes the contributing terms of a base-point value.
type BaseBreakdown struct {
	// Batting
	RunPoints        float64 // tiered run subtotal before strike-rate scaling
	StrikeRateFactor float64 // 1.0 when balls faced is zero
	MilestoneBonus   float64
	DuckPenalty      float64
	Batting          float64
	// Bowling
	WicketPoints    float64 // tiered wicket subtotal before economy scaling
	EconomyFactor   float64 // 1.0 when overs bowled is zero
	MaidenBonus     float64
	FiveWicketBonus float64
	Bowling         float64
	// Fielding
	Fielding float64

	// Total is the floored sum of the three components; never negative.
	Total float64
}

// BasePoints computes base fantasy points for one performance. The stat
// line must already have passed ValidateStatLine. Grade tier and league
// context do not enter this computation.
func BasePoints(p *model.RawPerformance) BaseBreakdown {
	b := BaseBreakdown{
		StrikeRateFactor: 1.0,
		EconomyFactor:    1.0,
	}

	// Batting.
	b.RunPoints = tieredRunPoints(p.Runs)
	if p.BallsFaced > 0 {
		// strike_rate/100 reduces to runs/balls.
		b.StrikeRateFactor = float64(p.Runs) / float64(p.BallsFaced)
	}
	if p.Runs >= 50 {
		b.MilestoneBonus += fiftyBonus
	}
	if p.Runs >= 100 {
		b.MilestoneBonus += centuryBonus
	}
	if p.Runs == 0 && p.IsOut && p.BallsFaced > 0 {
		b.DuckPenalty = duckPenalty
	}
	b.Batting = b.RunPoints*b.StrikeRateFactor + b.MilestoneBonus - b.DuckPenalty

	// Bowling.
	b.WicketPoints = tieredWicketPoints(p.Wickets)
	if p.OversBowled > 0 && p.RunsConceded > 0 {
		economy := float64(p.RunsConceded) / p.OversBowled
		b.EconomyFactor = parEconomyRate / economy
	}
	b.MaidenBonus = float64(p.Maidens) * maidenBonus
	if p.Wickets >= 5 {
		b.FiveWicketBonus = fiveWicketHaul
	}
	b.Bowling = b.WicketPoints*b.EconomyFactor + b.MaidenBonus + b.FiveWicketBonus

	// Fielding.
	perCatch := catchPoints
	if p.IsWicketkeeper {
		perCatch = keeperCatchPoints
	}
	b.Fielding = float64(p.Catches)*perCatch +
		float64(p.Stumpings)*stumpingPoints +
		float64(p.RunOuts)*runOutPoints

	b.Total = math.Max(0, b.Batting+b.Bowling+b.Fielding)
	return b
}

// tieredRunPoints prices runs band by band.
func tieredRunPoints(runs int) float64 {
	pts := 0.0
	pts += float64(bandCount(runs, 1, runBand1Limit)) * runBand1Rate
	pts += float64(bandCount(runs, runBand1Limit+1, runBand2Limit)) * runBand2Rate
	pts += float64(bandCount(runs, runBand2Limit+1, runBand3Limit)) * runBand3Rate
	pts += float64(bandCount(runs, runBand3Limit+1, math.MaxInt32)) * runBand4Rate
	return pts
}

// tieredWicketPoints prices wickets band by band.
func tieredWicketPoints(wickets int) float64 {
	pts := 0.0
	pts += float64(bandCount(wickets, 1, wicketBand1Limit)) * wicketBand1Points
	pts += float64(bandCount(wickets, wicketBand1Limit+1, wicketBand2Limit)) * wicketBand2Points
	pts += float64(bandCount(wickets, wicketBand2Limit+1, maxWicketsPerInnings)) * wicketBand3Points
	return pts
}

// bandCount returns how many of n fall inside [lo, hi].
func bandCount(n, lo, hi int) int {
	if n < lo {
		return 0
	}
	if n > hi {
		return hi - lo + 1
	}
	return n - lo + 1
}
