// Package league holds per-(league, player) multiplier state: the snapshot
// taken at league confirmation and the weekly drift that pulls each
// multiplier toward a target derived from relative season performance.
//
// Leagues are fully independent: each holds its own lock and its own roster
// records, so drift runs for two leagues may execute concurrently. Within a
// league a drift run is all-or-nothing.
package league

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/crease-io/crease/internal/domain/model"
)

// TotalsSource supplies cumulative season base points per player. The
// season standings store satisfies this.
type TotalsSource interface {
	// Total returns the player's cumulative base points and whether the
	// player has any recorded score this season.
	Total(ctx context.Context, playerID string) (float64, bool)
}

// leagueState is one league's roster book. Its mutex serializes drift and
// reads for that league only.
type leagueState struct {
	mu     sync.Mutex
	roster map[string]*model.LeagueRosterState
}

// Engine tracks global multipliers and per-league roster state.
type Engine struct {
	mu      sync.RWMutex
	global  map[string]float64 // player id -> pre-confirmation multiplier
	leagues map[string]*leagueState

	minMultiplier float64
	maxMultiplier float64
	retainWeight  float64
	now           func() time.Time
}

// NewEngine creates a multiplier engine with configuration options.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		global:        make(map[string]float64),
		leagues:       make(map[string]*leagueState),
		minMultiplier: defaultMinMultiplier,
		maxMultiplier: defaultMaxMultiplier,
		retainWeight:  defaultRetainWeight,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetGlobalMultiplier records a player's global multiplier, the value a
// future league confirmation will snapshot. Supplied by the persistence
// collaborator when loading state.
func (e *Engine) SetGlobalMultiplier(ctx context.Context, playerID string, m float64) error {
	if math.IsNaN(m) || m <= 0 {
		return fmt.Errorf("global multiplier %v for player %s: %w", m, playerID, ErrBoundsViolation)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.global[playerID] = m
	return nil
}

// GlobalMultiplier returns a player's global multiplier, 1.0 when unset.
func (e *Engine) GlobalMultiplier(playerID string) float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if m, ok := e.global[playerID]; ok {
		return m
	}
	return neutralMultiplier
}

// ConfirmLeague transitions every roster player to Active, snapshotting the
// player's current global multiplier (clamped to bounds) as the league's
// starting value. From this point the league record never reads the global
// value again. Confirming an already-confirmed league is a no-op for
// players already on its roster; new players are added.
func (e *Engine) ConfirmLeague(ctx context.Context, leagueID string, roster []string) error {
	if len(roster) == 0 {
		return fmt.Errorf("league %s: %w", leagueID, ErrEmptyRoster)
	}

	ls := e.leagueFor(leagueID)
	now := e.now()

	ls.mu.Lock()
	defer ls.mu.Unlock()
	for _, playerID := range roster {
		if _, ok := ls.roster[playerID]; ok {
			continue
		}
		ls.roster[playerID] = &model.LeagueRosterState{
			LeagueID:          leagueID,
			PlayerID:          playerID,
			CurrentMultiplier: e.clamp(e.GlobalMultiplier(playerID)),
			SnapshotTakenAt:   now,
		}
	}
	return nil
}

// Multiplier returns the active multiplier for (league, player): the
// league-local value once confirmed, otherwise the player's global value.
func (e *Engine) Multiplier(ctx context.Context, leagueID, playerID string) float64 {
	if leagueID != "" {
		e.mu.RLock()
		ls, ok := e.leagues[leagueID]
		e.mu.RUnlock()
		if ok {
			ls.mu.Lock()
			st, found := ls.roster[playerID]
			ls.mu.Unlock()
			if found {
				return st.CurrentMultiplier
			}
		}
	}
	return e.GlobalMultiplier(playerID)
}

// Roster returns copies of the league's roster records, ordered by player id.
func (e *Engine) Roster(ctx context.Context, leagueID string) ([]model.LeagueRosterState, error) {
	e.mu.RLock()
	ls, ok := e.leagues[leagueID]
	e.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("league %s: %w", leagueID, ErrUnknownLeague)
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()
	out := make([]model.LeagueRosterState, 0, len(ls.roster))
	for _, st := range ls.roster {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })
	return out, nil
}

// RunDrift applies one weekly drift step to every roster player:
// new = old*retain + target*(1-retain), clamped to bounds. The whole run is
// computed before anything is applied; a bounds violation or missing roster
// aborts the run with the league state untouched.
func (e *Engine) RunDrift(ctx context.Context, leagueID string, totals TotalsSource) ([]model.LeagueRosterState, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("drift cancelled: %w", err)
	}

	e.mu.RLock()
	ls, ok := e.leagues[leagueID]
	e.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("league %s: %w", leagueID, ErrUnknownLeague)
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()
	if len(ls.roster) == 0 {
		return nil, fmt.Errorf("league %s: %w", leagueID, ErrEmptyRoster)
	}

	// Season totals for the roster. A player without a recorded score sits
	// at zero, i.e. the weak end of the distribution.
	rosterIDs := make([]string, 0, len(ls.roster))
	for id := range ls.roster {
		rosterIDs = append(rosterIDs, id)
	}
	sort.Strings(rosterIDs)

	points := make(map[string]float64, len(rosterIDs))
	values := make([]float64, 0, len(rosterIDs))
	for _, id := range rosterIDs {
		total, _ := totals.Total(ctx, id)
		if math.IsNaN(total) {
			return nil, fmt.Errorf("league %s player %s: season total is NaN: %w", leagueID, id, ErrBoundsViolation)
		}
		points[id] = total
		values = append(values, total)
	}

	med, minTotal, maxTotal := distribution(values)

	// Compute the full batch first; apply only if every value passes the
	// bounds invariant.
	now := e.now()
	next := make([]model.LeagueRosterState, 0, len(rosterIDs))
	for _, id := range rosterIDs {
		st := ls.roster[id]
		target := e.driftTarget(points[id], med, minTotal, maxTotal)
		blended := st.CurrentMultiplier*e.retainWeight + target*(1-e.retainWeight)
		blended = e.clamp(blended)
		if blended < e.minMultiplier || blended > e.maxMultiplier || math.IsNaN(blended) {
			return nil, fmt.Errorf("league %s player %s: computed multiplier %v: %w",
				leagueID, id, blended, ErrBoundsViolation)
		}
		updated := *st
		updated.CurrentMultiplier = blended
		updated.LastDriftAt = now
		next = append(next, updated)
	}

	for i := range next {
		st := ls.roster[next[i].PlayerID]
		st.CurrentMultiplier = next[i].CurrentMultiplier
		st.LastDriftAt = next[i].LastDriftAt
	}
	return next, nil
}

// FinalPoints composes a record's final fantasy points from its base points
// and the multiplier stack: base * (tier * league) * captain.
func (e *Engine) FinalPoints(ctx context.Context, base, tierMultiplier float64, p *model.RawPerformance, playerID string) (leagueMult, captainMult, final float64) {
	leagueMult = e.Multiplier(ctx, p.LeagueID, playerID)
	captainMult = neutralMultiplier
	switch {
	case p.IsCaptain:
		captainMult = captainMultiplier
	case p.IsViceCaptain:
		captainMult = viceCaptainMultiplier
	}
	final = base * tierMultiplier * leagueMult * captainMult
	return leagueMult, captainMult, final
}

// driftTarget maps a season total onto the monotone decreasing piecewise
// line: bound max at the roster minimum, 1.0 at the median, bound min at
// the roster maximum. Degenerate segments (median equal to an endpoint)
// collapse to the neutral target.
func (e *Engine) driftTarget(total, med, minTotal, maxTotal float64) float64 {
	switch {
	case total < med && med > minTotal:
		frac := (med - total) / (med - minTotal)
		return neutralMultiplier + frac*(e.maxMultiplier-neutralMultiplier)
	case total > med && maxTotal > med:
		frac := (total - med) / (maxTotal - med)
		return neutralMultiplier - frac*(neutralMultiplier-e.minMultiplier)
	default:
		return neutralMultiplier
	}
}

func (e *Engine) clamp(m float64) float64 {
	return math.Min(e.maxMultiplier, math.Max(e.minMultiplier, m))
}

func (e *Engine) leagueFor(leagueID string) *leagueState {
	e.mu.Lock()
	defer e.mu.Unlock()
	ls, ok := e.leagues[leagueID]
	if !ok {
		ls = &leagueState{roster: make(map[string]*model.LeagueRosterState)}
		e.leagues[leagueID] = ls
	}
	return ls
}

// distribution returns the median, minimum and maximum of values. Median of
// an even count is the mean of the two middle values.
func distribution(values []float64) (med, minValue, maxValue float64) {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n == 0 {
		return 0, 0, 0
	}
	if n%2 == 1 {
		med = sorted[n/2]
	} else {
		med = (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return med, sorted[0], sorted[n-1]
}
