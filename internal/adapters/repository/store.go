// Package repository defines the season standings store interface and errors.
package repository

import (
	"context"

	"github.com/crease-io/crease/internal/domain/types"
)

// Entry mirrors the read shape returned by standings queries.
type Entry = types.Entry

// Store accumulates cumulative season base fantasy points per player and
// serves ranked standings. It also backs the drift engine's TotalsSource.
type Store interface {
	// AddPoints adds points to the player's season total and returns the
	// new total.
	AddPoints(ctx context.Context, playerID string, points float64) (float64, error)

	// Total returns the player's season total and whether the player has
	// any recorded score.
	Total(ctx context.Context, playerID string) (float64, bool)

	// Rank returns the player's current standings entry.
	Rank(ctx context.Context, playerID string) (Entry, error)

	// TopN returns the top n standings entries, best first.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// Count returns the number of players with a season total.
	Count(ctx context.Context) int
}
