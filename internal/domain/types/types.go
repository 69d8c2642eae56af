// Package types contains common types used across the application
package types

// Entry represents a season standings entry: a player's cumulative base
// fantasy points and rank.
type Entry struct {
	Rank     int     `json:"rank"`
	PlayerID string  `json:"player_id"`
	Points   float64 `json:"points"`
}
