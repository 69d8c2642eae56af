package scoring

import (
	"github.com/crease-io/crease/internal/domain/model"
)

// maxWicketsPerInnings is the most wickets a single bowler can take.
const maxWicketsPerInnings = 10

// ValidateStatLine rejects malformed stat lines before scoring. Scoring
// never substitutes defaults for bad input; a failing record is reported
// and excluded while the rest of the batch continues.
func ValidateStatLine(p *model.RawPerformance) error {
	switch {
	case p.Runs < 0:
		return &InvalidStatLineError{Field: "runs", Reason: "must not be negative"}
	case p.BallsFaced < 0:
		return &InvalidStatLineError{Field: "balls_faced", Reason: "must not be negative"}
	case p.Wickets < 0:
		return &InvalidStatLineError{Field: "wickets", Reason: "must not be negative"}
	case p.Wickets > maxWicketsPerInnings:
		return &InvalidStatLineError{Field: "wickets", Reason: "exceeds 10 per innings"}
	case p.OversBowled < 0:
		return &InvalidStatLineError{Field: "overs_bowled", Reason: "must not be negative"}
	case p.RunsConceded < 0:
		return &InvalidStatLineError{Field: "runs_conceded", Reason: "must not be negative"}
	case p.Maidens < 0:
		return &InvalidStatLineError{Field: "maidens", Reason: "must not be negative"}
	case p.Catches < 0:
		return &InvalidStatLineError{Field: "catches", Reason: "must not be negative"}
	case p.Stumpings < 0:
		return &InvalidStatLineError{Field: "stumpings", Reason: "must not be negative"}
	case p.RunOuts < 0:
		return &InvalidStatLineError{Field: "run_outs", Reason: "must not be negative"}
	case p.IsOut && p.BallsFaced == 0 && p.Runs > 0:
		return &InvalidStatLineError{Field: "balls_faced", Reason: "dismissed with runs but zero balls faced"}
	case p.IsCaptain && p.IsViceCaptain:
		return &InvalidStatLineError{Field: "is_captain", Reason: "cannot be captain and vice-captain"}
	}
	return nil
}
