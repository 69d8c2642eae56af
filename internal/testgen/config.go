package testgen

import "time"

// Config holds configuration for the performance ingest test
type Config struct {
	BaseURL    string        // Base URL of the service
	NumRecords int           // Number of performance records to generate
	TopN       int           // Number of top entries to fetch
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	OutputFile string        // Output file for generated records
	LogFile    string        // Log file for test output
	Verbose    bool          // Enable verbose logging
}

// Performance mirrors the POST /performances wire schema
type Performance struct {
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
}

// Entry represents a standings entry
type Entry struct {
	Rank     int     `json:"rank"`
	PlayerID string  `json:"player_id"`
	Points   float64 `json:"points"`
}

// PlayerIdentity represents a resolved player identity
type PlayerIdentity struct {
	ID            string   `json:"id"`
	CanonicalName string   `json:"canonical_name"`
	NameVariants  []string `json:"name_variants"`
}

// AckResponse represents the response from record submission
type AckResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// Stats holds test statistics
type Stats struct {
	RecordsGenerated  int
	RecordsSubmitted  int
	RecordsSuccessful int
	RecordsDuplicate  int
	RecordsFailed     int
	PlayersGenerated  int
	VariantsEmitted   int
	StandingsEntries  int
	IdentitiesChecked int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}
