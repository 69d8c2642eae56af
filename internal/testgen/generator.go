package testgen

import (
	"context"
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/crease-io/crease/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
	variantDivisor     = 10 // one in ten submissions uses an initial-form name
	matchWeeks         = 6
)

// Player role cases.
const (
	caseBatsman    = 0
	caseBowler     = 1
	caseAllRounder = 2
	caseKeeper     = 3
	roleDivisor    = 4
)

// Name material for synthetic Dutch club cricketers. Particles are part of
// the surname so the generated variants exercise fingerprint matching.
var givenNames = []string{
	"Jan", "Pieter", "Willem", "Hendrik", "Daan", "Sven", "Ruben", "Thijs",
	"Niels", "Bram", "Joris", "Maarten", "Kees", "Floris", "Wouter", "Sander",
}

var surnames = []string{
	"de Vries", "van Dijk", "van der Berg", "Jansen", "Bakker", "Visser",
	"de Boer", "Mulder", "ter Horst", "van den Heuvel", "Smit", "Meijer",
	"de Groot", "Bos", "van Leeuwen", "Dekker",
}

var clubs = []string{
	"VCC Rood Wit", "HCC Quick", "ACC Amstelveen", "Excelsior '20",
}

var grades = []string{
	"Topklasse", "Hoofdklasse", "Eerste Klasse", "Tweede Klasse",
	"Derde Klasse", "4e Klasse",
}

// syntheticPlayer is one generated player the records are attributed to.
type syntheticPlayer struct {
	fullName string
	initial  string // "J. de Vries" style variant
	club     string
	grade    string
	role     int
}

// getRandomInt returns a random int in [0, n) using crypto/rand.
func getRandomInt(n int) int {
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// generatePlayers builds a pool of synthetic players with stable clubs,
// grades, and role profiles.
func generatePlayers(count int) []syntheticPlayer {
	players := make([]syntheticPlayer, count)
	for i := range players {
		given := givenNames[getRandomInt(len(givenNames))]
		surname := surnames[getRandomInt(len(surnames))]
		full := given + " " + surname
		players[i] = syntheticPlayer{
			fullName: full,
			initial:  string([]rune(given)[0]) + ". " + surname,
			club:     clubs[getRandomInt(len(clubs))],
			grade:    grades[getRandomInt(len(grades))],
			role:     getRandomInt(roleDivisor),
		}
		// Keep name+club pairs unique enough that the resolver treats each
		// pool entry as one player.
		if i > 0 && players[i].fullName == players[i-1].fullName {
			players[i].club = clubs[(i)%len(clubs)]
		}
	}
	return players
}

// generateRecords creates performance records attributed to a smaller pool
// of players, so each player accumulates several records across match weeks
// and some arrive under the initial-form name variant.
func generateRecords(ctx context.Context, config *Config, stats *Stats) ([]Performance, error) {
	playerCount := config.NumRecords / matchWeeks
	if playerCount < 1 {
		playerCount = 1
	}
	players := generatePlayers(playerCount)
	stats.PlayersGenerated = len(players)

	logger.Get().Info(ctx, "generating performance records",
		logger.Int("numRecords", config.NumRecords),
		logger.Int("players", len(players)))

	seasonStart := time.Date(time.Now().Year(), time.May, 4, 0, 0, 0, 0, time.UTC)
	records := make([]Performance, 0, config.NumRecords)

	for i := 0; i < config.NumRecords; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := &players[i%len(players)]
		week := (i / len(players)) % matchWeeks

		name := p.fullName
		if getRandomInt(variantDivisor) == 0 {
			name = p.initial
			stats.VariantsEmitted++
		}

		rec := generateStatLine(p)
		rec.RecordID = "rec_" + strconv.Itoa(i) + "_" + strconv.FormatInt(time.Now().UnixNano(), 36)
		rec.Name = name
		rec.Club = p.club
		rec.Grade = p.grade
		rec.MatchDate = seasonStart.AddDate(0, 0, week*7+getRandomInt(2)).Format("2006-01-02")
		records = append(records, rec)
	}

	stats.RecordsGenerated = len(records)
	logger.Get().Info(ctx, "generated records successfully", logger.Int("count", len(records)))
	return records, nil
}

// generateStatLine produces a plausible stat line for the player's role.
func generateStatLine(p *syntheticPlayer) Performance {
	var rec Performance

	switch p.role {
	case caseBatsman:
		rec.Runs = getRandomInt(121)
		rec.BallsFaced = rec.Runs + getRandomInt(40)
		rec.IsOut = getRandomFloat() < 0.7
	case caseBowler:
		rec.Runs = getRandomInt(20)
		rec.BallsFaced = rec.Runs + getRandomInt(15)
		rec.IsOut = getRandomFloat() < 0.5
		rec.Wickets = getRandomInt(6)
		rec.OversBowled = float64(4 + getRandomInt(7))
		rec.RunsConceded = getRandomInt(55)
		rec.Maidens = getRandomInt(3)
	case caseAllRounder:
		rec.Runs = getRandomInt(70)
		rec.BallsFaced = rec.Runs + getRandomInt(30)
		rec.IsOut = getRandomFloat() < 0.6
		rec.Wickets = getRandomInt(4)
		rec.OversBowled = float64(2 + getRandomInt(6))
		rec.RunsConceded = getRandomInt(40)
	case caseKeeper:
		rec.Runs = getRandomInt(60)
		rec.BallsFaced = rec.Runs + getRandomInt(25)
		rec.IsOut = getRandomFloat() < 0.6
		rec.IsWicketkeeper = true
		rec.Stumpings = getRandomInt(3)
	}

	// Everyone fields.
	rec.Catches = getRandomInt(3)
	rec.RunOuts = getRandomInt(2)

	// Zero balls faced means did-not-bat; clear the out flag so the line
	// passes stat validation.
	if rec.BallsFaced == 0 {
		rec.IsOut = false
		rec.Runs = 0
	}
	return rec
}

// canonicalKey gives the (name, club) key used to group expected records.
func canonicalKey(name, club string) string {
	return strings.ToLower(name) + "|" + strings.ToLower(club)
}
