package scoring

import "strings"

// Tier classifies the strength of a competition grade. The tier multiplier
// applies downstream of base-point computation, alongside the league
// multiplier.
type Tier string

const (
	Tier1  Tier = "tier1"
	Tier2  Tier = "tier2"
	Tier3  Tier = "tier3"
	Youth  Tier = "youth"
	Ladies Tier = "ladies"
	Social Tier = "social"
)

// Multiplier returns the final-score multiplier for the tier.
func (t Tier) Multiplier() float64 {
	switch t {
	case Tier1:
		return 1.2
	case Tier2:
		return 1.0
	case Tier3:
		return 0.8
	case Youth:
		return 0.6
	case Ladies:
		return 0.9
	case Social:
		return 0.4
	default:
		return 0
	}
}

// gradeRule maps a lowercase keyword to a tier. Rules are evaluated in
// order; the first keyword contained in the grade name wins.
type gradeRule struct {
	keyword string
	tier    Tier
}

// gradeRules is the ordered classification table. Youth and social rules
// come first so that e.g. "Hoofdklasse U15" lands on youth, which is how
// the bond files such grades.
var gradeRules = []gradeRule{
	{"u9", Youth},
	{"u10", Youth},
	{"u11", Youth},
	{"u12", Youth},
	{"u13", Youth},
	{"u15", Youth},
	{"u17", Youth},
	{"zami", Social},
	{"zomi", Social},
	{"dames", Ladies},
	{"vrouwen", Ladies},
	{"ladies", Ladies},
	{"women", Ladies},
	{"topklasse", Tier1},
	{"hoofdklasse", Tier1},
	{"eerste klasse", Tier2},
	{"tweede klasse", Tier2},
	{"1e klasse", Tier2},
	{"2e klasse", Tier2},
	{"derde klasse", Tier3},
	{"vierde klasse", Tier3},
	{"3e klasse", Tier3},
	{"4e klasse", Tier3},
}

// ClassifyGrade maps a grade name to its tier via the ordered rule table.
// An unrecognized grade returns an UnknownGradeError; there is no default
// tier.
func ClassifyGrade(gradeName string) (Tier, error) {
	name := strings.ToLower(strings.TrimSpace(gradeName))
	if name == "" {
		return "", &UnknownGradeError{Grade: gradeName}
	}
	for _, rule := range gradeRules {
		if strings.Contains(name, rule.keyword) {
			return rule.tier, nil
		}
	}
	return "", &UnknownGradeError{Grade: gradeName}
}
