// Package namekey normalizes free-text player names into comparable
// fingerprints. Normalization is total and deterministic: any input string
// produces a fingerprint, falling back to the lowercased alphanumeric form
// of the whole string when no surname/given split can be found.
package namekey

import (
	"strings"
	"unicode"
)

// Name is the structured result of normalizing a raw player name.
type Name struct {
	Given    []string // given-name tokens, lowercased, punctuation-free
	Surname  []string // surname tokens, lowercased, punctuation-free
	// Fingerprint concatenates surname tokens then given tokens with no
	// separators, e.g. "Jan de Vries" -> "devriesjan".
	Fingerprint string
}

// surnameParticles are lowercase particles glued to the following surname
// token, so "Jan de Vries" yields surname tokens ["de", "vries"].
var surnameParticles = map[string]bool{
	"de":  true,
	"den": true,
	"der": true,
	"van": true,
	"von": true,
	"ter": true,
	"te":  true,
	"ten": true,
	"le":  true,
	"la":  true,
	"di":  true,
	"da":  true,
	"del": true,
	"el":  true,
	"al":  true,
	"st":  true,
}

// Normalize turns a raw player-name string into a Name. It never fails.
func Normalize(raw string) Name {
	trimmed := strings.Join(strings.Fields(raw), " ")

	var givenPart, surnamePart string
	if idx := strings.Index(trimmed, ","); idx >= 0 {
		// "Vries, Jan de" style: surname before the comma.
		surnamePart = trimmed[:idx]
		givenPart = trimmed[idx+1:]
	} else {
		givenPart, surnamePart = splitOnLastName(trimmed)
	}

	given := cleanTokens(strings.Fields(givenPart))
	surname := cleanTokens(strings.Fields(surnamePart))

	if len(given) == 0 && len(surname) == 0 {
		fallback := cleanToken(trimmed)
		return Name{Fingerprint: fallback}
	}

	var fp strings.Builder
	for _, t := range surname {
		fp.WriteString(t)
	}
	for _, t := range given {
		fp.WriteString(t)
	}
	return Name{Given: given, Surname: surname, Fingerprint: fp.String()}
}

// GivenInitial returns the first letter of the first given token, or 0 when
// there is no given name.
func (n Name) GivenInitial() byte {
	if len(n.Given) == 0 || len(n.Given[0]) == 0 {
		return 0
	}
	return n.Given[0][0]
}

// GivenIsInitial reports whether the first given token is a bare initial.
func (n Name) GivenIsInitial() bool {
	return len(n.Given) > 0 && len(n.Given[0]) == 1
}

// SurnameKey returns the surname tokens joined without separators.
func (n Name) SurnameKey() string {
	return strings.Join(n.Surname, "")
}

// splitOnLastName treats the last whitespace token as surname, pulling any
// preceding particles ("de", "van", "van der", ...) into the surname.
func splitOnLastName(s string) (given, surname string) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return "", ""
	}
	if len(fields) == 1 {
		return "", fields[0]
	}
	split := len(fields) - 1
	for split > 0 && surnameParticles[strings.ToLower(strings.Trim(fields[split-1], "."))] {
		split--
	}
	if split == 0 {
		// Every leading token is a particle; treat the whole string as surname.
		return "", s
	}
	return strings.Join(fields[:split], " "), strings.Join(fields[split:], " ")
}

func cleanTokens(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if c := cleanToken(t); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// cleanToken lowercases and strips everything that is not a letter or digit,
// which also removes trailing periods from initials.
func cleanToken(t string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(t) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
