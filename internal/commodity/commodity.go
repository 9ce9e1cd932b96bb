// Package commodity maps vendor commodity text onto a small fixed taxonomy.
//
// The taxonomy is deliberately incomplete. Text no rule recognizes passes
// through trimmed but otherwise unchanged.
package commodity

import (
	"regexp"
	"strings"
)

// Taxon is one canonical commodity value.
type Taxon string

const (
	Wheat   Taxon = "WHEAT"
	Corn    Taxon = "CORN"
	Barley  Taxon = "BARLEY"
	RPS     Taxon = "RPS"
	RPSMeal Taxon = "RPS_MEAL"
	RPSOil  Taxon = "RPS_OIL"
	SFS     Taxon = "SFS"
	SFSMeal Taxon = "SFS_MEAL"
	SFSOil  Taxon = "SFS_OIL"
)

// Taxa lists every canonical value.
var Taxa = []Taxon{Wheat, Corn, Barley, RPS, RPSMeal, RPSOil, SFS, SFSMeal, SFSOil}

// Rule yields Taxon when every pattern matches.
type Rule struct {
	Name     string
	Patterns []*regexp.Regexp
	Taxon    Taxon
}

// Matches reports whether s satisfies the rule.
func (r Rule) Matches(s string) bool {
	for _, p := range r.Patterns {
		if !p.MatchString(s) {
			return false
		}
	}
	return len(r.Patterns) > 0
}

var (
	sunflower = regexp.MustCompile(`(?i)sun\s*-?\s*flower`)
	rapeseed  = regexp.MustCompile(`(?i)rape\s*-?\s*seed|\brape\b|canola`)
	corn      = regexp.MustCompile(`(?i)\b(corn|maize)\b`)
	meal      = regexp.MustCompile(`(?i)\bmeal\b`)
	oil       = regexp.MustCompile(`(?i)\boil\b`)
)

// Rules is the ordered rule table. The first match wins, and within each
// family the meal and oil qualifiers are tested before the bare commodity.
var Rules = []Rule{
	{Name: "sunflower meal", Patterns: []*regexp.Regexp{sunflower, meal}, Taxon: SFSMeal},
	{Name: "sunflower oil", Patterns: []*regexp.Regexp{sunflower, oil}, Taxon: SFSOil},
	{Name: "sunflower", Patterns: []*regexp.Regexp{sunflower}, Taxon: SFS},
	{Name: "rapeseed meal", Patterns: []*regexp.Regexp{rapeseed, meal}, Taxon: RPSMeal},
	{Name: "rapeseed oil", Patterns: []*regexp.Regexp{rapeseed, oil}, Taxon: RPSOil},
	{Name: "rapeseed", Patterns: []*regexp.Regexp{rapeseed}, Taxon: RPS},
	{Name: "corn", Patterns: []*regexp.Regexp{corn}, Taxon: Corn},
}

// Match returns the taxon of the first rule s satisfies.
func Match(s string) (Taxon, bool) {
	for _, r := range Rules {
		if r.Matches(s) {
			return r.Taxon, true
		}
	}
	return "", false
}

// Normalize returns the taxon for s, or s trimmed when nothing matches.
// Canonical values are returned as they are.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || IsTaxon(s) {
		return s
	}
	if t, ok := Match(s); ok {
		return string(t)
	}
	return s
}

// IsTaxon reports whether s is already a canonical value.
func IsTaxon(s string) bool {
	for _, t := range Taxa {
		if string(t) == s {
			return true
		}
	}
	return false
}
