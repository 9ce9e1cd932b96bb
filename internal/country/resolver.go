// Package country resolves free-text country names to ISO 3166-1 alpha-2
// codes.
//
// Resolution is total: any non-blank input yields some two-letter code.
// Each answer carries the tier that produced it, so callers can tell an
// exact match from the last-resort prefix guess.
package country

import (
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Tier is the lookup step that produced a Resolution.
type Tier int

const (
	TierNone      Tier = iota // blank input
	TierExact                 // lower-cased official name
	TierStripped              // name without spaces, punctuation or accents
	TierCorpus                // corpus lookup (aliases)
	TierSubstring             // containment against official names
	TierTypo                  // known misspelling or short form
	TierCode                  // input is itself a known code
	TierPrefix                // first two letters; unverified
)

var tierNames = [...]string{"none", "exact", "stripped", "corpus", "substring", "typo", "code", "prefix"}

func (t Tier) String() string {
	if t < 0 || int(t) >= len(tierNames) {
		return "unknown"
	}
	return tierNames[t]
}

// Resolution is the answer for one input.
type Resolution struct {
	Code string // two-letter code; empty only for blank input
	Name string // official name when Code is known to the corpus
	Tier Tier
}

// Degraded reports whether the code is an unverified prefix guess.
func (r Resolution) Degraded() bool {
	return r.Tier == TierPrefix
}

// minReverseContain is the shortest stripped input allowed to match as a
// fragment of a longer official name.
const minReverseContain = 4

// maxWordOnly is the longest official name that must appear as a whole word
// of the input to match by containment, so "Oman" is not found in "Romanai".
const maxWordOnly = 4

// DefaultTypos maps stripped misspellings and short forms to codes.
var DefaultTypos = map[string]string{
	"romainia":    "RO",
	"romanai":     "RO",
	"rumania":     "RO",
	"roumania":    "RO",
	"uk":          "GB",
	"england":     "GB",
	"usa":         "US",
	"uae":         "AE",
	"holland":     "NL",
	"bulgary":     "BG",
	"egipt":       "EG",
	"marocco":     "MA",
	"morroco":     "MA",
	"ukriane":     "UA",
	"tunis":       "TN",
	"lybia":       "LY",
	"saudiarabi":  "SA",
	"ksa":         "SA",
	"rsa":         "ZA",
	"drc":         "CD",
	"phillipines": "PH",
}

type candidate struct {
	key  string // stripped official name
	name string
	code string
}

// Resolver is an immutable lookup structure, safe for concurrent use.
type Resolver struct {
	byName     map[string]string // lower-cased official name -> code
	byStripped map[string]string // stripped official name -> code
	byCode     map[string]string // code -> official name
	candidates []candidate       // longest key first
	typos      map[string]string
	corpus     Corpus
}

// Option configures New.
type Option func(*Resolver)

// WithCorpus sets the corpus consulted after the official-name maps.
func WithCorpus(c Corpus) Option {
	return func(r *Resolver) { r.corpus = c }
}

// WithTypos replaces DefaultTypos. Keys are stripped before use.
func WithTypos(typos map[string]string) Option {
	return func(r *Resolver) {
		r.typos = make(map[string]string, len(typos))
		for k, v := range typos {
			r.typos[strip(k)] = strings.ToUpper(v)
		}
	}
}

// New builds a resolver over entries.
func New(entries []Entry, opts ...Option) *Resolver {
	r := &Resolver{
		byName:     make(map[string]string, len(entries)),
		byStripped: make(map[string]string, len(entries)),
		byCode:     make(map[string]string, len(entries)),
		candidates: make([]candidate, 0, len(entries)),
	}
	WithTypos(DefaultTypos)(r)

	for _, e := range entries {
		code := strings.ToUpper(e.Code)
		r.byName[strings.ToLower(e.Name)] = code
		r.byCode[code] = e.Name
		if key := strip(e.Name); key != "" {
			r.byStripped[key] = code
			r.candidates = append(r.candidates, candidate{key: key, name: e.Name, code: code})
		}
	}

	sort.Slice(r.candidates, func(i, j int) bool {
		a, b := r.candidates[i], r.candidates[j]
		if len(a.key) != len(b.key) {
			return len(a.key) > len(b.key)
		}
		return a.name < b.name
	})

	for _, opt := range opts {
		opt(r)
	}
	return r
}

var defaultResolver = sync.OnceValue(func() *Resolver {
	entries := Entries()
	return New(entries, WithCorpus(NewAliasCorpus(entries)))
})

// Default returns the process-wide resolver over the embedded corpus.
func Default() *Resolver {
	return defaultResolver()
}

// Name returns the official name for a code.
func (r *Resolver) Name(code string) (string, bool) {
	name, ok := r.byCode[strings.ToUpper(strings.TrimSpace(code))]
	return name, ok
}

// Code is Resolve(input).Code.
func (r *Resolver) Code(input string) string {
	return r.Resolve(input).Code
}

// Resolve maps input to a country code. The first tier that matches wins.
func (r *Resolver) Resolve(input string) Resolution {
	input = strings.TrimSpace(input)
	if input == "" {
		return Resolution{}
	}

	if code, ok := r.byName[strings.ToLower(input)]; ok {
		return r.found(code, TierExact)
	}

	key := strip(input)
	if code, ok := r.byStripped[key]; ok {
		return r.found(code, TierStripped)
	}

	if r.corpus != nil {
		if code, ok := r.corpus.LookupFuzzy(input); ok {
			return r.found(code, TierCorpus)
		}
	}

	if key != "" {
		inputWords := words(input)
		for _, c := range r.candidates {
			if contains(key, inputWords, c.key) ||
				(len(key) >= minReverseContain && strings.Contains(c.key, key)) {
				return r.found(c.code, TierSubstring)
			}
		}
	}

	if code, ok := r.typos[key]; ok {
		return r.found(code, TierTypo)
	}

	if utf8.RuneCountInString(input) == 2 {
		if code := strings.ToUpper(input); r.byCode[code] != "" {
			return r.found(code, TierCode)
		}
	}

	return r.found(prefix(input), TierPrefix)
}

// contains reports whether the stripped input holds name. Short names only
// count when they are one of the input's words.
func contains(key string, words []string, name string) bool {
	if len(name) > maxWordOnly {
		return strings.Contains(key, name)
	}
	for _, w := range words {
		if w == name {
			return true
		}
	}
	return false
}

func (r *Resolver) found(code string, tier Tier) Resolution {
	return Resolution{Code: code, Name: r.byCode[code], Tier: tier}
}

// prefix is the first two letters of input, upper-cased. Inputs with fewer
// than two letters fall back to their first two runes.
func prefix(input string) string {
	var letters []rune
	for _, ch := range fold(input) {
		if unicode.IsLetter(ch) {
			letters = append(letters, ch)
			if len(letters) == 2 {
				return strings.ToUpper(string(letters))
			}
		}
	}
	rs := []rune(input)
	if len(rs) > 2 {
		rs = rs[:2]
	}
	return strings.ToUpper(string(rs))
}

// fold removes combining marks: "România" becomes "Romania".
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// words splits input into stripped words.
func words(input string) []string {
	return strings.FieldsFunc(strings.ToLower(fold(input)), func(ch rune) bool {
		return !unicode.IsLetter(ch) && !unicode.IsDigit(ch)
	})
}

// strip folds accents and case and drops everything but letters and digits.
func strip(s string) string {
	var b strings.Builder
	for _, ch := range strings.ToLower(fold(s)) {
		if unicode.IsLetter(ch) || unicode.IsDigit(ch) {
			b.WriteRune(ch)
		}
	}
	return b.String()
}
