package vessel

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/m-dragosvelicu/agricolumn-protrade-sub000/internal/country"
)

// PortCorrections maps known misspellings and alternate spellings of port
// names, keyed by lower case, to the canonical spelling.
var PortCorrections = map[string]string{
	"constantza": "Constanta",
	"constanța":  "Constanta",
	"constanţa":  "Constanta",
	"konstanza":  "Constanta",
}

// Location is a composed "{code}-{Port}" token.
type Location struct {
	Value   string
	Review  bool               // port without a country; needs a manual fix
	Country country.Resolution // zero when no country was given
}

// Composer builds location tokens. It is safe for concurrent use.
type Composer struct {
	resolver *country.Resolver
}

// NewComposer returns a composer backed by resolver.
func NewComposer(resolver *country.Resolver) *Composer {
	return &Composer{resolver: resolver}
}

// Compose derives a location from a country and port. With only a
// country the code alone is used; with only a port the raw port is kept
// and flagged for review; with neither, existing is returned.
func (c *Composer) Compose(countryText, port, existing string) Location {
	countryText = strings.TrimSpace(countryText)
	port = strings.TrimSpace(port)

	switch {
	case countryText != "" && port != "":
		res := c.resolver.Resolve(countryText)
		return Location{Value: res.Code + "-" + c.NormalizePort(port), Country: res}
	case countryText != "":
		res := c.resolver.Resolve(countryText)
		return Location{Value: res.Code, Country: res}
	case port != "":
		return Location{Value: port, Review: true}
	default:
		return Location{Value: strings.TrimSpace(existing)}
	}
}

// NormalizePort corrects known misspellings and title-cases the name.
func (c *Composer) NormalizePort(port string) string {
	port = strings.Join(strings.Fields(port), " ")
	if fixed, ok := PortCorrections[strings.ToLower(port)]; ok {
		return fixed
	}
	// A Caser keeps state between calls, so each call gets its own.
	return cases.Title(language.English).String(port)
}

// ComposeLocation uses the default country resolver.
func ComposeLocation(countryText, port, existing string) Location {
	return NewComposer(country.Default()).Compose(countryText, port, existing)
}
