// Package vessel derives the normalized fields and record identity of
// vessel-movement rows.
package vessel

import (
	"fmt"

	"github.com/m-dragosvelicu/agricolumn-protrade-sub000/internal/commodity"
	"github.com/m-dragosvelicu/agricolumn-protrade-sub000/internal/country"
	"github.com/m-dragosvelicu/agricolumn-protrade-sub000/internal/importer"
)

// Column keys of the vessel schema.
const (
	ColVesselName          = "vessel_name"
	ColIMO                 = "imo"
	ColCommodity           = "commodity"
	ColLoadingStart        = "loading_start"
	ColDepartureCountry    = "departure_country"
	ColDeparturePort       = "departure_port"
	ColDepartureLocation   = "departure_location"
	ColDestinationCountry  = "destination_country"
	ColDestinationPort     = "destination_port"
	ColDestinationLocation = "destination_location"
)

// Derived keys added to every row.
const (
	ColDepartureCountryCode   = "departure_country_code"
	ColDestinationCountryCode = "destination_country_code"
	ColKeyTier                = "key_tier"
)

// leg is one end of a voyage.
type leg struct {
	name     string
	country  string
	port     string
	location string
	code     string
}

var legs = []leg{
	{"departure", ColDepartureCountry, ColDeparturePort, ColDepartureLocation, ColDepartureCountryCode},
	{"destination", ColDestinationCountry, ColDestinationPort, ColDestinationLocation, ColDestinationCountryCode},
}

// Enricher normalizes commodity, countries and locations and sets the
// record key. The zero value is not usable; call NewEnricher.
type Enricher struct {
	composer *Composer
	keyer    Keyer
}

// NewEnricher builds an enricher over resolver.
func NewEnricher(resolver *country.Resolver, keyer Keyer) *Enricher {
	return &Enricher{composer: NewComposer(resolver), keyer: keyer}
}

// Enrich implements importer.EnrichFunc.
func (e *Enricher) Enrich(rows []importer.ParsedRow) []importer.Warning {
	var warnings []importer.Warning

	for i := range rows {
		row := &rows[i]
		warn := func(kind importer.WarningKind, column, msg string) {
			warnings = append(warnings, importer.Warning{
				Kind:     kind,
				RowIndex: i,
				SheetRow: row.SheetRow,
				Column:   column,
				Message:  msg,
			})
		}

		row.Values[ColCommodity] = commodity.Normalize(row.Get(ColCommodity))

		for _, l := range legs {
			loc := e.composer.Compose(row.Get(l.country), row.Get(l.port), row.Get(l.location))
			row.Values[l.location] = loc.Value
			row.Values[l.code] = loc.Country.Code

			if loc.Country.Degraded() {
				warn(importer.WarnDegradedCountry, l.country,
					fmt.Sprintf("%s country %q not recognized; guessed %s", l.name, row.Get(l.country), loc.Country.Code))
			}
			if loc.Review {
				warn(importer.WarnLocationReview, l.location,
					fmt.Sprintf("%s port %q has no country", l.name, loc.Value))
			}
		}

		key := e.keyer.Derive(row.Get(ColIMO), row.Get(ColVesselName), row.Get(ColLoadingStart), row.Get(ColCommodity))
		row.Key = key.Value
		row.Values[ColKeyTier] = key.Tier.String()
		if key.Degraded() {
			warn(importer.WarnDegradedKey, "",
				"missing IMO or vessel name, loading start or commodity; key will not deduplicate on re-import")
		}
	}
	return warnings
}

// Enrich runs the default enricher.
func Enrich(rows []importer.ParsedRow) []importer.Warning {
	return NewEnricher(country.Default(), Keyer{}).Enrich(rows)
}
