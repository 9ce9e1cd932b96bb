package sheet

import (
	"math"
	"time"
)

// serialEpoch is day zero of the 1900 date system as spreadsheets count it.
// Using 1899-12-30 rather than 1900-01-01 absorbs the phantom 1900-02-29,
// so serials from 61 (1900-03-01) onward map to the right calendar day.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// FromSerial converts a day-count serial to a UTC date. The fractional
// (time of day) part is dropped.
func FromSerial(serial float64) time.Time {
	days := int(math.Floor(serial))
	return serialEpoch.AddDate(0, 0, days)
}

// ToSerial converts a date back to its whole-day serial.
func ToSerial(t time.Time) float64 {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	// Unix seconds rather than Sub: a Duration saturates after ~292 years.
	return float64((day.Unix() - serialEpoch.Unix()) / secondsPerDay)
}

const secondsPerDay = 24 * 60 * 60
