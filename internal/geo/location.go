// Package geo validates the optional citizen location attached to a query.
package geo

import "math"

// precision is the number of decimal places kept for coordinates.
const precision = 6

// Location is a latitude/longitude pair rounded to six decimal places.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Validate returns a rounded copy of raw, or nil when raw is absent or either
// coordinate is missing or not a finite number.
func Validate(lat, lng *float64) *Location {
	if lat == nil || lng == nil {
		return nil
	}
	if !finite(*lat) || !finite(*lng) {
		return nil
	}
	return &Location{Lat: round(*lat), Lng: round(*lng)}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func round(f float64) float64 {
	p := math.Pow10(precision)
	return math.Round(f*p) / p
}
