package geo

import (
	"math"
	"strconv"
	"strings"
)

// BoundDecimals is the precision used when a bound is written back into the form.
const BoundDecimals = 6

// Point is a WGS84 coordinate in degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// BoundingBox holds four independently optional bounds.
// No ordering between min and max is enforced here.
type BoundingBox struct {
	LatMin *float64
	LatMax *float64
	LonMin *float64
	LonMax *float64
}

// Complete reports whether all four bounds are set.
func (b BoundingBox) Complete() bool {
	return b.LatMin != nil && b.LatMax != nil && b.LonMin != nil && b.LonMax != nil
}

// Any reports whether at least one bound is set.
func (b BoundingBox) Any() bool {
	return b.LatMin != nil || b.LatMax != nil || b.LonMin != nil || b.LonMax != nil
}

// FromCorners builds a complete box spanning two opposite corners.
func FromCorners(a, b Point) BoundingBox {
	latMin, latMax := math.Min(a.Lat, b.Lat), math.Max(a.Lat, b.Lat)
	lonMin, lonMax := math.Min(a.Lon, b.Lon), math.Max(a.Lon, b.Lon)
	return BoundingBox{LatMin: &latMin, LatMax: &latMax, LonMin: &lonMin, LonMax: &lonMax}
}

// ParseBound parses a form value into a finite float. Blank or invalid input yields nil.
func ParseBound(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// FormatBound renders a bound with BoundDecimals digits after the point.
func FormatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', BoundDecimals, 64)
}

// ValidateCoordinates checks that latitude is in [-90,90] and longitude in [-180,180].
func ValidateCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
