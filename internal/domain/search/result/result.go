package result

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kailas-cloud/geolens/internal/domain/geo"
)

// Result is a single search hit as returned by the search service, in relevance order.
type Result struct {
	lat    *float64
	lon    *float64
	score  float64
	image  string
	source string
	date   []int
	time   []int
}

// New creates a search result. lat/lon may be nil when the service did not geotag the image.
func New(lat, lon *float64, score float64, image, source string, date, clock []int) Result {
	return Result{
		lat: lat, lon: lon, score: score,
		image: image, source: source,
		date: date, time: clock,
	}
}

// Position returns the coordinates and whether both are present.
func (r *Result) Position() (geo.Point, bool) {
	if r.lat == nil || r.lon == nil {
		return geo.Point{}, false
	}
	return geo.Point{Lat: *r.lat, Lon: *r.lon}, true
}

// Score returns the relevance score.
func (r *Result) Score() float64 { return r.score }

// Image returns the raw image reference (remote storage URL or dataset-relative path).
func (r *Result) Image() string { return r.image }

// Source returns the original source reference.
func (r *Result) Source() string { return r.source }

// Date returns the [Y, M, D] capture date, nil if unknown.
func (r *Result) Date() []int { return r.date }

// Time returns the [H, M, S] capture time, nil if unknown.
func (r *Result) Time() []int { return r.time }

// ScoreText renders the score for display. Magnitudes below 1e-6 or from 1e21
// use exponent notation without zero padding ("1e-7").
func (r *Result) ScoreText() string {
	abs := math.Abs(r.score)
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		s := strconv.FormatFloat(r.score, 'e', -1, 64)
		return strings.NewReplacer("e-0", "e-", "e+0", "e+").Replace(s)
	}
	return strconv.FormatFloat(r.score, 'f', -1, 64)
}

// DateText joins the date parts with "-", empty if unknown.
func (r *Result) DateText() string { return joinInts(r.date, "-") }

// TimeText joins the time parts with ":", empty if unknown.
func (r *Result) TimeText() string { return joinInts(r.time, ":") }

// CoordsText renders the position with six decimals, empty if not geotagged.
func (r *Result) CoordsText() string {
	p, ok := r.Position()
	if !ok {
		return ""
	}
	return fmt.Sprintf("Lat: %.6f / Lng: %.6f", p.Lat, p.Lon)
}

func joinInts(parts []int, sep string) string {
	if len(parts) == 0 {
		return ""
	}
	s := make([]string, len(parts))
	for i, p := range parts {
		s[i] = strconv.Itoa(p)
	}
	return strings.Join(s, sep)
}

// wire is the JSON shape of a result.
type wire struct {
	Lat    json.RawMessage `json:"lat"`
	Lon    json.RawMessage `json:"lon"`
	Score  float64         `json:"score"`
	Image  string          `json:"image"`
	Source string          `json:"source,omitempty"`
	Date   []int           `json:"date,omitempty"`
	Time   []int           `json:"time,omitempty"`
}

// lenientWire decodes every field independently so one bad value never fails a batch.
type lenientWire struct {
	Lat    json.RawMessage `json:"lat"`
	Lon    json.RawMessage `json:"lon"`
	Score  json.RawMessage `json:"score"`
	Image  json.RawMessage `json:"image"`
	Source json.RawMessage `json:"source"`
	Date   json.RawMessage `json:"date"`
	Time   json.RawMessage `json:"time"`
}

// UnmarshalJSON decodes a result leniently: a missing, null or non-numeric lat/lon
// becomes nil rather than failing the whole batch. An entry that is not an object
// decodes to a result without a position.
func (r *Result) UnmarshalJSON(data []byte) error {
	var w lenientWire
	if json.Unmarshal(data, &w) != nil {
		*r = Result{}
		return nil
	}
	var score float64
	if s := number(w.Score); s != nil {
		score = *s
	}
	*r = New(
		number(w.Lat), number(w.Lon), score,
		text(w.Image), text(w.Source),
		ints(w.Date), ints(w.Time),
	)
	return nil
}

// MarshalJSON encodes the result in the search service format.
func (r Result) MarshalJSON() ([]byte, error) {
	w := wire{
		Lat:    encodeNumber(r.lat),
		Lon:    encodeNumber(r.lon),
		Score:  r.score,
		Image:  r.image,
		Source: r.source,
		Date:   r.date,
		Time:   r.time,
	}
	return json.Marshal(w)
}

func isNull(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

func number(raw json.RawMessage) *float64 {
	if isNull(raw) {
		return nil
	}
	var v float64
	if json.Unmarshal(raw, &v) != nil {
		return nil
	}
	return &v
}

func text(raw json.RawMessage) string {
	var s string
	if isNull(raw) || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

func ints(raw json.RawMessage) []int {
	var v []int
	if isNull(raw) || json.Unmarshal(raw, &v) != nil {
		return nil
	}
	return v
}

func encodeNumber(v *float64) json.RawMessage {
	if v == nil {
		return json.RawMessage("null")
	}
	return json.RawMessage(strconv.FormatFloat(*v, 'g', -1, 64))
}
