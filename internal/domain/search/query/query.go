package query

import (
	"errors"
	"strconv"
	"strings"

	"github.com/kailas-cloud/geolens/internal/domain/datetime"
	"github.com/kailas-cloud/geolens/internal/domain/geo"
)

// DefaultTopK is used when the result count is unset or unusable.
const DefaultTopK = 5

var (
	// ErrNoCriteria is returned when no search dimension is filled in.
	ErrNoCriteria = errors.New("at least one search criterion is required (text, coordinates or dates)")
	// ErrInvalidBounds is matched by InvalidBoundsError.
	ErrInvalidBounds = errors.New("invalid period bounds")
)

// Inputs are the raw form values of one submission.
type Inputs struct {
	Text   string          `json:"text"`
	LatMin string          `json:"lat_min"`
	LatMax string          `json:"lat_max"`
	LonMin string          `json:"lon_min"`
	LonMax string          `json:"lon_max"`
	TopK   string          `json:"top_k"`
	Start  datetime.Fields `json:"start"`
	End    datetime.Fields `json:"end"`
}

// Query is a validated search request.
type Query struct {
	Text  string
	BBox  geo.BoundingBox
	TopK  int
	Start *datetime.Timestamp
	End   *datetime.Timestamp
}

// InvalidBoundsError carries the first field error of each failing bound group.
type InvalidBoundsError struct {
	Start *datetime.FieldError
	End   *datetime.FieldError
}

func (e *InvalidBoundsError) Error() string {
	return strings.Join(e.Messages(), "; ")
}

func (e *InvalidBoundsError) Unwrap() error { return ErrInvalidBounds }

// Failed returns the error of the given group, nil if it resolved.
func (e *InvalidBoundsError) Failed(b datetime.Bound) *datetime.FieldError {
	if b == datetime.End {
		return e.End
	}
	return e.Start
}

// Messages returns one user-facing message per failing group, start first.
func (e *InvalidBoundsError) Messages() []string {
	var msgs []string
	if e.Start != nil {
		msgs = append(msgs, "period start: "+e.Start.Error())
	}
	if e.End != nil {
		msgs = append(msgs, "period end: "+e.End.Error())
	}
	return msgs
}

// Build resolves both period bounds and assembles the query.
// Both bounds are resolved even if the first fails, so every failing group is reported.
func Build(in Inputs) (Query, error) {
	start, startErr := resolve(in.Start, datetime.Start)
	end, endErr := resolve(in.End, datetime.End)
	if startErr != nil || endErr != nil {
		return Query{}, &InvalidBoundsError{Start: startErr, End: endErr}
	}

	q := Query{
		Text: strings.TrimSpace(in.Text),
		BBox: geo.BoundingBox{
			LatMin: geo.ParseBound(in.LatMin),
			LatMax: geo.ParseBound(in.LatMax),
			LonMin: geo.ParseBound(in.LonMin),
			LonMax: geo.ParseBound(in.LonMax),
		},
		TopK:  parseTopK(in.TopK),
		Start: start,
		End:   end,
	}

	if q.Text == "" && !q.BBox.Complete() && q.Start == nil && q.End == nil {
		return Query{}, ErrNoCriteria
	}
	return q, nil
}

func resolve(f datetime.Fields, b datetime.Bound) (*datetime.Timestamp, *datetime.FieldError) {
	ts, err := datetime.Resolve(f, b)
	if err == nil {
		return ts, nil
	}
	var fe *datetime.FieldError
	if errors.As(err, &fe) {
		return nil, fe
	}
	return nil, &datetime.FieldError{Field: datetime.Year}
}

func parseTopK(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < 1 {
		return DefaultTopK
	}
	return v
}
