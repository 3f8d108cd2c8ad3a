// Package datetime reconstructs a point in time from six discrete, possibly blank form fields.
package datetime

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Year limits accepted from the form.
const (
	MinYear = 1
	MaxYear = 9999
)

// ErrInvalidField is matched by every FieldError.
var ErrInvalidField = errors.New("invalid field")

// Bound selects how blank fields are defaulted.
type Bound int

const (
	// Start opens the range: blank fields take their minimum.
	Start Bound = iota
	// End closes the range: blank fields take their maximum.
	End
)

func (b Bound) String() string {
	if b == End {
		return "end"
	}
	return "start"
}

// Field names one of the six inputs of a bound group.
type Field string

// Bound group fields in resolution order.
const (
	Year   Field = "year"
	Month  Field = "month"
	Day    Field = "day"
	Hour   Field = "hour"
	Minute Field = "minute"
	Second Field = "second"
)

// Fields are the raw texts of one bound group.
type Fields struct {
	Day    string `json:"day"`
	Month  string `json:"month"`
	Year   string `json:"year"`
	Hour   string `json:"hour"`
	Minute string `json:"minute"`
	Second string `json:"second"`
}

// FieldError reports the first invalid field of a group.
type FieldError struct {
	Field Field
	Value string
}

func (e *FieldError) Error() string { return "invalid " + string(e.Field) }

func (e *FieldError) Unwrap() error { return ErrInvalidField }

// Timestamp is a resolved, timezone-naive wall-clock value.
type Timestamp struct {
	Year, Month, Day     int
	Hour, Minute, Second int
}

// String renders the wire form YYYY-MM-DDTHH:MM:SS.
func (t Timestamp) String() string {
	return fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:%02d",
		t.Year, t.Month, t.Day, t.Hour, t.Minute, t.Second)
}

// MarshalJSON emits the wire form as a JSON string.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(t.String())), nil
}

// LastDayOfMonth returns the number of days in month of year (proleptic Gregorian).
func LastDayOfMonth(year, month int) int {
	// Day 0 of the next month normalizes to the last day of this one.
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Resolve turns a bound group into a Timestamp.
// A blank year means the whole bound is unspecified: nil, nil.
// Other blank fields are defaulted to the range minimum for Start and the maximum for End.
func Resolve(f Fields, b Bound) (*Timestamp, error) {
	if isBlank(f.Year) {
		return nil, nil
	}
	var ts Timestamp
	var err error

	if ts.Year, err = parseField(Year, f.Year, MinYear, MaxYear); err != nil {
		return nil, err
	}
	if ts.Month, err = resolveField(Month, f.Month, 1, 12, b); err != nil {
		return nil, err
	}
	if ts.Day, err = resolveField(Day, f.Day, 1, LastDayOfMonth(ts.Year, ts.Month), b); err != nil {
		return nil, err
	}
	if ts.Hour, err = resolveField(Hour, f.Hour, 0, 23, b); err != nil {
		return nil, err
	}
	if ts.Minute, err = resolveField(Minute, f.Minute, 0, 59, b); err != nil {
		return nil, err
	}
	if ts.Second, err = resolveField(Second, f.Second, 0, 59, b); err != nil {
		return nil, err
	}
	return &ts, nil
}

func resolveField(name Field, raw string, lo, hi int, b Bound) (int, error) {
	if isBlank(raw) {
		if b == End {
			return hi, nil
		}
		return lo, nil
	}
	return parseField(name, raw, lo, hi)
}

func parseField(name Field, raw string, lo, hi int) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || v < lo || v > hi {
		return 0, &FieldError{Field: name, Value: raw}
	}
	return v, nil
}

func isBlank(s string) bool { return strings.TrimSpace(s) == "" }
