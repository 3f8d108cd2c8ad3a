package chi

import (
	"github.com/kailas-cloud/geolens/internal/domain/datetime"
	"github.com/kailas-cloud/geolens/internal/domain/geo"
	"github.com/kailas-cloud/geolens/internal/domain/search/query"
	"github.com/kailas-cloud/geolens/internal/domain/surface"
	"github.com/kailas-cloud/geolens/internal/usecase/search"
	"github.com/kailas-cloud/geolens/internal/usecase/session"
)

// Form values are raw text; parsing them is the search use case's job.
type periodRequest struct {
	Day    string `json:"day" validate:"max=16"`
	Month  string `json:"month" validate:"max=16"`
	Year   string `json:"year" validate:"max=16"`
	Hour   string `json:"hour" validate:"max=16"`
	Minute string `json:"minute" validate:"max=16"`
	Second string `json:"second" validate:"max=16"`
}

type inputsRequest struct {
	Text   string        `json:"text" validate:"max=2000"`
	LatMin string        `json:"lat_min" validate:"max=32"`
	LatMax string        `json:"lat_max" validate:"max=32"`
	LonMin string        `json:"lon_min" validate:"max=32"`
	LonMax string        `json:"lon_max" validate:"max=32"`
	TopK   string        `json:"top_k" validate:"max=16"`
	Start  periodRequest `json:"start"`
	End    periodRequest `json:"end"`
}

func (r inputsRequest) toInputs() query.Inputs {
	return query.Inputs{
		Text:   r.Text,
		LatMin: r.LatMin,
		LatMax: r.LatMax,
		LonMin: r.LonMin,
		LonMax: r.LonMax,
		TopK:   r.TopK,
		Start:  datetime.Fields(r.Start),
		End:    datetime.Fields(r.End),
	}
}

type pointRequest struct {
	Lat *float64 `json:"lat" validate:"required,latitude"`
	Lon *float64 `json:"lon" validate:"required,longitude"`
}

func (r pointRequest) toPoint() geo.Point {
	return geo.Point{Lat: *r.Lat, Lon: *r.Lon}
}

type clickRequest struct {
	Lat      *float64 `json:"lat" validate:"required,latitude"`
	Lon      *float64 `json:"lon" validate:"required,longitude"`
	Modified bool     `json:"modified"`
}

func (r clickRequest) toEvent() surface.ClickEvent {
	return surface.ClickEvent{Pos: geo.Point{Lat: *r.Lat, Lon: *r.Lon}, Modified: r.Modified}
}

type layerRequest struct {
	Layer string `json:"layer" validate:"required"`
}

type searchResponse struct {
	Outcome search.Outcome   `json:"outcome"`
	Session session.Snapshot `json:"session"`
}

type focusResponse struct {
	Focused bool             `json:"focused"`
	Session session.Snapshot `json:"session"`
}

type errorResponse struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Details []fieldDetail `json:"details,omitempty"`
}

// fieldDetail names the first invalid field of a period group.
type fieldDetail struct {
	Group   string `json:"group"`
	Field   string `json:"field"`
	Message string `json:"message"`
}
