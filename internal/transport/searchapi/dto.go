package searchapi

import (
	"github.com/kailas-cloud/geolens/internal/domain/datetime"
	"github.com/kailas-cloud/geolens/internal/domain/search/query"
)

// searchRequest is the body of POST /search. Unset bounds are sent as null.
type searchRequest struct {
	Text          string              `json:"text"`
	MinLat        *float64            `json:"min_lat"`
	MaxLat        *float64            `json:"max_lat"`
	MinLon        *float64            `json:"min_lon"`
	MaxLon        *float64            `json:"max_lon"`
	TopK          int                 `json:"top_k"`
	StartDatetime *datetime.Timestamp `json:"start_datetime"`
	EndDatetime   *datetime.Timestamp `json:"end_datetime"`
}

func toRequest(q query.Query) searchRequest {
	return searchRequest{
		Text:          q.Text,
		MinLat:        q.BBox.LatMin,
		MaxLat:        q.BBox.LatMax,
		MinLon:        q.BBox.LonMin,
		MaxLon:        q.BBox.LonMax,
		TopK:          q.TopK,
		StartDatetime: q.Start,
		EndDatetime:   q.End,
	}
}

// errorBody is the error format of the search service.
type errorBody struct {
	Detail any `json:"detail"`
}
