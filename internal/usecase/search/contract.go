package search

import (
	"context"

	"github.com/kailas-cloud/geolens/internal/domain/datetime"
	"github.com/kailas-cloud/geolens/internal/domain/search/query"
	"github.com/kailas-cloud/geolens/internal/domain/search/result"
)

// Searcher sends a query to the search service.
type Searcher interface {
	Search(ctx context.Context, q query.Query) ([]result.Result, error)
}

// ResultApplier replaces the displayed results and returns how many were accepted.
type ResultApplier interface {
	Replace(results []result.Result) int
}

// Indicator is the loading indicator. Show and Hide calls are paired.
type Indicator interface {
	ShowLoading()
	HideLoading()
}

// Notifier surfaces user-visible messages.
type Notifier interface {
	Notify(n Notice)
}

// FieldMarker toggles the invalid styling of period field groups.
type FieldMarker interface {
	ClearInvalid()
	MarkInvalid(b datetime.Bound)
}

// ResultPanel reveals the result list.
type ResultPanel interface {
	ShowResults()
}

// View is everything a submission updates besides the results.
type View interface {
	Indicator
	Notifier
	FieldMarker
	ResultPanel
}
