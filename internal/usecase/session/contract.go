package session

import (
	"github.com/kailas-cloud/geolens/internal/usecase/resultsync"
	"github.com/kailas-cloud/geolens/internal/usecase/search"
)

// Searcher sends queries to the search service.
type Searcher = search.Searcher

// ImageResolver maps raw image references to proxy URLs.
type ImageResolver = resultsync.ImageResolver
