package health

import "context"

// SearchChecker probes the search service.
type SearchChecker interface {
	HealthCheck(ctx context.Context) error
}

// CachePinger checks the response cache store.
type CachePinger interface {
	Ping(ctx context.Context) error
}
