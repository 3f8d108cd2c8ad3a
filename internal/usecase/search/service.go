// Package search implements the search submission boundary.
package search

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/kailas-cloud/geolens/internal/domain"
	"github.com/kailas-cloud/geolens/internal/domain/datetime"
	"github.com/kailas-cloud/geolens/internal/domain/search/query"
	"github.com/kailas-cloud/geolens/internal/metrics"
)

// Level is the severity of a notice.
type Level string

const (
	// Info is a neutral notice.
	Info Level = "info"
	// Warning asks the user to correct their input.
	Warning Level = "warning"
	// Error reports a failed request.
	Error Level = "error"
)

// Notice is a user-visible message.
type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// User-facing messages.
const (
	MsgNoCriteria   = "Enter a search text, fill in all four coordinates or set a period."
	MsgFailed       = "Search failed. Check the connection and try again."
	MsgNothingFound = "Nothing found."
)

// Outcome describes a finished submission.
type Outcome struct {
	Generation uint64 `json:"generation"`
	Received   int    `json:"received"`
	Count      int    `json:"count"`
	Dropped    int    `json:"dropped"`
	Stale      bool   `json:"stale"`
}

// Service validates inputs, runs the search and applies the latest response.
// A submission cancels the one in flight; responses of superseded submissions are discarded.
type Service struct {
	searcher Searcher
	results  ResultApplier
	view     View
	logger   *zap.Logger

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

// New creates a search service. A nil logger discards logs.
func New(searcher Searcher, results ResultApplier, view View, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{searcher: searcher, results: results, view: view, logger: logger}
}

// Submit runs one search for in. Validation failures are reported to the view and
// returned as *query.InvalidBoundsError or query.ErrNoCriteria. Transport failures wrap
// domain.ErrTransport. A superseded submission returns Outcome.Stale and no error.
func (s *Service) Submit(ctx context.Context, in query.Inputs) (Outcome, error) {
	s.view.ClearInvalid()

	q, err := query.Build(in)
	if err != nil {
		return Outcome{}, s.rejected(err)
	}

	gen, reqCtx, done := s.begin(ctx)
	defer done()

	s.view.ShowLoading()
	defer s.view.HideLoading()

	res, err := s.searcher.Search(reqCtx, q)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		metrics.SearchSubmissionsTotal.WithLabelValues("stale").Inc()
		s.logger.Debug("Discarding stale search response",
			zap.Uint64("generation", gen),
			zap.Uint64("latest", s.gen),
			zap.Error(err),
		)
		return Outcome{Generation: gen, Stale: true}, nil
	}

	if err != nil {
		metrics.SearchSubmissionsTotal.WithLabelValues("error").Inc()
		s.logger.Error("Search request failed", zap.Uint64("generation", gen), zap.Error(err))
		s.view.Notify(Notice{Level: Error, Message: MsgFailed})
		if !errors.Is(err, domain.ErrTransport) {
			err = fmt.Errorf("%w: %w", domain.ErrTransport, err)
		}
		return Outcome{Generation: gen}, fmt.Errorf("search: %w", err)
	}

	accepted := s.results.Replace(res)
	out := Outcome{
		Generation: gen,
		Received:   len(res),
		Count:      accepted,
		Dropped:    len(res) - accepted,
	}
	if out.Dropped > 0 {
		metrics.SearchResultsDroppedTotal.Add(float64(out.Dropped))
	}

	if accepted == 0 {
		metrics.SearchSubmissionsTotal.WithLabelValues("empty").Inc()
		s.view.Notify(Notice{Level: Info, Message: MsgNothingFound})
		return out, nil
	}

	metrics.SearchSubmissionsTotal.WithLabelValues("ok").Inc()
	s.view.ShowResults()
	return out, nil
}

// rejected reports a validation failure to the view.
func (s *Service) rejected(err error) error {
	var ibe *query.InvalidBoundsError
	switch {
	case errors.As(err, &ibe):
		metrics.SearchSubmissionsTotal.WithLabelValues("invalid").Inc()
		for _, b := range []datetime.Bound{datetime.Start, datetime.End} {
			if ibe.Failed(b) != nil {
				s.view.MarkInvalid(b)
			}
		}
		for _, msg := range ibe.Messages() {
			s.view.Notify(Notice{Level: Warning, Message: msg})
		}
	case errors.Is(err, query.ErrNoCriteria):
		metrics.SearchSubmissionsTotal.WithLabelValues("no_criteria").Inc()
		s.view.Notify(Notice{Level: Warning, Message: MsgNoCriteria})
	}
	return err
}

// begin stamps a new generation and cancels the request in flight.
// done releases the request context.
func (s *Service) begin(ctx context.Context) (uint64, context.Context, func()) {
	reqCtx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	gen := s.gen
	s.cancel = cancel
	s.mu.Unlock()

	return gen, reqCtx, func() {
		s.mu.Lock()
		if s.gen == gen {
			s.cancel = nil
		}
		s.mu.Unlock()
		cancel()
	}
}

// Generation returns the latest issued generation.
func (s *Service) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// Cancel aborts the request in flight, if any. Its response will be discarded.
func (s *Service) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
		s.gen++
	}
}
