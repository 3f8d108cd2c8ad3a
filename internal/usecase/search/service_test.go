package search

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/kailas-cloud/geolens/internal/domain"
	"github.com/kailas-cloud/geolens/internal/domain/datetime"
	"github.com/kailas-cloud/geolens/internal/domain/search/query"
	"github.com/kailas-cloud/geolens/internal/domain/search/result"
)

// --- Mocks ---

type mockSearcher struct {
	mu      sync.Mutex
	results []result.Result
	err     error
	queries []query.Query
}

func (m *mockSearcher) Search(_ context.Context, q query.Query) ([]result.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, q)
	return m.results, m.err
}

type mockApplier struct {
	mu       sync.Mutex
	applied  [][]result.Result
	accepted int // -1: accept all
}

func (m *mockApplier) Replace(rs []result.Result) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applied = append(m.applied, rs)
	if m.accepted < 0 {
		return len(rs)
	}
	return m.accepted
}

type mockView struct {
	mu        sync.Mutex
	shows     int
	hides     int
	notices   []Notice
	invalid   []datetime.Bound
	clears    int
	panelOpen bool
}

func (v *mockView) ShowLoading()                 { v.mu.Lock(); v.shows++; v.mu.Unlock() }
func (v *mockView) HideLoading()                 { v.mu.Lock(); v.hides++; v.mu.Unlock() }
func (v *mockView) Notify(n Notice)              { v.mu.Lock(); v.notices = append(v.notices, n); v.mu.Unlock() }
func (v *mockView) ClearInvalid()                { v.mu.Lock(); v.invalid = nil; v.clears++; v.mu.Unlock() }
func (v *mockView) MarkInvalid(b datetime.Bound) { v.mu.Lock(); v.invalid = append(v.invalid, b); v.mu.Unlock() }
func (v *mockView) ShowResults()                 { v.mu.Lock(); v.panelOpen = true; v.mu.Unlock() }

func (v *mockView) balanced(t *testing.T) {
	t.Helper()
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.shows != v.hides {
		t.Errorf("loading shown %d times, hidden %d times", v.shows, v.hides)
	}
}

func ptr(v float64) *float64 { return &v }

func hits(n int) []result.Result {
	out := make([]result.Result, n)
	for i := range out {
		out[i] = result.New(ptr(float64(i)), ptr(float64(i)), 1, "img", "", nil, nil)
	}
	return out
}

func newService(s Searcher) (*Service, *mockApplier, *mockView) {
	a := &mockApplier{accepted: -1}
	v := &mockView{}
	return New(s, a, v, nil), a, v
}

// --- Tests ---

func TestSubmit_Success(t *testing.T) {
	searcher := &mockSearcher{results: hits(3)}
	svc, applier, view := newService(searcher)

	out, err := svc.Submit(context.Background(), query.Inputs{Text: " forest ", TopK: "7"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Count != 3 || out.Received != 3 || out.Stale || out.Generation != 1 {
		t.Errorf("outcome = %+v", out)
	}
	if q := searcher.queries[0]; q.Text != "forest" || q.TopK != 7 {
		t.Errorf("query = %+v", q)
	}
	if len(applier.applied) != 1 {
		t.Errorf("applied %d times", len(applier.applied))
	}
	if !view.panelOpen {
		t.Error("result panel not shown")
	}
	if view.shows != 1 {
		t.Errorf("loading shown %d times", view.shows)
	}
	view.balanced(t)
}

func TestSubmit_InvalidBounds(t *testing.T) {
	searcher := &mockSearcher{}
	svc, applier, view := newService(searcher)

	_, err := svc.Submit(context.Background(), query.Inputs{
		Text:  "x",
		Start: datetime.Fields{Year: "2024", Month: "13"},
		End:   datetime.Fields{Year: "abc"},
	})

	var ibe *query.InvalidBoundsError
	if !errors.As(err, &ibe) {
		t.Fatalf("expected InvalidBoundsError, got %v", err)
	}
	if len(searcher.queries) != 0 || len(applier.applied) != 0 {
		t.Error("no request must be sent")
	}
	if len(view.invalid) != 2 {
		t.Errorf("invalid groups = %v", view.invalid)
	}
	if len(view.notices) != 2 || view.notices[0].Level != Warning {
		t.Errorf("notices = %+v", view.notices)
	}
	if view.shows != 0 {
		t.Error("loading must not be shown for validation failures")
	}
	view.balanced(t)
}

func TestSubmit_OnlyFailingGroupMarked(t *testing.T) {
	svc, _, view := newService(&mockSearcher{})
	_, _ = svc.Submit(context.Background(), query.Inputs{End: datetime.Fields{Year: "2024", Day: "40"}})

	if len(view.invalid) != 1 || view.invalid[0] != datetime.End {
		t.Errorf("invalid = %v", view.invalid)
	}
}

func TestSubmit_ClearsInvalidStyling(t *testing.T) {
	svc, _, view := newService(&mockSearcher{results: hits(1)})
	_, _ = svc.Submit(context.Background(), query.Inputs{Start: datetime.Fields{Year: "0"}})
	if len(view.invalid) != 1 {
		t.Fatalf("invalid = %v", view.invalid)
	}
	if _, err := svc.Submit(context.Background(), query.Inputs{Text: "ok"}); err != nil {
		t.Fatal(err)
	}
	if len(view.invalid) != 0 || view.clears != 2 {
		t.Errorf("invalid = %v clears = %d", view.invalid, view.clears)
	}
}

func TestSubmit_NoCriteria(t *testing.T) {
	searcher := &mockSearcher{}
	svc, _, view := newService(searcher)

	_, err := svc.Submit(context.Background(), query.Inputs{LatMin: "1", LatMax: "2"})
	if !errors.Is(err, query.ErrNoCriteria) {
		t.Fatalf("expected ErrNoCriteria, got %v", err)
	}
	if len(searcher.queries) != 0 {
		t.Error("no request must be sent")
	}
	if len(view.notices) != 1 || view.notices[0].Message != MsgNoCriteria {
		t.Errorf("notices = %+v", view.notices)
	}
}

func TestSubmit_TransportError(t *testing.T) {
	svc, applier, view := newService(&mockSearcher{err: errors.New("connection refused")})

	_, err := svc.Submit(context.Background(), query.Inputs{Text: "x"})
	if !errors.Is(err, domain.ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
	if len(applier.applied) != 0 {
		t.Error("results must not change on failure")
	}
	if len(view.notices) != 1 || view.notices[0].Message != MsgFailed {
		t.Errorf("notices = %+v", view.notices)
	}
	view.balanced(t)
}

func TestSubmit_UpstreamStatusKeepsType(t *testing.T) {
	svc, _, _ := newService(&mockSearcher{err: domain.NewUpstreamStatus(503, "503 Service Unavailable")})

	_, err := svc.Submit(context.Background(), query.Inputs{Text: "x"})
	var use *domain.UpstreamStatusError
	if !errors.As(err, &use) || use.StatusCode != 503 {
		t.Fatalf("expected UpstreamStatusError, got %v", err)
	}
}

func TestSubmit_EmptyIsNotAnError(t *testing.T) {
	svc, applier, view := newService(&mockSearcher{results: []result.Result{}})

	out, err := svc.Submit(context.Background(), query.Inputs{Text: "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Count != 0 {
		t.Errorf("count = %d", out.Count)
	}
	// Previous results are still replaced.
	if len(applier.applied) != 1 {
		t.Error("empty response must clear previous results")
	}
	if len(view.notices) != 1 || view.notices[0].Message != MsgNothingFound || view.notices[0].Level != Info {
		t.Errorf("notices = %+v", view.notices)
	}
	if view.panelOpen {
		t.Error("panel must stay closed")
	}
}

func TestSubmit_Dropped(t *testing.T) {
	searcher := &mockSearcher{results: hits(4)}
	a := &mockApplier{accepted: 3}
	svc := New(searcher, a, &mockView{}, nil)

	out, err := svc.Submit(context.Background(), query.Inputs{Text: "x"})
	if err != nil {
		t.Fatal(err)
	}
	if out.Dropped != 1 || out.Count != 3 {
		t.Errorf("outcome = %+v", out)
	}
}

// blockingSearcher returns its first response only after release is closed and ignores cancellation.
type blockingSearcher struct {
	calls   chan struct{}
	release chan struct{}
	first   []result.Result
	second  []result.Result
	mu      sync.Mutex
	n       int
	ctxs    []context.Context
}

func (b *blockingSearcher) Search(ctx context.Context, _ query.Query) ([]result.Result, error) {
	b.mu.Lock()
	b.n++
	n := b.n
	b.ctxs = append(b.ctxs, ctx)
	b.mu.Unlock()

	if n == 1 {
		b.calls <- struct{}{}
		<-b.release
		return b.first, nil
	}
	return b.second, nil
}

func TestSubmit_StaleResponseDiscarded(t *testing.T) {
	bs := &blockingSearcher{
		calls:   make(chan struct{}),
		release: make(chan struct{}),
		first:   hits(5),
		second:  hits(2),
	}
	svc, applier, view := newService(bs)

	type res struct {
		out Outcome
		err error
	}
	firstDone := make(chan res)
	go func() {
		out, err := svc.Submit(context.Background(), query.Inputs{Text: "first"})
		firstDone <- res{out, err}
	}()
	<-bs.calls

	second, err := svc.Submit(context.Background(), query.Inputs{Text: "second"})
	if err != nil {
		t.Fatal(err)
	}
	if second.Stale || second.Count != 2 {
		t.Errorf("second = %+v", second)
	}

	// The first request context is cancelled by the newer submission.
	if bs.ctxs[0].Err() == nil {
		t.Error("first request context not cancelled")
	}

	close(bs.release)
	first := <-firstDone
	if first.err != nil || !first.out.Stale {
		t.Errorf("first = %+v, %v", first.out, first.err)
	}

	if len(applier.applied) != 1 || len(applier.applied[0]) != 2 {
		t.Errorf("applied = %d batches", len(applier.applied))
	}
	view.balanced(t)
}

func TestSubmit_CancelledByNewerIsStaleNotError(t *testing.T) {
	started := make(chan struct{})
	searcher := searcherFunc(func(ctx context.Context, q query.Query) ([]result.Result, error) {
		if q.Text == "slow" {
			close(started)
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return hits(1), nil
	})
	svc, _, view := newService(searcher)

	done := make(chan error)
	go func() {
		out, err := svc.Submit(context.Background(), query.Inputs{Text: "slow"})
		if err == nil && !out.Stale {
			err = errors.New("expected stale outcome")
		}
		done <- err
	}()
	<-started

	if _, err := svc.Submit(context.Background(), query.Inputs{Text: "fast"}); err != nil {
		t.Fatal(err)
	}
	if err := <-done; err != nil {
		t.Errorf("superseded submission: %v", err)
	}
	for _, n := range view.notices {
		if n.Message == MsgFailed {
			t.Error("superseded request must not report a failure")
		}
	}
	view.balanced(t)
}

func TestCancel(t *testing.T) {
	started := make(chan struct{})
	searcher := searcherFunc(func(ctx context.Context, _ query.Query) ([]result.Result, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	})
	svc, applier, _ := newService(searcher)

	done := make(chan Outcome)
	go func() {
		out, _ := svc.Submit(context.Background(), query.Inputs{Text: "x"})
		done <- out
	}()
	<-started
	svc.Cancel()

	if out := <-done; !out.Stale {
		t.Errorf("outcome = %+v", out)
	}
	if len(applier.applied) != 0 {
		t.Error("cancelled request applied")
	}
	if svc.Generation() != 2 {
		t.Errorf("generation = %d", svc.Generation())
	}
}

type searcherFunc func(ctx context.Context, q query.Query) ([]result.Result, error)

func (f searcherFunc) Search(ctx context.Context, q query.Query) ([]result.Result, error) {
	return f(ctx, q)
}
