// Package session holds the state of one interactive search client and the registry of open sessions.
package session

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/geolens/internal/domain/datetime"
	"github.com/kailas-cloud/geolens/internal/domain/geo"
	"github.com/kailas-cloud/geolens/internal/domain/search/query"
	"github.com/kailas-cloud/geolens/internal/domain/surface"
	"github.com/kailas-cloud/geolens/internal/mapsurface/memory"
	"github.com/kailas-cloud/geolens/internal/usecase/layers"
	"github.com/kailas-cloud/geolens/internal/usecase/region"
	"github.com/kailas-cloud/geolens/internal/usecase/resultsync"
	"github.com/kailas-cloud/geolens/internal/usecase/search"
)

// Config describes the initial map of a new session.
type Config struct {
	InitialView    surface.View
	FocusZoom      int
	BaseLayer      surface.Layer
	SatelliteLayer surface.Layer
}

// Snapshot is a consistent copy of the session state.
type Snapshot struct {
	ID         string            `json:"id"`
	CreatedAt  time.Time         `json:"created_at"`
	Inputs     query.Inputs      `json:"inputs"`
	Invalid    []string          `json:"invalid"`
	Cards      []resultsync.Card `json:"cards"`
	Notices    []search.Notice   `json:"notices"`
	Loading    bool              `json:"loading"`
	PanelOpen  bool              `json:"panel_open"`
	Layer      layers.Mode       `json:"layer"`
	Selecting  bool              `json:"selecting"`
	Generation uint64            `json:"generation"`
	Map        memory.Snapshot   `json:"map"`
}

// Session is one client: form inputs, map, results and feedback.
// Form and feedback state is guarded by mu; the collaborators carry their own locks.
// Session never holds mu while calling into a collaborator.
type Session struct {
	id        string
	createdAt time.Time

	surface  *memory.Surface
	results  *resultsync.Controller
	selector *region.Selector
	layers   *layers.Switcher
	search   *search.Service

	mu        sync.Mutex
	inputs    query.Inputs
	invalid   map[datetime.Bound]bool
	cards     []resultsync.Card
	notices   []search.Notice
	loading   int
	panelOpen bool
}

// New wires a session around a fresh in-memory map.
func New(id string, cfg Config, searcher Searcher, images ImageResolver, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("session_id", id))

	s := &Session{
		id:        id,
		createdAt: time.Now().UTC(),
		surface:   memory.New(cfg.InitialView),
		invalid:   make(map[datetime.Bound]bool),
	}
	s.results = resultsync.New(s.surface, images, s, cfg.FocusZoom, logger)
	s.selector = region.New(s.surface, s)
	s.layers = layers.New(s.surface, cfg.BaseLayer, cfg.SatelliteLayer)
	s.search = search.New(searcher, s.results, s, logger)

	s.layers.Init()
	s.selector.Attach()
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// SetInputs replaces the form values.
func (s *Session) SetInputs(in query.Inputs) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs = in
}

// Inputs returns the form values.
func (s *Session) Inputs() query.Inputs {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inputs
}

// Search submits the current form values.
func (s *Session) Search(ctx context.Context) (search.Outcome, error) {
	return s.search.Submit(ctx, s.Inputs())
}

// SearchWith replaces the form values with in and submits exactly those values.
func (s *Session) SearchWith(ctx context.Context, in query.Inputs) (search.Outcome, error) {
	s.SetInputs(in)
	return s.search.Submit(ctx, in)
}

// JumpToMarker focuses result index. Out-of-range indices are ignored.
func (s *Session) JumpToMarker(index int) bool {
	return s.results.JumpToMarker(index)
}

// Click forwards a map click.
func (s *Session) Click(ev surface.ClickEvent) {
	s.surface.Click(ev)
}

// PointerMove forwards a pointer move.
func (s *Session) PointerMove(p geo.Point) {
	s.surface.PointerMove(p)
}

// CancelSelection abandons a rectangle selection in progress.
func (s *Session) CancelSelection() {
	s.selector.Cancel()
}

// SwitchLayer selects the base layer by name.
func (s *Session) SwitchLayer(name string) error {
	m, err := layers.ParseMode(name)
	if err != nil {
		return err
	}
	return s.layers.Switch(m)
}

// TogglePanel flips the result panel and returns the new visibility.
func (s *Session) TogglePanel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panelOpen = !s.panelOpen
	return s.panelOpen
}

// DismissNotices clears user-visible messages.
func (s *Session) DismissNotices() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = nil
}

// Close aborts the search in flight.
func (s *Session) Close() {
	s.search.Cancel()
}

// Snapshot returns the session state.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		ID:         s.id,
		CreatedAt:  s.createdAt,
		Layer:      s.layers.Active(),
		Selecting:  s.selector.Dragging(),
		Generation: s.search.Generation(),
		Map:        s.surface.Snapshot(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	snap.Inputs = s.inputs
	snap.Invalid = []string{}
	for _, b := range []datetime.Bound{datetime.Start, datetime.End} {
		if s.invalid[b] {
			snap.Invalid = append(snap.Invalid, b.String())
		}
	}
	snap.Cards = slices.Clone(s.cards)
	if snap.Cards == nil {
		snap.Cards = []resultsync.Card{}
	}
	snap.Notices = slices.Clone(s.notices)
	if snap.Notices == nil {
		snap.Notices = []search.Notice{}
	}
	snap.Loading = s.loading > 0
	snap.PanelOpen = s.panelOpen
	return snap
}

// SetBounds writes a completed rectangle selection into the coordinate fields.
func (s *Session) SetBounds(b geo.BoundingBox) {
	if !b.Complete() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs.LatMin = geo.FormatBound(*b.LatMin)
	s.inputs.LatMax = geo.FormatBound(*b.LatMax)
	s.inputs.LonMin = geo.FormatBound(*b.LonMin)
	s.inputs.LonMax = geo.FormatBound(*b.LonMax)
}

// ClearCards implements resultsync.CardRenderer.
func (s *Session) ClearCards() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cards = nil
}

// RenderCard implements resultsync.CardRenderer.
func (s *Session) RenderCard(c resultsync.Card) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cards = append(s.cards, c)
}

// ShowLoading implements search.Indicator.
func (s *Session) ShowLoading() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading++
}

// HideLoading implements search.Indicator.
func (s *Session) HideLoading() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loading > 0 {
		s.loading--
	}
}

// Notify implements search.Notifier.
func (s *Session) Notify(n search.Notice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = append(s.notices, n)
}

// ClearInvalid implements search.FieldMarker.
func (s *Session) ClearInvalid() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.invalid)
}

// MarkInvalid implements search.FieldMarker.
func (s *Session) MarkInvalid(b datetime.Bound) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalid[b] = true
}

// ShowResults implements search.ResultPanel.
func (s *Session) ShowResults() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panelOpen = true
}
