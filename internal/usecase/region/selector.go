// Package region implements the two-click rectangle selection gesture.
package region

import (
	"sync"

	"github.com/kailas-cloud/geolens/internal/domain/geo"
	"github.com/kailas-cloud/geolens/internal/domain/surface"
)

// State is the gesture state.
type State int

const (
	// Idle waits for the first modified click.
	Idle State = iota
	// Dragging has a first corner and follows the pointer.
	Dragging
)

// String implements fmt.Stringer.
func (s State) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// Selector turns two modified clicks into a bounding box.
// Unmodified clicks never change state. The surface must not invoke
// selector handlers while executing a drawing call.
type Selector struct {
	mu      sync.Mutex
	surface Surface
	sink    BoundsSink
	state   State
	start   geo.Point
	rect    surface.RectangleID
}

// New creates an idle Selector. Call Attach to start listening.
func New(s Surface, sink BoundsSink) *Selector {
	return &Selector{surface: s, sink: sink}
}

// Attach subscribes the selector to the surface click stream.
func (s *Selector) Attach() {
	s.surface.OnClick(s.HandleClick)
}

// HandleClick advances the gesture.
func (s *Selector) HandleClick(ev surface.ClickEvent) {
	if !ev.Modified {
		return
	}

	s.mu.Lock()
	if s.state == Idle {
		s.state = Dragging
		s.start = ev.Pos
		s.rect = s.surface.DrawRectangle(ev.Pos, ev.Pos)
		s.surface.OnPointerMove(s.follow)
		s.mu.Unlock()
		return
	}

	bbox := geo.FromCorners(s.start, ev.Pos)
	s.teardown()
	s.mu.Unlock()

	s.sink.SetBounds(bbox)
}

func (s *Selector) follow(p geo.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Dragging {
		return
	}
	s.surface.UpdateRectangle(s.rect, s.start, p)
}

// Cancel abandons an in-progress selection without touching the bounds.
func (s *Selector) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Dragging {
		s.teardown()
	}
}

// State returns the current gesture state.
func (s *Selector) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dragging reports whether a first corner has been placed.
func (s *Selector) Dragging() bool {
	return s.State() == Dragging
}

// teardown removes the overlay and returns to Idle. Callers hold s.mu.
func (s *Selector) teardown() {
	s.surface.OffPointerMove()
	s.surface.RemoveRectangle(s.rect)
	s.state = Idle
	s.start = geo.Point{}
	s.rect = ""
}
