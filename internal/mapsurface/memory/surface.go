// Package memory is a map surface that keeps its state in memory.
// A browser frontend renders it from Snapshot; tests drive it with Click and PointerMove.
package memory

import (
	"fmt"
	"slices"
	"sync"

	"github.com/kailas-cloud/geolens/internal/domain/geo"
	"github.com/kailas-cloud/geolens/internal/domain/surface"
)

// Compile-time check: Surface implements surface.Surface.
var _ surface.Surface = (*Surface)(nil)

// Marker is the recorded state of a placed marker.
type Marker struct {
	ID        surface.MarkerID `json:"id"`
	Pos       geo.Point        `json:"pos"`
	Popup     surface.Popup    `json:"popup"`
	PopupOpen bool             `json:"popup_open"`
}

// Rectangle is the recorded state of the selection overlay.
type Rectangle struct {
	ID surface.RectangleID `json:"id"`
	A  geo.Point           `json:"a"`
	B  geo.Point           `json:"b"`
}

// Snapshot is a copy of the surface state.
type Snapshot struct {
	Layers     []surface.Layer `json:"layers"`
	View       surface.View    `json:"view"`
	Animated   bool            `json:"animated"`
	Markers    []Marker        `json:"markers"`
	Rectangles []Rectangle     `json:"rectangles"`
	Tracking   bool            `json:"tracking"`
}

// Surface is a concurrency-safe in-memory map. Handlers run outside the lock,
// so they may call back into the surface.
type Surface struct {
	mu         sync.Mutex
	layers     []surface.Layer
	view       surface.View
	animated   bool
	markers    []*Marker
	popupFns   map[surface.MarkerID]func()
	rects      []*Rectangle
	clickFns   []func(surface.ClickEvent)
	moveFn     func(geo.Point)
	nextMarker int
	nextRect   int
}

// New creates a surface centered on initial.
func New(initial surface.View) *Surface {
	return &Surface{
		view:     initial,
		popupFns: make(map[surface.MarkerID]func()),
	}
}

// AddLayer adds l unless a layer with the same ID is present.
func (s *Surface) AddLayer(l surface.Layer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.layerIndex(l.ID) < 0 {
		s.layers = append(s.layers, l)
	}
}

// RemoveLayer removes the layer with l's ID.
func (s *Surface) RemoveLayer(l surface.Layer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.layerIndex(l.ID); i >= 0 {
		s.layers = slices.Delete(s.layers, i, i+1)
	}
}

// HasLayer reports whether a layer with l's ID belongs to the map.
func (s *Surface) HasLayer(l surface.Layer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layerIndex(l.ID) >= 0
}

func (s *Surface) layerIndex(id string) int {
	return slices.IndexFunc(s.layers, func(x surface.Layer) bool { return x.ID == id })
}

// SetView moves the map.
func (s *Surface) SetView(center geo.Point, zoom int, animate bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = surface.View{Center: center, Zoom: zoom}
	s.animated = animate
}

// AddMarker places a marker and returns its handle.
func (s *Surface) AddMarker(pos geo.Point, popup surface.Popup) surface.MarkerID {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextMarker++
	id := surface.MarkerID(fmt.Sprintf("m%d", s.nextMarker))
	s.markers = append(s.markers, &Marker{ID: id, Pos: pos, Popup: popup})
	return id
}

// RemoveMarker removes a marker and its popup handler. Unknown handles are ignored.
func (s *Surface) RemoveMarker(id surface.MarkerID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markers = slices.DeleteFunc(s.markers, func(m *Marker) bool { return m.ID == id })
	delete(s.popupFns, id)
}

// OpenPopup opens the popup of id, closing any other, then fires its popup-open handler.
func (s *Surface) OpenPopup(id surface.MarkerID) {
	s.mu.Lock()
	found := false
	for _, m := range s.markers {
		m.PopupOpen = m.ID == id
		found = found || m.PopupOpen
	}
	fn := s.popupFns[id]
	s.mu.Unlock()

	if found && fn != nil {
		fn()
	}
}

// OnPopupOpen registers the popup-open handler of id.
func (s *Surface) OnPopupOpen(id surface.MarkerID, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.popupFns[id] = fn
}

// DrawRectangle adds a rectangle overlay spanning a and b.
func (s *Surface) DrawRectangle(a, b geo.Point) surface.RectangleID {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextRect++
	id := surface.RectangleID(fmt.Sprintf("r%d", s.nextRect))
	s.rects = append(s.rects, &Rectangle{ID: id, A: a, B: b})
	return id
}

// UpdateRectangle moves the corners of a rectangle.
func (s *Surface) UpdateRectangle(id surface.RectangleID, a, b geo.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rects {
		if r.ID == id {
			r.A, r.B = a, b
		}
	}
}

// RemoveRectangle removes a rectangle overlay.
func (s *Surface) RemoveRectangle(id surface.RectangleID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rects = slices.DeleteFunc(s.rects, func(r *Rectangle) bool { return r.ID == id })
}

// OnClick subscribes to clicks.
func (s *Surface) OnClick(fn func(surface.ClickEvent)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clickFns = append(s.clickFns, fn)
}

// OnPointerMove installs the pointer-move handler, replacing any previous one.
func (s *Surface) OnPointerMove(fn func(geo.Point)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.moveFn = fn
}

// OffPointerMove detaches the pointer-move handler.
func (s *Surface) OffPointerMove() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.moveFn = nil
}

// Click dispatches a click to subscribers.
func (s *Surface) Click(ev surface.ClickEvent) {
	s.mu.Lock()
	fns := slices.Clone(s.clickFns)
	s.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// PointerMove dispatches a pointer move to the installed handler, if any.
func (s *Surface) PointerMove(p geo.Point) {
	s.mu.Lock()
	fn := s.moveFn
	s.mu.Unlock()

	if fn != nil {
		fn(p)
	}
}

// Snapshot returns a copy of the current state.
func (s *Surface) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Layers:     slices.Clone(s.layers),
		View:       s.view,
		Animated:   s.animated,
		Markers:    make([]Marker, len(s.markers)),
		Rectangles: make([]Rectangle, len(s.rects)),
		Tracking:   s.moveFn != nil,
	}
	for i, m := range s.markers {
		snap.Markers[i] = *m
	}
	for i, r := range s.rects {
		snap.Rectangles[i] = *r
	}
	if snap.Layers == nil {
		snap.Layers = []surface.Layer{}
	}
	return snap
}
