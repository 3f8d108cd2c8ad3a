// Package surface defines the capabilities the search client needs from a map widget.
// Consumers depend on the narrow interfaces; Surface is the facade a widget adapter implements.
package surface

import "github.com/kailas-cloud/geolens/internal/domain/geo"

// Surface combines all map capabilities.
//
//nolint:interfacebloat // facade by design -- consumers use narrow sub-interfaces (ISP)
type Surface interface {
	LayerManager
	Viewport
	MarkerManager
	RectangleDrawer
	EventSource
}

// MarkerID is an opaque handle of a placed marker.
type MarkerID string

// RectangleID is an opaque handle of a rectangle overlay.
type RectangleID string

// Layer is a tile layer definition.
type Layer struct {
	ID          string `json:"id"`
	URLTemplate string `json:"url_template"`
	Attribution string `json:"attribution,omitempty"`
	MaxZoom     int    `json:"max_zoom,omitempty"`
}

// View is the visible map center and zoom.
type View struct {
	Center geo.Point `json:"center"`
	Zoom   int       `json:"zoom"`
}

// Popup is the payload shown when a marker is opened. Date and Time are optional.
type Popup struct {
	ImageURL string `json:"image_url"`
	Score    string `json:"score"`
	Date     string `json:"date,omitempty"`
	Time     string `json:"time,omitempty"`
	Coords   string `json:"coords"`
}

// ClickEvent is a pointer click on the map. Modified is true while the selection key is held.
type ClickEvent struct {
	Pos      geo.Point `json:"pos"`
	Modified bool      `json:"modified"`
}

// LayerManager toggles tile layers.
type LayerManager interface {
	AddLayer(l Layer)
	RemoveLayer(l Layer)
	HasLayer(l Layer) bool
}

// Viewport moves the map.
type Viewport interface {
	SetView(center geo.Point, zoom int, animate bool)
}

// MarkerManager handles the marker lifecycle.
type MarkerManager interface {
	AddMarker(pos geo.Point, popup Popup) MarkerID
	RemoveMarker(id MarkerID)
	OpenPopup(id MarkerID)
	OnPopupOpen(id MarkerID, fn func())
}

// RectangleDrawer draws the selection overlay.
type RectangleDrawer interface {
	DrawRectangle(a, b geo.Point) RectangleID
	UpdateRectangle(id RectangleID, a, b geo.Point)
	RemoveRectangle(id RectangleID)
}

// EventSource delivers pointer events.
type EventSource interface {
	OnClick(fn func(ClickEvent))
	OnPointerMove(fn func(geo.Point))
	OffPointerMove()
}
