// Package layers switches the map between the street and satellite base layers.
package layers

import (
	"fmt"
	"sync"

	"github.com/kailas-cloud/geolens/internal/domain"
	"github.com/kailas-cloud/geolens/internal/domain/surface"
)

// Mode names the active base layer.
type Mode string

const (
	// Map is the street map.
	Map Mode = "map"
	// Satellite is aerial imagery.
	Satellite Mode = "satellite"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case Map, Satellite:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownLayer, s)
	}
}

// Default tile layers.
var (
	DefaultMapLayer = surface.Layer{
		ID:          "osm",
		URLTemplate: "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png",
		Attribution: "&copy; OpenStreetMap contributors",
		MaxZoom:     19,
	}
	DefaultSatelliteLayer = surface.Layer{
		ID:          "esri-world-imagery",
		URLTemplate: "https://server.arcgisonline.com/ArcGIS/rest/services/World_Imagery/MapServer/tile/{z}/{y}/{x}",
		Attribution: "Tiles &copy; Esri",
		MaxZoom:     19,
	}
)

// Switcher keeps exactly one base layer on the map.
type Switcher struct {
	mu        sync.Mutex
	layers    surface.LayerManager
	base      surface.Layer
	satellite surface.Layer
	active    Mode
}

// New creates a Switcher. Zero-valued layers fall back to the defaults.
func New(lm surface.LayerManager, base, satellite surface.Layer) *Switcher {
	if base.ID == "" {
		base = DefaultMapLayer
	}
	if satellite.ID == "" {
		satellite = DefaultSatelliteLayer
	}
	return &Switcher{layers: lm, base: base, satellite: satellite, active: Map}
}

// Init adds the base layer.
func (s *Switcher) Init() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layers.AddLayer(s.base)
	s.active = Map
}

// SwitchToSatellite replaces the street map with imagery.
func (s *Switcher) SwitchToSatellite() {
	s.swap(s.base, s.satellite, Satellite)
}

// SwitchToMap replaces imagery with the street map.
func (s *Switcher) SwitchToMap() {
	s.swap(s.satellite, s.base, Map)
}

// Switch selects the layer for m.
func (s *Switcher) Switch(m Mode) error {
	switch m {
	case Map:
		s.SwitchToMap()
	case Satellite:
		s.SwitchToSatellite()
	default:
		return fmt.Errorf("%w: %q", domain.ErrUnknownLayer, m)
	}
	return nil
}

func (s *Switcher) swap(from, to surface.Layer, m Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.layers.HasLayer(from) {
		s.layers.RemoveLayer(from)
	}
	if !s.layers.HasLayer(to) {
		s.layers.AddLayer(to)
	}
	s.active = m
}

// Active returns the current mode.
func (s *Switcher) Active() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}
