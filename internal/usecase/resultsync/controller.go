// Package resultsync keeps map markers and result cards in step with the latest search results.
package resultsync

import (
	"sync"

	"go.uber.org/zap"

	"github.com/kailas-cloud/geolens/internal/domain/geo"
	"github.com/kailas-cloud/geolens/internal/domain/search/result"
	"github.com/kailas-cloud/geolens/internal/domain/surface"
)

// DefaultFocusZoom is the zoom level used when focusing a single result.
const DefaultFocusZoom = 18

// Record links a placed marker to its position. Record i, marker i and card i describe the same result.
type Record struct {
	Marker surface.MarkerID `json:"marker"`
	Lat    float64          `json:"lat"`
	Lon    float64          `json:"lon"`
}

// Card is a clickable list entry for one accepted result.
type Card struct {
	Index    int     `json:"index"`
	ImageURL string  `json:"image_url"`
	Score    string  `json:"score"`
	Date     string  `json:"date,omitempty"`
	Time     string  `json:"time,omitempty"`
	Coords   string  `json:"coords"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
}

// Controller owns the marker list. It is safe for concurrent use.
type Controller struct {
	mu        sync.Mutex
	surface   Surface
	images    ImageResolver
	cards     CardRenderer
	logger    *zap.Logger
	focusZoom int
	records   []Record
}

// New creates a Controller. focusZoom <= 0 selects DefaultFocusZoom; a nil logger discards logs.
func New(s Surface, images ImageResolver, cards CardRenderer, focusZoom int, logger *zap.Logger) *Controller {
	if focusZoom <= 0 {
		focusZoom = DefaultFocusZoom
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		surface:   s,
		images:    images,
		cards:     cards,
		logger:    logger,
		focusZoom: focusZoom,
	}
}

// Replace discards all previous markers and cards, then places one marker and one card per
// result with a usable position. Entries without both coordinates are skipped and logged.
// Returns the number of accepted results.
func (c *Controller) Replace(results []result.Result) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.clearLocked()

	for i, r := range results {
		pos, ok := r.Position()
		if !ok {
			c.logger.Warn("skipping result without coordinates",
				zap.Int("position", i),
				zap.String("image", r.Image()),
			)
			continue
		}
		if !geo.ValidateCoordinates(pos.Lat, pos.Lon) {
			c.logger.Warn("result position out of range",
				zap.Int("position", i),
				zap.Float64("lat", pos.Lat),
				zap.Float64("lon", pos.Lon),
				zap.String("image", r.Image()),
			)
		}

		url := c.images.Resolve(r.Image())
		popup := surface.Popup{
			ImageURL: url,
			Score:    r.ScoreText(),
			Date:     r.DateText(),
			Time:     r.TimeText(),
			Coords:   r.CoordsText(),
		}
		id := c.surface.AddMarker(pos, popup)
		c.surface.OnPopupOpen(id, c.recenter(pos))

		index := len(c.records)
		c.records = append(c.records, Record{Marker: id, Lat: pos.Lat, Lon: pos.Lon})
		c.cards.RenderCard(Card{
			Index:    index,
			ImageURL: url,
			Score:    popup.Score,
			Date:     popup.Date,
			Time:     popup.Time,
			Coords:   popup.Coords,
			Lat:      pos.Lat,
			Lon:      pos.Lon,
		})
	}

	return len(c.records)
}

func (c *Controller) recenter(pos geo.Point) func() {
	return func() {
		c.surface.SetView(pos, c.focusZoom, true)
	}
}

// JumpToMarker centers the map on marker index and opens its popup.
// An out-of-range index is a no-op and returns false.
func (c *Controller) JumpToMarker(index int) bool {
	c.mu.Lock()
	if index < 0 || index >= len(c.records) {
		c.mu.Unlock()
		return false
	}
	rec := c.records[index]
	c.mu.Unlock()

	// Surface calls run unlocked: OpenPopup fires the popup-open handler.
	c.surface.SetView(geo.Point{Lat: rec.Lat, Lon: rec.Lon}, c.focusZoom, true)
	c.surface.OpenPopup(rec.Marker)
	return true
}

// Clear removes every marker and card.
func (c *Controller) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearLocked()
}

func (c *Controller) clearLocked() {
	for _, r := range c.records {
		c.surface.RemoveMarker(r.Marker)
	}
	c.records = c.records[:0]
	c.cards.ClearCards()
}

// Records returns a copy of the marker records in card order.
func (c *Controller) Records() []Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Record, len(c.records))
	copy(out, c.records)
	return out
}

// Len returns the number of placed markers.
func (c *Controller) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}
