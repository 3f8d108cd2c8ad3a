package geolens

import "time"

// Layer names accepted by SessionService.SetLayer.
const (
	LayerMap       = "map"
	LayerSatellite = "satellite"
)

// Notice levels.
const (
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelError   = "error"
)

// Period is one bound of the capture-time range. Blank fields are filled
// with their minimum for the start bound and their maximum for the end bound.
type Period struct {
	Day    string `json:"day"`
	Month  string `json:"month"`
	Year   string `json:"year"`
	Hour   string `json:"hour"`
	Minute string `json:"minute"`
	Second string `json:"second"`
}

// Inputs are the raw form values of a search.
type Inputs struct {
	Text   string `json:"text"`
	LatMin string `json:"lat_min"`
	LatMax string `json:"lat_max"`
	LonMin string `json:"lon_min"`
	LonMax string `json:"lon_max"`
	TopK   string `json:"top_k"`
	Start  Period `json:"start"`
	End    Period `json:"end"`
}

// Point is a geographic position in degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Card is one result in the side panel.
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

// Notice is a user-visible message.
type Notice struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// TileLayer is a base map tile source.
type TileLayer struct {
	ID          string `json:"id"`
	URLTemplate string `json:"url_template"`
	Attribution string `json:"attribution,omitempty"`
	MaxZoom     int    `json:"max_zoom,omitempty"`
}

// View is the visible map center and zoom.
type View struct {
	Center Point `json:"center"`
	Zoom   int   `json:"zoom"`
}

// Popup is the content of a marker popup.
type Popup struct {
	ImageURL string `json:"image_url"`
	Score    string `json:"score"`
	Date     string `json:"date,omitempty"`
	Time     string `json:"time,omitempty"`
	Coords   string `json:"coords"`
}

// Marker is a result marker on the map.
type Marker struct {
	ID        string `json:"id"`
	Pos       Point  `json:"pos"`
	Popup     Popup  `json:"popup"`
	PopupOpen bool   `json:"popup_open"`
}

// Rectangle is the selection overlay.
type Rectangle struct {
	ID string `json:"id"`
	A  Point  `json:"a"`
	B  Point  `json:"b"`
}

// MapState is the rendered map.
type MapState struct {
	Layers     []TileLayer `json:"layers"`
	View       View        `json:"view"`
	Animated   bool        `json:"animated"`
	Markers    []Marker    `json:"markers"`
	Rectangles []Rectangle `json:"rectangles"`
	Tracking   bool        `json:"tracking"`
}

// Session is the state of one search client.
type Session struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	Inputs     Inputs    `json:"inputs"`
	Invalid    []string  `json:"invalid"` // "start" and/or "end"
	Cards      []Card    `json:"cards"`
	Notices    []Notice  `json:"notices"`
	Loading    bool      `json:"loading"`
	PanelOpen  bool      `json:"panel_open"`
	Layer      string    `json:"layer"`
	Selecting  bool      `json:"selecting"`
	Generation uint64    `json:"generation"`
	Map        MapState  `json:"map"`
}

// Outcome summarizes a finished search.
type Outcome struct {
	Generation uint64 `json:"generation"`
	Received   int    `json:"received"`
	Count      int    `json:"count"`
	Dropped    int    `json:"dropped"`
	Stale      bool   `json:"stale"`
}

// SearchResult is the answer of SessionService.Search.
type SearchResult struct {
	Outcome Outcome `json:"outcome"`
	Session Session `json:"session"`
}

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            `json:"status"` // "ok", "degraded", "error"
	Checks map[string]string `json:"checks"` // component → "ok"/"error"
}
