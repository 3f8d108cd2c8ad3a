package geolens

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"
)

var errNilInputs = errors.New("geolens: inputs are required")

// SessionService performs actions on one session.
type SessionService struct {
	client *Client
	path   string
}

// Get returns the session state.
func (s *SessionService) Get(ctx context.Context) (sess Session, err error) {
	start := time.Now()
	defer func() { s.client.obs.observe("get_session", start, err) }()

	err = s.client.do(ctx, http.MethodGet, s.path, nil, &sess)
	return sess, err
}

// Delete closes the session and aborts its search in flight.
func (s *SessionService) Delete(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { s.client.obs.observe("delete_session", start, err) }()

	return s.client.do(ctx, http.MethodDelete, s.path, nil, nil)
}

// SetInputs replaces the form values without searching.
func (s *SessionService) SetInputs(ctx context.Context, in *Inputs) (sess Session, err error) {
	start := time.Now()
	defer func() { s.client.obs.observe("set_inputs", start, err) }()

	if in == nil {
		return sess, errNilInputs
	}
	err = s.client.do(ctx, http.MethodPut, s.path+"/inputs", in, &sess)
	return sess, err
}

// Search submits a search. A non-nil in replaces the form values first;
// nil searches with the values already stored in the session.
// A search superseded by a newer one on the same session returns Outcome.Stale.
func (s *SessionService) Search(ctx context.Context, in *Inputs) (res SearchResult, err error) {
	start := time.Now()
	defer func() { s.client.obs.observe("search", start, err) }()

	var body any
	if in != nil {
		body = in
	}
	err = s.client.do(ctx, http.MethodPost, s.path+"/search", body, &res)
	return res, err
}

// FocusMarker centers the map on result index and opens its popup.
// focused is false when index is out of range.
func (s *SessionService) FocusMarker(ctx context.Context, index int) (focused bool, sess Session, err error) {
	start := time.Now()
	defer func() { s.client.obs.observe("focus_marker", start, err) }()

	var resp struct {
		Focused bool    `json:"focused"`
		Session Session `json:"session"`
	}
	err = s.client.do(ctx, http.MethodPost, s.path+"/markers/"+strconv.Itoa(index)+"/focus", nil, &resp)
	return resp.Focused, resp.Session, err
}

// Click sends a map click. modified marks the selection key as held:
// the first modified click starts a rectangle, the second fills the coordinate inputs.
func (s *SessionService) Click(ctx context.Context, lat, lon float64, modified bool) (sess Session, err error) {
	start := time.Now()
	defer func() { s.client.obs.observe("map_click", start, err) }()

	body := struct {
		Lat      float64 `json:"lat"`
		Lon      float64 `json:"lon"`
		Modified bool    `json:"modified"`
	}{lat, lon, modified}
	err = s.client.do(ctx, http.MethodPost, s.path+"/map/click", body, &sess)
	return sess, err
}

// Move sends a pointer position; it stretches the rectangle being drawn.
func (s *SessionService) Move(ctx context.Context, lat, lon float64) (sess Session, err error) {
	start := time.Now()
	defer func() { s.client.obs.observe("map_move", start, err) }()

	err = s.client.do(ctx, http.MethodPost, s.path+"/map/move", Point{Lat: lat, Lon: lon}, &sess)
	return sess, err
}

// CancelSelection abandons the rectangle being drawn.
func (s *SessionService) CancelSelection(ctx context.Context) (sess Session, err error) {
	start := time.Now()
	defer func() { s.client.obs.observe("cancel_selection", start, err) }()

	err = s.client.do(ctx, http.MethodPost, s.path+"/selection/cancel", nil, &sess)
	return sess, err
}

// SetLayer switches the base map to LayerMap or LayerSatellite.
func (s *SessionService) SetLayer(ctx context.Context, layer string) (sess Session, err error) {
	start := time.Now()
	defer func() { s.client.obs.observe("set_layer", start, err) }()

	body := struct {
		Layer string `json:"layer"`
	}{layer}
	err = s.client.do(ctx, http.MethodPut, s.path+"/layer", body, &sess)
	return sess, err
}

// TogglePanel shows or hides the result panel.
func (s *SessionService) TogglePanel(ctx context.Context) (sess Session, err error) {
	start := time.Now()
	defer func() { s.client.obs.observe("toggle_panel", start, err) }()

	err = s.client.do(ctx, http.MethodPost, s.path+"/panel/toggle", nil, &sess)
	return sess, err
}

// DismissNotices clears the session's notices.
func (s *SessionService) DismissNotices(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { s.client.obs.observe("dismiss_notices", start, err) }()

	return s.client.do(ctx, http.MethodDelete, s.path+"/notices", nil, nil)
}
