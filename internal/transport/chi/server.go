// Package chi exposes search sessions over HTTP with a chi router.
package chi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	logpkg "github.com/kailas-cloud/geolens/internal/logger"
	healthuc "github.com/kailas-cloud/geolens/internal/usecase/health"
	"github.com/kailas-cloud/geolens/internal/usecase/search"
	"github.com/kailas-cloud/geolens/internal/usecase/session"
)

// Server serves the session API.
type Server struct {
	sessions      *session.Registry
	health        *healthuc.Service
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(sessions *session.Registry, health *healthuc.Service) *Server {
	return &Server{
		sessions:      sessions,
		health:        health,
		errorHandlers: defaultErrorHandlers(),
	}
}

// Routes mounts the API handlers on r.
// throttle, when non-nil, guards session creation and search.
func (s *Server) Routes(r chi.Router, throttle func(http.Handler) http.Handler) {
	var guarded []func(http.Handler) http.Handler
	if throttle != nil {
		guarded = append(guarded, throttle)
	}

	r.Get("/health", s.HealthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.With(guarded...).Post("/sessions", s.CreateSession)
	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Get("/", s.GetSession)
		r.Delete("/", s.DeleteSession)
		r.Put("/inputs", s.SetInputs)
		r.With(guarded...).Post("/search", s.Search)
		r.Post("/markers/{index}/focus", s.FocusMarker)
		r.Post("/map/click", s.MapClick)
		r.Post("/map/move", s.MapMove)
		r.Post("/selection/cancel", s.CancelSelection)
		r.Put("/layer", s.SetLayer)
		r.Post("/panel/toggle", s.TogglePanel)
		r.Delete("/notices", s.DismissNotices)
	})
}

// CreateSession handles POST /sessions.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Create()
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	w.Header().Set("Location", "/sessions/"+sess.ID())
	writeJSON(w, http.StatusCreated, sess.Snapshot())
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(chi.URLParam(r, "id")); err != nil {
		s.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetInputs handles PUT /sessions/{id}/inputs.
func (s *Server) SetInputs(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	req, _, err := decodeJSON[inputsRequest](r, false)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	sess.SetInputs(req.toInputs())
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

// Search handles POST /sessions/{id}/search. A body replaces the form inputs before submitting.
// A submission superseded by a newer one answers 200 with outcome.stale set.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	req, present, err := decodeJSON[inputsRequest](r, true)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	ctx := logpkg.With(r.Context(), zap.String("session_id", sess.ID()))
	var out search.Outcome
	if present {
		out, err = sess.SearchWith(ctx, req.toInputs())
	} else {
		out, err = sess.Search(ctx)
	}
	if err != nil {
		s.handleError(w, r.WithContext(ctx), err)
		return
	}
	logpkg.FromContext(ctx).Debug("search finished",
		zap.Uint64("generation", out.Generation),
		zap.Int("count", out.Count),
		zap.Bool("stale", out.Stale),
	)
	writeJSON(w, http.StatusOK, searchResponse{Outcome: out, Session: sess.Snapshot()})
}

// FocusMarker handles POST /sessions/{id}/markers/{index}/focus.
func (s *Server) FocusMarker(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		s.handleError(w, r, badBody("marker index must be an integer"))
		return
	}
	focused := sess.JumpToMarker(index)
	writeJSON(w, http.StatusOK, focusResponse{Focused: focused, Session: sess.Snapshot()})
}

// MapClick handles POST /sessions/{id}/map/click.
func (s *Server) MapClick(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	req, _, err := decodeJSON[clickRequest](r, false)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	sess.Click(req.toEvent())
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

// MapMove handles POST /sessions/{id}/map/move.
func (s *Server) MapMove(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	req, _, err := decodeJSON[pointRequest](r, false)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	sess.PointerMove(req.toPoint())
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

// CancelSelection handles POST /sessions/{id}/selection/cancel.
func (s *Server) CancelSelection(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.CancelSelection()
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

// SetLayer handles PUT /sessions/{id}/layer.
func (s *Server) SetLayer(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	req, _, err := decodeJSON[layerRequest](r, false)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if err := sess.SwitchLayer(req.Layer); err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

// TogglePanel handles POST /sessions/{id}/panel/toggle.
func (s *Server) TogglePanel(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.TogglePanel()
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

// DismissNotices handles DELETE /sessions/{id}/notices.
func (s *Server) DismissNotices(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.DismissNotices()
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /health. Degraded still answers 200.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

// session resolves the {id} parameter, writing the error response on failure.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.handleError(w, r, err)
		return nil, false
	}
	return sess, true
}
