package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/geolens/internal/domain"
	"github.com/kailas-cloud/geolens/internal/domain/datetime"
	"github.com/kailas-cloud/geolens/internal/domain/search/query"
	logpkg "github.com/kailas-cloud/geolens/internal/logger"
)

// Error codes of the JSON error body.
const (
	CodeBadRequest      = "bad_request"
	CodeInvalidBounds   = "invalid_bounds"
	CodeNoCriteria      = "no_criteria"
	CodeSessionNotFound = "session_not_found"
	CodeSessionLimit    = "session_limit"
	CodeUnknownLayer    = "unknown_layer"
	CodeUpstreamError   = "upstream_error"
	CodeRateLimited     = "rate_limited"
	CodeInternalError   = "internal_error"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

func defaultErrorHandlers() []errorHandler {
	return []errorHandler{
		invalidBoundsHandler,
		sentinelHandler(errBadBody, http.StatusBadRequest, CodeBadRequest, ""),
		sentinelHandler(query.ErrNoCriteria, http.StatusUnprocessableEntity, CodeNoCriteria, ""),
		sentinelHandler(domain.ErrSessionNotFound, http.StatusNotFound, CodeSessionNotFound, ""),
		sentinelHandler(domain.ErrSessionLimit, http.StatusTooManyRequests, CodeSessionLimit, ""),
		sentinelHandler(domain.ErrUnknownLayer, http.StatusBadRequest, CodeUnknownLayer, ""),
		sentinelHandler(domain.ErrTransport, http.StatusBadGateway, CodeUpstreamError, "search service unavailable"),
	}
}

// sentinelHandler matches a single sentinel error. An empty msg exposes the error text,
// which for these sentinels never carries internals.
func sentinelHandler(sentinel error, status int, code, msg string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		text := msg
		if text == "" {
			text = clientMessage(err, sentinel)
		}
		writeError(w, status, code, text)
		return true
	}
}

// clientMessage prefers a bind error's own text, then the sentinel's.
func clientMessage(err, sentinel error) string {
	var be *bindError
	if errors.As(err, &be) {
		return be.msg
	}
	return sentinel.Error()
}

// invalidBoundsHandler reports every failing period group with its first invalid field.
func invalidBoundsHandler(w http.ResponseWriter, err error) bool {
	var ibe *query.InvalidBoundsError
	if !errors.As(err, &ibe) {
		return false
	}
	resp := errorResponse{Code: CodeInvalidBounds, Message: ibe.Error()}
	for _, b := range []datetime.Bound{datetime.Start, datetime.End} {
		if fe := ibe.Failed(b); fe != nil {
			resp.Details = append(resp.Details, fieldDetail{
				Group:   b.String(),
				Field:   string(fe.Field),
				Message: fe.Error(),
			})
		}
	}
	writeJSON(w, http.StatusUnprocessableEntity, resp)
	return true
}

func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContext(r.Context())
	for _, h := range s.errorHandlers {
		if h(w, err) {
			log.Debug("request failed", zap.Error(err))
			return
		}
	}
	log.Warn("unhandled error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
