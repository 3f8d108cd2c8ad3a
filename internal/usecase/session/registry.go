package session

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/geolens/internal/domain"
	"github.com/kailas-cloud/geolens/internal/metrics"
)

// Limits bounds the sessions a Registry keeps.
type Limits struct {
	Max     int           // <= 0 means unlimited
	IdleTTL time.Duration // sessions not accessed for this long are evicted, <= 0 disables
}

type entry struct {
	session  *Session
	lastSeen atomic.Int64 // unix nanos
}

// Registry tracks open sessions by ID.
type Registry struct {
	mu        sync.RWMutex
	sessions  map[string]*entry
	limits    Limits
	lastSweep time.Time
	now       func() time.Time
	cfg       Config
	searcher  Searcher
	images    ImageResolver
	logger    *zap.Logger
}

// NewRegistry creates a Registry.
func NewRegistry(cfg Config, searcher Searcher, images ImageResolver, limits Limits, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		sessions: make(map[string]*entry),
		limits:   limits,
		now:      time.Now,
		cfg:      cfg,
		searcher: searcher,
		images:   images,
		logger:   logger,
	}
}

// Create opens a new session. Idle sessions are evicted first when the
// sweep interval has passed or the limit is reached.
func (r *Registry) Create() (*Session, error) {
	r.mu.Lock()
	now := r.now()
	var expired []*Session
	if r.limits.IdleTTL > 0 && (now.Sub(r.lastSweep) >= r.sweepInterval() || r.full()) {
		expired = r.sweepLocked(now)
	}

	if r.full() {
		r.mu.Unlock()
		closeAll(expired)
		return nil, fmt.Errorf("create session: %w", domain.ErrSessionLimit)
	}

	id := uuid.NewString()
	s := New(id, r.cfg, r.searcher, r.images, r.logger)
	e := &entry{session: s}
	e.lastSeen.Store(now.UnixNano())
	r.sessions[id] = e
	metrics.SessionsActive.Set(float64(len(r.sessions)))
	r.mu.Unlock()

	closeAll(expired)
	r.logger.Info("Session created", zap.String("session_id", id))
	return s, nil
}

func (r *Registry) full() bool {
	return r.limits.Max > 0 && len(r.sessions) >= r.limits.Max
}

func (r *Registry) sweepInterval() time.Duration {
	return min(r.limits.IdleTTL/2, time.Minute)
}

// sweepLocked removes idle sessions and returns them for closing outside the lock.
func (r *Registry) sweepLocked(now time.Time) []*Session {
	r.lastSweep = now
	cutoff := now.Add(-r.limits.IdleTTL).UnixNano()
	var expired []*Session
	for id, e := range r.sessions {
		if e.lastSeen.Load() <= cutoff {
			delete(r.sessions, id)
			expired = append(expired, e.session)
			r.logger.Info("Session expired", zap.String("session_id", id))
		}
	}
	if len(expired) > 0 {
		metrics.SessionsActive.Set(float64(len(r.sessions)))
	}
	return expired
}

// Get returns the session with id and marks it as accessed.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %q: %w", id, domain.ErrSessionNotFound)
	}
	e.lastSeen.Store(r.now().UnixNano())
	return e.session, nil
}

// Delete closes and removes the session with id.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	e, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
		metrics.SessionsActive.Set(float64(len(r.sessions)))
	}
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("session %q: %w", id, domain.ErrSessionNotFound)
	}
	e.session.Close()
	r.logger.Info("Session deleted", zap.String("session_id", id))
	return nil
}

// Len returns the number of open sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// CloseAll aborts every in-flight search and forgets all sessions.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	all := make([]*Session, 0, len(r.sessions))
	for _, e := range r.sessions {
		all = append(all, e.session)
	}
	r.sessions = make(map[string]*entry)
	metrics.SessionsActive.Set(0)
	r.mu.Unlock()

	closeAll(all)
}

func closeAll(sessions []*Session) {
	for _, s := range sessions {
		s.Close()
	}
}
