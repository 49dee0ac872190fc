package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/pacs-worklist-api/internal/models"
	"github.com/noah-isme/pacs-worklist-api/pkg/debounce"
)

type sessionPersister interface {
	Load(ctx context.Context, id string) (*models.FilterState, error)
	Save(ctx context.Context, id string, state models.FilterState) error
	Clear(ctx context.Context, id string) error
}

type rowExpansion struct {
	uid    string
	state  models.RowState
	cancel context.CancelFunc
}

// Session is the server-held state of one open worklist. Every field below mu is guarded by it.
type Session struct {
	id string

	mu            sync.Mutex
	filters       *models.FilterState
	generation    uint64
	rows          []models.Study
	total         int
	windowFetched bool
	expanded      map[int]*rowExpansion
	series        *SeriesCache
	notifications []models.Notification
	lastSeen      time.Time

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	persist *debounce.Debouncer
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// resetRows drops the fetched window and collapses every row. Callers hold mu.
func (s *Session) resetRows() {
	for _, exp := range s.expanded {
		exp.cancel()
	}
	s.expanded = make(map[int]*rowExpansion)
	s.rows = nil
	s.total = 0
	s.windowFetched = false
	s.generation++
}

func (s *Session) querying() bool {
	for _, exp := range s.expanded {
		if exp.state == models.RowExpanding {
			return true
		}
	}
	return false
}

func (s *Session) notify(level models.NotificationLevel, message string, at time.Time) models.Notification {
	n := models.Notification{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   message,
		CreatedAt: at,
	}
	s.mu.Lock()
	s.notifications = append(s.notifications, n)
	s.mu.Unlock()
	return n
}

func (s *Session) drain() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.notifications
	s.notifications = nil
	if out == nil {
		out = []models.Notification{}
	}
	return out
}

// SessionManagerConfig sizes per-session resources.
type SessionManagerConfig struct {
	SeriesCacheSize int
	PersistDebounce time.Duration
	IdleTTL         time.Duration
}

// SessionManager owns every live Session and their teardown.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	store   sessionPersister
	cfg     SessionManagerConfig
	metrics *MetricsService
	logger  *zap.Logger
	now     func() time.Time
}

// NewSessionManager constructs a SessionManager.
func NewSessionManager(store sessionPersister, cfg SessionManagerConfig, metrics *MetricsService, logger *zap.Logger) *SessionManager {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 12 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionManager{
		sessions: make(map[string]*Session),
		store:    store,
		cfg:      cfg,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// Get returns the live session, creating it from persisted state when needed.
func (m *SessionManager) Get(ctx context.Context, id string) (*Session, error) {
	if s, ok := m.Lookup(id); ok {
		return s, nil
	}

	persisted, err := m.store.Load(ctx, id)
	if err != nil {
		m.logger.Warn("failed to load persisted worklist state", zap.String("session_id", id), zap.Error(err))
		persisted = nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	sctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		id:       id,
		filters:  persisted,
		expanded: make(map[int]*rowExpansion),
		series:   NewSeriesCache(m.cfg.SeriesCacheSize),
		lastSeen: m.now(),
		ctx:      sctx,
		cancel:   cancel,
		persist:  debounce.New(m.cfg.PersistDebounce),
	}
	m.sessions[id] = s
	m.metrics.SetActiveSessions(len(m.sessions))
	return s, nil
}

// Lookup returns an existing session without creating one.
func (m *SessionManager) Lookup(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if ok {
		s.mu.Lock()
		s.lastSeen = m.now()
		s.mu.Unlock()
	}
	return s, ok
}

// Len reports the number of live sessions.
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *SessionManager) schedulePersist(s *Session) {
	if s.filters == nil {
		return
	}
	state := *s.filters
	state.Modalities = append([]string{}, s.filters.Modalities...)
	id := s.id
	s.persist.Call(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := m.store.Save(ctx, id, state); err != nil {
			m.logger.Warn("failed to persist worklist state", zap.String("session_id", id), zap.Error(err))
		}
	})
}

// End tears the session down and deletes its persisted state.
func (m *SessionManager) End(ctx context.Context, id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.metrics.SetActiveSessions(len(m.sessions))
	m.mu.Unlock()

	if ok {
		m.teardown(s, false)
	}
	return m.store.Clear(ctx, id)
}

// Sweep tears down sessions idle for longer than the configured TTL and returns how many
// were removed. Their persisted state is kept.
func (m *SessionManager) Sweep() int {
	cutoff := m.now().Add(-m.cfg.IdleTTL)

	m.mu.Lock()
	var stale []*Session
	for id, s := range m.sessions {
		s.mu.Lock()
		idle := s.lastSeen.Before(cutoff)
		s.mu.Unlock()
		if idle {
			stale = append(stale, s)
			delete(m.sessions, id)
		}
	}
	m.metrics.SetActiveSessions(len(m.sessions))
	m.mu.Unlock()

	for _, s := range stale {
		m.teardown(s, true)
	}
	return len(stale)
}

// Run sweeps idle sessions every interval until ctx is done.
func (m *SessionManager) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				m.logger.Info("evicted idle worklist sessions", zap.Int("count", n))
			}
		}
	}
}

// Shutdown tears down every session, flushing pending persists.
func (m *SessionManager) Shutdown() {
	m.mu.Lock()
	all := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	m.sessions = make(map[string]*Session)
	m.metrics.SetActiveSessions(0)
	m.mu.Unlock()

	for _, s := range all {
		m.teardown(s, true)
	}
}

func (m *SessionManager) teardown(s *Session, flush bool) {
	s.mu.Lock()
	s.cancel()
	for _, exp := range s.expanded {
		exp.cancel()
	}
	s.mu.Unlock()

	s.wg.Wait()
	if flush {
		s.persist.Flush()
	}
	s.persist.Stop()
}
