// Package memstore holds all session state in memory behind a single
// mutex. Sessions do not survive a process restart.
package memstore

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/insightlab/insight-reader/internal/core/domain"
)

type Config struct {
	MaxSessions int
	IdleTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxSessions: 1000,
		IdleTimeout: time.Hour,
	}
}

// Store implements ports.SessionStore. Get hands out a shallow copy of
// the session record; the document behind it is immutable after
// creation, and the cursor is only ever written through UpdateCursor
// or MoveCursor, both of which run under the store mutex.
type Store struct {
	cfg    Config
	logger *slog.Logger

	mu       sync.Mutex
	sessions map[string]*domain.Session

	// now is swapped in tests to drive expiry deterministically.
	now func() time.Time

	// onEvict is called outside any user-visible error path; eviction
	// and expiry are recovery policies, not errors.
	onEvict func(reason string)
}

func New(cfg Config, logger *slog.Logger) *Store {
	def := DefaultConfig()
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = def.MaxSessions
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = def.IdleTimeout
	}
	return &Store{
		cfg:      cfg,
		logger:   logger,
		sessions: make(map[string]*domain.Session),
		now:      time.Now,
		onEvict:  func(string) {},
	}
}

// OnEvict registers a hook invoked with "capacity" or "expired" each
// time a session is removed without an explicit delete.
func (s *Store) OnEvict(hook func(reason string)) {
	if hook != nil {
		s.onEvict = hook
	}
}

func (s *Store) Create(_ context.Context, doc *domain.Document, filename, fileType string, locale domain.Locale) (*domain.Session, error) {
	if doc == nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "create session", fmt.Errorf("nil document"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for len(s.sessions) >= s.cfg.MaxSessions {
		s.evictOldestLocked()
	}

	now := s.now().UTC()
	sess := &domain.Session{
		ID:             uuid.NewString(),
		Filename:       filename,
		FileType:       fileType,
		Language:       locale,
		CreatedAt:      now,
		LastAccessedAt: now,
		CurrentPage:    1,
		Document:       doc,
	}
	s.sessions[sess.ID] = sess

	copied := *sess
	return &copied, nil
}

func (s *Store) Get(_ context.Context, id string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.liveSessionLocked(id)
	if err != nil {
		return nil, err
	}
	sess.LastAccessedAt = s.now().UTC()

	copied := *sess
	return &copied, nil
}

func (s *Store) Touch(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.liveSessionLocked(id)
	if err != nil {
		return err
	}
	sess.LastAccessedAt = s.now().UTC()
	return nil
}

func (s *Store) UpdateCursor(_ context.Context, id string, page int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.liveSessionLocked(id)
	if err != nil {
		return err
	}
	if page < 1 || page > sess.Document.TotalPages {
		return domain.WrapError(domain.ErrInvalidInput, "update cursor", fmt.Errorf("page %d of %d", page, sess.Document.TotalPages))
	}
	sess.CurrentPage = page
	sess.LastAccessedAt = s.now().UTC()
	return nil
}

// MoveCursor resolves a relative cursor move against the live cursor
// and commits it in one critical section. move sees the current page
// and total page count; returning ok=false leaves the cursor
// untouched. The cursor after the call is returned either way, so
// concurrent moves on one session always observe each other.
func (s *Store) MoveCursor(_ context.Context, id string, move func(current, total int) (int, bool)) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.liveSessionLocked(id)
	if err != nil {
		return 0, err
	}
	sess.LastAccessedAt = s.now().UTC()

	total := sess.Document.TotalPages
	page, ok := move(sess.CurrentPage, total)
	if !ok {
		return sess.CurrentPage, nil
	}
	if page < 1 || page > total {
		return sess.CurrentPage, domain.WrapError(domain.ErrInvalidInput, "move cursor", fmt.Errorf("page %d of %d", page, total))
	}
	sess.CurrentPage = page
	return page, nil
}

func (s *Store) Delete(_ context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}

func (s *Store) List(_ context.Context) []domain.SessionSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	summaries := make([]domain.SessionSummary, 0, len(s.sessions))
	for _, sess := range s.sessions {
		if s.expiredLocked(sess) {
			continue
		}
		summaries = append(summaries, domain.SessionSummary{
			SessionID:   sess.ID,
			Filename:    sess.Filename,
			FileType:    sess.FileType,
			TotalPages:  sess.Document.TotalPages,
			CurrentPage: sess.CurrentPage,
			Language:    sess.Language,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].SessionID < summaries[j].SessionID
	})
	return summaries
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// StartSweeper removes expired sessions periodically until ctx is
// cancelled. Expiry is also checked lazily on every access, so the
// sweeper only bounds memory held by abandoned sessions.
func (s *Store) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()
}

func (s *Store) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if s.expiredLocked(sess) {
			delete(s.sessions, id)
			s.onEvict("expired")
			removed++
		}
	}
	if removed > 0 {
		s.logger.Info("swept expired sessions", "removed", removed, "remaining", len(s.sessions))
	}
}

// liveSessionLocked resolves id, lazily discarding the session when it
// has idled past the timeout.
func (s *Store) liveSessionLocked(id string) (*domain.Session, error) {
	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrSessionNotFound, "get session", fmt.Errorf("id %s", id))
	}
	if s.expiredLocked(sess) {
		delete(s.sessions, id)
		s.onEvict("expired")
		return nil, domain.WrapError(domain.ErrSessionNotFound, "get session", fmt.Errorf("id %s expired", id))
	}
	return sess, nil
}

func (s *Store) expiredLocked(sess *domain.Session) bool {
	return s.now().UTC().Sub(sess.LastAccessedAt) > s.cfg.IdleTimeout
}

// evictOldestLocked drops the session with the oldest last access.
// Called when the store is at capacity; admitting the new session
// always wins over keeping the stalest one.
func (s *Store) evictOldestLocked() {
	var oldestID string
	var oldestAt time.Time
	for id, sess := range s.sessions {
		if oldestID == "" || sess.LastAccessedAt.Before(oldestAt) {
			oldestID = id
			oldestAt = sess.LastAccessedAt
		}
	}
	if oldestID == "" {
		return
	}
	delete(s.sessions, oldestID)
	s.onEvict("capacity")
	s.logger.Info("evicted least recently used session", "session_id", oldestID, "last_accessed_at", oldestAt)
}
