// Package repository keeps uploaded sessions and their analysis results.
package repository

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/okian/tackline/internal/domain/model"
	"github.com/okian/tackline/pkg/metrics"
)

// Store provides read/write access to sessions.
type Store interface {
	// Create adds a pending session. Returns ErrExists on a duplicate ID.
	Create(ctx context.Context, s model.Session) error

	// Complete attaches an analysis and marks the session done.
	Complete(ctx context.Context, id string, a model.Analysis) error

	// Fail marks the session failed with reason.
	Fail(ctx context.Context, id string, reason string) error

	// Get returns a session. Returns ErrNotFound if id is unknown.
	Get(ctx context.Context, id string) (model.Session, error)

	// List returns up to n sessions, newest first.
	List(ctx context.Context, n int) ([]model.Session, error)

	// Delete removes a session. Returns ErrNotFound if id is unknown.
	Delete(ctx context.Context, id string) error

	// Count returns the number of stored sessions.
	Count(ctx context.Context) int
}

// MemoryStore is an in-memory Store. Sessions are kept in creation order.
type MemoryStore struct {
	mu          sync.RWMutex
	byID        map[string]*model.Session
	order       []string
	maxSessions int
	now         func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		byID: make(map[string]*model.Session),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) Create(ctx context.Context, sess model.Session) error {
	defer observe("create", time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[sess.ID]; ok {
		return fmt.Errorf("%w: %s", ErrExists, sess.ID)
	}
	if s.maxSessions > 0 && len(s.order) >= s.maxSessions {
		if !s.evictLocked() {
			metrics.RecordErrorByComponent("repository", "full")
			return ErrFull
		}
	}

	if sess.Status == "" {
		sess.Status = model.StatusPending
	}
	s.byID[sess.ID] = &sess
	s.order = append(s.order, sess.ID)
	metrics.UpdateStoredSessions(len(s.order))
	return nil
}

// evictLocked drops the oldest session that is no longer pending.
func (s *MemoryStore) evictLocked() bool {
	for i, id := range s.order {
		if s.byID[id].Status == model.StatusPending {
			continue
		}
		delete(s.byID, id)
		s.order = slices.Delete(s.order, i, i+1)
		metrics.RecordStoreEviction()
		return true
	}
	return false
}

func (s *MemoryStore) Complete(ctx context.Context, id string, a model.Analysis) error {
	return s.finish("complete", id, func(sess *model.Session) {
		sess.Status = model.StatusDone
		sess.Analysis = &a
	})
}

func (s *MemoryStore) Fail(ctx context.Context, id, reason string) error {
	return s.finish("fail", id, func(sess *model.Session) {
		sess.Status = model.StatusFailed
		sess.Error = reason
	})
}

func (s *MemoryStore) finish(op, id string, apply func(*model.Session)) error {
	defer observe(op, time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if sess.Status != model.StatusPending {
		return fmt.Errorf("%w: %s", ErrFinished, id)
	}
	apply(sess)
	sess.CompletedAt = s.now()
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (model.Session, error) {
	defer observe("get", time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.byID[id]
	if !ok {
		return model.Session{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return *sess, nil
}

func (s *MemoryStore) List(ctx context.Context, n int) ([]model.Session, error) {
	defer observe("list", time.Now())

	if n <= 0 {
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Session, 0, min(n, len(s.order)))
	for i := len(s.order) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, *s.byID[s.order[i]])
	}
	return out, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	defer observe("delete", time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.byID, id)
	s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })
	metrics.UpdateStoredSessions(len(s.order))
	return nil
}

func (s *MemoryStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

func observe(op string, start time.Time) {
	metrics.RecordStoreLatency(op, float64(time.Since(start).Microseconds())/1000)
}
