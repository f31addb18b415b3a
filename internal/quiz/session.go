package quiz

import (
	"context"
	"errors"
	"sync"
	"time"
)

// SessionManager tracks in-flight timed attempts and fires the timer-driven
// auto-submission when a deadline expires before a manual submit. The store's
// status-guarded finalize makes submission idempotent across processes; the
// manager adds the in-process timer and cancels it once any submission wins.
type SessionManager struct {
	store Store

	mu     sync.Mutex
	timers map[string]*time.Timer
}

func NewSessionManager(store Store) *SessionManager {
	return &SessionManager{store: store, timers: map[string]*time.Timer{}}
}

// Track schedules auto-submission for a timed attempt. Untimed attempts are
// ignored. Tracking the same attempt twice replaces the previous timer.
func (m *SessionManager) Track(a Attempt) {
	if a.Deadline == 0 || a.Status != StatusInProgress {
		return
	}
	d := time.Until(time.Unix(a.Deadline, 0))
	if d < 0 {
		d = 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.timers[a.ID]; ok {
		t.Stop()
	}
	id := a.ID
	m.timers[id] = time.AfterFunc(d, func() {
		// Whatever answers are saved at expiry get graded; a concurrent
		// manual submit simply wins the status guard instead.
		_, _ = m.submit(context.Background(), id)
	})
}

// Submit performs a manual submission and cancels any pending auto-submit.
// Calling it on an already-submitted attempt returns the stored result
// without error: repeat submits are no-ops.
func (m *SessionManager) Submit(ctx context.Context, attemptID string) (Attempt, error) {
	return m.submit(ctx, attemptID)
}

func (m *SessionManager) submit(ctx context.Context, attemptID string) (Attempt, error) {
	a, err := m.store.Submit(ctx, attemptID)
	if err != nil && !errors.Is(err, ErrAlreadySubmitted) {
		return Attempt{}, err
	}
	m.mu.Lock()
	if t, ok := m.timers[attemptID]; ok {
		t.Stop()
		delete(m.timers, attemptID)
	}
	m.mu.Unlock()
	return a, nil
}

// Stop cancels all pending timers (shutdown path).
func (m *SessionManager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, t := range m.timers {
		t.Stop()
		delete(m.timers, id)
	}
}
