package cert

import (
	"context"
	"sync"
)

type memoryStore struct {
	mu     sync.Mutex
	byPair map[string]Certificate // learner|course
	byCode map[string]string      // verify_code -> pair key
}

func NewInMemoryStore() Store {
	return &memoryStore{byPair: map[string]Certificate{}, byCode: map[string]string{}}
}

func pairKey(learnerID, courseID string) string { return learnerID + "|" + courseID }

func (m *memoryStore) Create(_ context.Context, c Certificate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := pairKey(c.LearnerID, c.CourseID)
	if _, exists := m.byPair[k]; exists {
		return ErrConflict
	}
	m.byPair[k] = c
	m.byCode[c.VerifyCode] = k
	return nil
}

func (m *memoryStore) Get(_ context.Context, learnerID, courseID string) (Certificate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byPair[pairKey(learnerID, courseID)]
	if !ok {
		return Certificate{}, ErrNotFound
	}
	return c, nil
}

func (m *memoryStore) GetByCode(_ context.Context, verifyCode string) (Certificate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, ok := m.byCode[verifyCode]
	if !ok {
		return Certificate{}, ErrNotFound
	}
	return m.byPair[k], nil
}

func (m *memoryStore) ListByLearner(_ context.Context, learnerID string) ([]Certificate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Certificate
	for _, c := range m.byPair {
		if c.LearnerID == learnerID {
			out = append(out, c)
		}
	}
	return out, nil
}
