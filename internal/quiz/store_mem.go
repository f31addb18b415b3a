package quiz

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryStore struct {
	mu       sync.Mutex
	quizzes  map[string]Quiz
	attempts map[string]Attempt
}

func NewInMemoryStore() Store {
	return &memoryStore{
		quizzes:  map[string]Quiz{},
		attempts: map[string]Attempt{},
	}
}

func (m *memoryStore) PutQuiz(_ context.Context, q Quiz) error {
	if len(q.Questions) == 0 {
		return fmt.Errorf("quiz %s: %w", q.ID, ErrNoQuestions)
	}
	switch q.Parent {
	case ParentLesson, ParentModule, ParentFinal:
	default:
		return fmt.Errorf("quiz %s: invalid parent type %q", q.ID, q.Parent)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quizzes[q.ID] = q
	return nil
}

func (m *memoryStore) GetQuiz(ctx context.Context, id string) (Quiz, error) {
	q, err := m.GetQuizFull(ctx, id)
	if err != nil {
		return Quiz{}, err
	}
	qs := make([]Question, len(q.Questions))
	copy(qs, q.Questions)
	for i := range qs {
		qs[i].CorrectKey = ""
	}
	q.Questions = qs
	return q, nil
}

func (m *memoryStore) GetQuizFull(_ context.Context, id string) (Quiz, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.quizzes[id]
	if !ok {
		return Quiz{}, fmt.Errorf("quiz %s: %w", id, ErrNotFound)
	}
	return q, nil
}

func (m *memoryStore) GetByParent(_ context.Context, parent ParentType, parentID string) (Quiz, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, q := range m.quizzes {
		if q.Parent == parent && q.ParentID == parentID {
			return q, nil
		}
	}
	return Quiz{}, fmt.Errorf("quiz for %s %s: %w", parent, parentID, ErrNotFound)
}

func (m *memoryStore) StartAttempt(ctx context.Context, quizID, learnerID string) (Attempt, error) {
	q, err := m.GetQuizFull(ctx, quizID)
	if err != nil {
		return Attempt{}, err
	}
	now := time.Now()
	a := Attempt{
		ID:        uuid.NewString(),
		QuizID:    q.ID,
		LearnerID: learnerID,
		Status:    StatusInProgress,
		Answers:   map[string]string{},
		StartedAt: now.Unix(),
	}
	if q.TimeLimitMin > 0 {
		a.Deadline = now.Add(time.Duration(q.TimeLimitMin) * time.Minute).Unix()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts[a.ID] = a
	return a, nil
}

func (m *memoryStore) SaveAnswers(_ context.Context, attemptID string, answers map[string]string) (Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[attemptID]
	if !ok {
		return Attempt{}, fmt.Errorf("attempt %s: %w", attemptID, ErrNotFound)
	}
	if a.Status == StatusSubmitted {
		return a, ErrAlreadySubmitted
	}
	merged := make(map[string]string, len(a.Answers)+len(answers))
	for k, v := range a.Answers {
		merged[k] = v
	}
	for k, v := range answers {
		merged[k] = v
	}
	a.Answers = merged
	m.attempts[attemptID] = a
	return a, nil
}

func (m *memoryStore) Submit(_ context.Context, attemptID string) (Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[attemptID]
	if !ok {
		return Attempt{}, fmt.Errorf("attempt %s: %w", attemptID, ErrNotFound)
	}
	if a.Status == StatusSubmitted {
		return a, ErrAlreadySubmitted
	}
	q, ok := m.quizzes[a.QuizID]
	if !ok {
		return Attempt{}, fmt.Errorf("quiz %s: %w", a.QuizID, ErrNotFound)
	}
	res, err := Grade(q, a.Answers)
	if err != nil {
		return Attempt{}, err
	}
	a.Score = res.Score
	a.Passed = res.Passed
	a.Status = StatusSubmitted
	a.SubmittedAt = time.Now().Unix()
	m.attempts[attemptID] = a
	return a, nil
}

func (m *memoryStore) GetAttempt(_ context.Context, id string) (Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[id]
	if !ok {
		return Attempt{}, fmt.Errorf("attempt %s: %w", id, ErrNotFound)
	}
	return a, nil
}

func (m *memoryStore) ListAttempts(_ context.Context, opts AttemptListOpts) ([]Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Attempt
	for _, a := range m.attempts {
		if opts.QuizID != "" && a.QuizID != opts.QuizID {
			continue
		}
		if opts.LearnerID != "" && a.LearnerID != opts.LearnerID {
			continue
		}
		if opts.Status != "" && a.Status != opts.Status {
			continue
		}
		out = append(out, a)
	}
	// newest first with id tie-break, same as the SQL store
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartedAt != out[j].StartedAt {
			return out[i].StartedAt > out[j].StartedAt
		}
		return out[i].ID < out[j].ID
	})
	limit := opts.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if opts.Offset > 0 {
		if opts.Offset >= len(out) {
			return nil, nil
		}
		out = out[opts.Offset:]
	}
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}
