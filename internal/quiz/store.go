package quiz

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrAlreadySubmitted is informational: Submit on a submitted attempt
	// returns the stored attempt alongside it, so callers can treat the
	// second call as a no-op.
	ErrAlreadySubmitted = errors.New("attempt already submitted")
)

type AttemptListOpts struct {
	QuizID    string
	LearnerID string
	Status    string
	Limit     int
	Offset    int
}

// Store persists quizzes and attempts. GetQuiz strips correct answers for
// serving to learners; grading paths use GetQuizFull.
type Store interface {
	PutQuiz(ctx context.Context, q Quiz) error
	GetQuiz(ctx context.Context, id string) (Quiz, error)
	GetQuizFull(ctx context.Context, id string) (Quiz, error)
	// GetByParent resolves the quiz gating a lesson, module or course
	// final. ErrNotFound when the parent has none.
	GetByParent(ctx context.Context, parent ParentType, parentID string) (Quiz, error)

	StartAttempt(ctx context.Context, quizID, learnerID string) (Attempt, error)
	SaveAnswers(ctx context.Context, attemptID string, answers map[string]string) (Attempt, error)
	// Submit grades and finalizes at most once. A submitted attempt is
	// returned as-is with ErrAlreadySubmitted.
	Submit(ctx context.Context, attemptID string) (Attempt, error)
	GetAttempt(ctx context.Context, id string) (Attempt, error)
	ListAttempts(ctx context.Context, opts AttemptListOpts) ([]Attempt, error)
}
