package quiz

import (
	"errors"
	"fmt"
)

// ErrNoQuestions rejects grading a quiz with an empty question list. A quiz
// that cannot be failed must be a configuration error, not a free pass.
var ErrNoQuestions = errors.New("quiz has no questions")

type Result struct {
	Score  int  `json:"score"` // 0..100
	Passed bool `json:"passed"`
}

// Grade scores submitted answers against the quiz. Unanswered questions
// count as incorrect — they stay in the denominator. The score is
// round-half-up, and the passing threshold is inclusive. Pure and
// deterministic for identical inputs.
func Grade(q Quiz, answers map[string]string) (Result, error) {
	if len(q.Questions) == 0 {
		return Result{}, fmt.Errorf("quiz %s: %w", q.ID, ErrNoQuestions)
	}
	correct := 0
	for _, question := range q.Questions {
		if ans, ok := answers[question.ID]; ok && ans == question.CorrectKey && question.CorrectKey != "" {
			correct++
		}
	}
	total := len(q.Questions)
	score := (100*correct + total/2) / total
	return Result{Score: score, Passed: score >= q.PassingScore}, nil
}
