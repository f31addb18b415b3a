package quiz_test

import (
	"context"
	"testing"
	"time"

	"github.com/Aymardds/agrilearn-hub/internal/quiz"
)

func startAttempt(t *testing.T, store quiz.Store) quiz.Attempt {
	t.Helper()
	ctx := context.Background()
	q := quiz.Quiz{
		ID: "q1", CourseID: "c1", Parent: quiz.ParentModule, ParentID: "m1",
		PassingScore: 50,
		Questions: []quiz.Question{
			{ID: "a1", CorrectKey: "a"},
			{ID: "a2", CorrectKey: "b"},
		},
	}
	if err := store.PutQuiz(ctx, q); err != nil {
		t.Fatalf("put quiz: %v", err)
	}
	a, err := store.StartAttempt(ctx, "q1", "u1")
	if err != nil {
		t.Fatalf("start attempt: %v", err)
	}
	return a
}

func TestManualSubmitIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := quiz.NewInMemoryStore()
	sm := quiz.NewSessionManager(store)
	defer sm.Stop()

	a := startAttempt(t, store)
	if _, err := store.SaveAnswers(ctx, a.ID, map[string]string{"a1": "a", "a2": "b"}); err != nil {
		t.Fatalf("save answers: %v", err)
	}

	first, err := sm.Submit(ctx, a.ID)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if first.Status != quiz.StatusSubmitted || first.Score != 100 || !first.Passed {
		t.Fatalf("unexpected result: %+v", first)
	}

	second, err := sm.Submit(ctx, a.ID)
	if err != nil {
		t.Fatalf("repeat submit: %v", err)
	}
	if second.Score != first.Score || second.SubmittedAt != first.SubmittedAt {
		t.Fatalf("repeat submit changed the record: %+v vs %+v", second, first)
	}
}

func TestAutoSubmitOnExpiry(t *testing.T) {
	ctx := context.Background()
	store := quiz.NewInMemoryStore()
	sm := quiz.NewSessionManager(store)
	defer sm.Stop()

	a := startAttempt(t, store)
	if _, err := store.SaveAnswers(ctx, a.ID, map[string]string{"a1": "a"}); err != nil {
		t.Fatalf("save answers: %v", err)
	}

	// Deadline already passed: the timer fires immediately and grades
	// whatever answers were saved.
	expired := a
	expired.Deadline = time.Now().Add(-time.Second).Unix()
	sm.Track(expired)

	deadline := time.Now().Add(2 * time.Second)
	for {
		got, err := store.GetAttempt(ctx, a.ID)
		if err != nil {
			t.Fatalf("get attempt: %v", err)
		}
		if got.Status == quiz.StatusSubmitted {
			if got.Score != 50 || !got.Passed {
				t.Fatalf("auto-submit graded %+v, want score 50 passed", got)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("attempt never auto-submitted")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestSaveAnswersAfterSubmit(t *testing.T) {
	ctx := context.Background()
	store := quiz.NewInMemoryStore()

	a := startAttempt(t, store)
	if _, err := store.Submit(ctx, a.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}
	got, err := store.SaveAnswers(ctx, a.ID, map[string]string{"a1": "a"})
	if err == nil {
		t.Fatalf("save after submit succeeded")
	}
	if got.Status != quiz.StatusSubmitted {
		t.Fatalf("status = %s, want submitted", got.Status)
	}
	if len(got.Answers) != 0 {
		t.Fatalf("late answers were stored: %v", got.Answers)
	}
}

func TestGetQuizStripsAnswerKeys(t *testing.T) {
	ctx := context.Background()
	store := quiz.NewInMemoryStore()
	startAttempt(t, store)

	served, err := store.GetQuiz(ctx, "q1")
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	for _, question := range served.Questions {
		if question.CorrectKey != "" {
			t.Fatalf("question %s leaked its answer key", question.ID)
		}
	}

	full, err := store.GetQuizFull(ctx, "q1")
	if err != nil {
		t.Fatalf("get quiz full: %v", err)
	}
	if full.Questions[0].CorrectKey == "" {
		t.Fatalf("grading copy lost its answer keys")
	}
}
