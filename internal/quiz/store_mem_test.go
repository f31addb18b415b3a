package quiz_test

import (
	"context"
	"sort"
	"testing"

	"github.com/Aymardds/agrilearn-hub/internal/quiz"
)

func TestListAttemptsOrderAndPaging(t *testing.T) {
	ctx := context.Background()
	store := quiz.NewInMemoryStore()
	q := quiz.Quiz{
		ID: "q1", CourseID: "c1", Parent: quiz.ParentModule, ParentID: "m1",
		PassingScore: 50,
		Questions:    []quiz.Question{{ID: "a1", CorrectKey: "a"}},
	}
	if err := store.PutQuiz(ctx, q); err != nil {
		t.Fatalf("put quiz: %v", err)
	}
	for i := 0; i < 5; i++ {
		if _, err := store.StartAttempt(ctx, "q1", "u1"); err != nil {
			t.Fatalf("start attempt %d: %v", i, err)
		}
	}

	all, err := store.ListAttempts(ctx, quiz.AttemptListOpts{QuizID: "q1", LearnerID: "u1"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("len = %d, want 5", len(all))
	}
	ordered := sort.SliceIsSorted(all, func(i, j int) bool {
		if all[i].StartedAt != all[j].StartedAt {
			return all[i].StartedAt > all[j].StartedAt
		}
		return all[i].ID < all[j].ID
	})
	if !ordered {
		t.Fatalf("attempts not ordered newest-first with id tie-break")
	}

	page, err := store.ListAttempts(ctx, quiz.AttemptListOpts{QuizID: "q1", Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("list page: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("page len = %d, want 2", len(page))
	}
	if page[0].ID != all[2].ID || page[1].ID != all[3].ID {
		t.Fatalf("page does not continue the full ordering")
	}

	empty, err := store.ListAttempts(ctx, quiz.AttemptListOpts{QuizID: "q1", Offset: 10})
	if err != nil {
		t.Fatalf("list past end: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("offset past end returned %d rows", len(empty))
	}
}
