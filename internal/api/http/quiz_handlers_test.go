package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	apihttp "github.com/Aymardds/agrilearn-hub/internal/api/http"
	"github.com/Aymardds/agrilearn-hub/internal/quiz"
	"github.com/Aymardds/agrilearn-hub/internal/rbac"
)

func TestGetAttemptOwnership(t *testing.T) {
	ctx := context.Background()
	store := quiz.NewInMemoryStore()
	err := store.PutQuiz(ctx, quiz.Quiz{
		ID: "q1", CourseID: "c1", Parent: quiz.ParentModule, ParentID: "m1",
		PassingScore: 50,
		Questions:    []quiz.Question{{ID: "a1", CorrectKey: "a"}},
	})
	if err != nil {
		t.Fatalf("put quiz: %v", err)
	}
	a, err := store.StartAttempt(ctx, "q1", "owner")
	if err != nil {
		t.Fatalf("start attempt: %v", err)
	}

	router := chi.NewRouter()
	router.Get("/attempts/{attemptID}", apihttp.GetAttemptHandler(store))

	tests := []struct {
		name       string
		sub, role  string
		wantStatus int
	}{
		{"owner sees own attempt", "owner", "student", http.StatusOK},
		{"other learner forbidden", "intruder", "student", http.StatusForbidden},
		{"instructor sees any", "staff", "instructor", http.StatusOK},
		{"admin sees any", "root", "admin", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/attempts/"+a.ID, nil)
			reqCtx := rbac.WithSubject(req.Context(), tt.sub)
			reqCtx = rbac.WithRole(reqCtx, tt.role)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req.WithContext(reqCtx))
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
