package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Aymardds/agrilearn-hub/internal/course"
	"github.com/Aymardds/agrilearn-hub/internal/progress"
	"github.com/Aymardds/agrilearn-hub/internal/quiz"
	"github.com/Aymardds/agrilearn-hub/internal/rbac"
	syncx "github.com/Aymardds/agrilearn-hub/internal/sync"
	"github.com/Aymardds/agrilearn-hub/internal/unlock"
)

func CreateQuizHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			CourseID     string          `json:"course_id"`
			Parent       quiz.ParentType `json:"parent_type"`
			ParentID     string          `json:"parent_id"`
			Title        string          `json:"title"`
			PassingScore int             `json:"passing_score"`
			TimeLimitMin int             `json:"time_limit_min"`
			Questions    []quiz.Question `json:"questions"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.Parent == quiz.ParentFinal {
			req.ParentID = req.CourseID
		}
		q := quiz.Quiz{
			ID:           uuid.NewString(),
			CourseID:     req.CourseID,
			Parent:       req.Parent,
			ParentID:     req.ParentID,
			Title:        req.Title,
			PassingScore: req.PassingScore,
			TimeLimitMin: req.TimeLimitMin,
			Questions:    req.Questions,
		}
		if err := store.PutQuiz(r.Context(), q); err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, q)
	}
}

// GetQuizHandler serves the learner-safe view (no correct keys).
func GetQuizHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := store.GetQuiz(r.Context(), chi.URLParam(r, "quizID"))
		if err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, q)
	}
}

// StartAttemptHandler runs the unlock policy before opening an attempt.
// A malformed course tree or missing prerequisite keeps the quiz locked.
func StartAttemptHandler(quizzes quiz.Store, courses course.Store, prog progress.Store, sessions *quiz.SessionManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := rbac.SubjectFromContext(r.Context())
		quizID := chi.URLParam(r, "quizID")

		q, err := quizzes.GetQuizFull(r.Context(), quizID)
		if err != nil {
			fail(w, err)
			return
		}
		open, err := quizUnlocked(r, q, quizzes, courses, prog, sub)
		if err != nil {
			fail(w, err)
			return
		}
		if !open {
			http.Error(w, "quiz is locked: prerequisites not met", http.StatusForbidden)
			return
		}
		a, err := quizzes.StartAttempt(r.Context(), quizID, sub)
		if err != nil {
			fail(w, err)
			return
		}
		sessions.Track(a)
		writeJSON(w, http.StatusCreated, a)
	}
}

func quizUnlocked(r *http.Request, q quiz.Quiz, quizzes quiz.Store, courses course.Store, prog progress.Store, learnerID string) (bool, error) {
	structure, err := courses.GetStructure(r.Context(), q.CourseID)
	if err != nil {
		if errors.Is(err, course.ErrMalformed) {
			return false, nil // fail closed, never expose ungated content
		}
		return false, err
	}
	snap, err := prog.CourseProgress(r.Context(), learnerID, q.CourseID)
	if err != nil {
		return false, err
	}
	completed, err := prog.CompletedLessons(r.Context(), learnerID, q.CourseID)
	if err != nil {
		return false, err
	}
	engine := unlock.NewEngine(structure)

	switch q.Parent {
	case quiz.ParentLesson:
		return completed[q.ParentID], nil
	case quiz.ParentModule:
		return engine.CanStartModuleQuiz(q.ParentID, snap, completed), nil
	case quiz.ParentFinal:
		states := map[string]unlock.ModuleQuizState{}
		for _, m := range structure.Modules {
			mq, err := quizzes.GetByParent(r.Context(), quiz.ParentModule, m.ID)
			if errors.Is(err, quiz.ErrNotFound) {
				continue
			}
			if err != nil {
				return false, err
			}
			attempts, err := quizzes.ListAttempts(r.Context(), quiz.AttemptListOpts{QuizID: mq.ID, LearnerID: learnerID})
			if err != nil {
				return false, err
			}
			states[m.ID] = unlock.ModuleQuizState{HasQuiz: true, Passed: quiz.AnyPassed(attempts)}
		}
		return engine.CanStartFinalAssessment(snap, states), nil
	default:
		return false, nil
	}
}

func SaveAnswersHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "attemptID")
		var answers map[string]string
		if err := json.NewDecoder(r.Body).Decode(&answers); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		a, err := store.SaveAnswers(r.Context(), id, answers)
		if errors.Is(err, quiz.ErrAlreadySubmitted) {
			writeJSON(w, http.StatusOK, a)
			return
		}
		if err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

// SubmitAttemptHandler finalizes an attempt. Submitting twice (or racing the
// countdown auto-submit) returns the stored result instead of an error.
func SubmitAttemptHandler(sessions *quiz.SessionManager, events *syncx.EventRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "attemptID")
		a, err := sessions.Submit(r.Context(), id)
		if err != nil {
			fail(w, err)
			return
		}
		_ = events.Emit(r.Context(), syncx.TypeQuizSubmitted, a.LearnerID+"|"+a.QuizID, a)
		writeJSON(w, http.StatusOK, a)
	}
}

// GetAttemptHandler returns one attempt. Learners only see their own;
// attempt:view-all roles see any.
func GetAttemptHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := store.GetAttempt(r.Context(), chi.URLParam(r, "attemptID"))
		if err != nil {
			fail(w, err)
			return
		}
		sub := rbac.SubjectFromContext(r.Context())
		role := rbac.RoleFromContext(r.Context())
		if a.LearnerID != sub && !perms.Has(role, "attempt:view-all") {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

// GET /attempts?quiz_id=...&learner_id=...&status=...&limit=50&offset=0
// Callers without attempt:view-all are scoped to their own attempts.
func ListAttemptsHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := rbac.RoleFromContext(r.Context())
		sub := rbac.SubjectFromContext(r.Context())

		learnerID := r.URL.Query().Get("learner_id")
		if !perms.Has(role, "attempt:view-all") {
			learnerID = sub
		}
		list, err := store.ListAttempts(r.Context(), quiz.AttemptListOpts{
			QuizID:    r.URL.Query().Get("quiz_id"),
			LearnerID: learnerID,
			Status:    r.URL.Query().Get("status"),
			Limit:     parseIntDefault(r.URL.Query().Get("limit"), 50),
			Offset:    parseIntDefault(r.URL.Query().Get("offset"), 0),
		})
		if err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}
