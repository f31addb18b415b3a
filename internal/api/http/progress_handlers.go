package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Aymardds/agrilearn-hub/internal/progress"
	"github.com/Aymardds/agrilearn-hub/internal/rbac"
	syncx "github.com/Aymardds/agrilearn-hub/internal/sync"
)

// CompleteLessonHandler marks a lesson complete for the caller and returns
// the recomputed course snapshot. Re-completing is a state no-op.
func CompleteLessonHandler(store progress.Store, events *syncx.EventRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := rbac.SubjectFromContext(r.Context())
		lessonID := chi.URLParam(r, "lessonID")
		snap, err := store.MarkLessonComplete(r.Context(), sub, lessonID)
		if err != nil {
			fail(w, err)
			return
		}
		_ = events.Emit(r.Context(), syncx.TypeLessonCompleted, sub+"|"+lessonID, snap)
		writeJSON(w, http.StatusOK, snap)
	}
}

func CourseProgressHandler(store progress.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := rbac.RoleFromContext(r.Context())
		sub := rbac.SubjectFromContext(r.Context())
		courseID := chi.URLParam(r, "courseID")

		learnerID := r.URL.Query().Get("learner_id")
		// without progress:view-all, callers only see their own progress
		if learnerID == "" || !perms.Has(role, "progress:view-all") {
			learnerID = sub
		}
		snap, err := store.CourseProgress(r.Context(), learnerID, courseID)
		if err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}
