package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Aymardds/agrilearn-hub/internal/progress"
	"github.com/Aymardds/agrilearn-hub/internal/rbac"
	syncx "github.com/Aymardds/agrilearn-hub/internal/sync"
)

// EnrollHandler creates the (learner, course) enrollment. Enrolling twice
// returns the existing record; the storage constraint absorbs races.
func EnrollHandler(store progress.Store, events *syncx.EventRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := rbac.SubjectFromContext(r.Context())
		courseID := chi.URLParam(r, "courseID")
		e, err := store.Enroll(r.Context(), sub, courseID)
		if err != nil {
			fail(w, err)
			return
		}
		_ = events.Emit(r.Context(), syncx.TypeEnrolled, sub+"|"+courseID, e)
		writeJSON(w, http.StatusOK, e)
	}
}

func ListMyEnrollmentsHandler(store progress.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := rbac.SubjectFromContext(r.Context())
		list, err := store.ListEnrollments(r.Context(), sub)
		if err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}
