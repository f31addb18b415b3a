package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Aymardds/agrilearn-hub/internal/cert"
	"github.com/Aymardds/agrilearn-hub/internal/progress"
	"github.com/Aymardds/agrilearn-hub/internal/quiz"
	"github.com/Aymardds/agrilearn-hub/internal/rbac"
	syncx "github.com/Aymardds/agrilearn-hub/internal/sync"
)

// RequestCertificateHandler runs the eligibility gate for the caller.
// 201 on first issuance, 200 with the existing record on repeats, 403 when
// prerequisites are missing.
func RequestCertificateHandler(gate *cert.Gate, prog progress.Store, quizzes quiz.Store, events *syncx.EventRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := rbac.SubjectFromContext(r.Context())
		courseID := chi.URLParam(r, "courseID")

		enr, err := prog.GetEnrollment(r.Context(), sub, courseID)
		if err != nil {
			fail(w, err)
			return
		}
		hasFinal := false
		var attempts []quiz.Attempt
		final, err := quizzes.GetByParent(r.Context(), quiz.ParentFinal, courseID)
		if err == nil {
			hasFinal = true
			attempts, err = quizzes.ListAttempts(r.Context(), quiz.AttemptListOpts{QuizID: final.ID, LearnerID: sub})
			if err != nil {
				fail(w, err)
				return
			}
		} else if !errors.Is(err, quiz.ErrNotFound) {
			fail(w, err)
			return
		}

		c, outcome, err := gate.IssueIfEligible(r.Context(), sub, courseID, enr, hasFinal, attempts)
		if err != nil {
			fail(w, err)
			return
		}
		switch outcome {
		case cert.OutcomeIssued:
			_ = events.Emit(r.Context(), syncx.TypeCertificateIssued, sub+"|"+courseID, c)
			writeJSON(w, http.StatusCreated, c)
		case cert.OutcomeAlreadyIssued:
			writeJSON(w, http.StatusOK, c)
		default:
			http.Error(w, "not eligible: course completion or final assessment pass missing", http.StatusForbidden)
		}
	}
}

func ListMyCertificatesHandler(store cert.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := rbac.SubjectFromContext(r.Context())
		list, err := store.ListByLearner(r.Context(), sub)
		if err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// VerifyCertificateHandler is public: anyone holding a verification code can
// confirm the certificate and see the settings snapshotted at issuance.
func VerifyCertificateHandler(store cert.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")
		c, err := store.GetByCode(r.Context(), code)
		if err != nil {
			fail(w, err)
			return
		}
		snap, err := c.SnapshotSettings()
		if err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"valid":       true,
			"number":      c.Number,
			"course_id":   c.CourseID,
			"issued_at":   c.IssuedAt,
			"issuer_name": snap.IssuerName,
			"partners":    snap.Partners,
		})
	}
}
