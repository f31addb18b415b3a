package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Aymardds/agrilearn-hub/internal/cert"
	"github.com/Aymardds/agrilearn-hub/internal/course"
	"github.com/Aymardds/agrilearn-hub/internal/progress"
	"github.com/Aymardds/agrilearn-hub/internal/quiz"
	"github.com/Aymardds/agrilearn-hub/internal/rbac"
)

var perms = rbac.NewChecker(nil)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// fail maps domain errors onto HTTP statuses. Conflict-style outcomes are
// handled by the individual handlers because they are not failures.
func fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, course.ErrNotFound),
		errors.Is(err, quiz.ErrNotFound),
		errors.Is(err, cert.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, progress.ErrNotEnrolled):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, course.ErrInUse):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, course.ErrMalformed),
		errors.Is(err, course.ErrDuplicateIndex),
		errors.Is(err, quiz.ErrNoQuestions):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func parseIntDefault(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}
