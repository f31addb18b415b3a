package auth

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/Aymardds/agrilearn-hub/internal/rbac"
)

// errNoUserRow covers both "no row for this subject" and "users table not
// created yet": before the first bulk upsert the table may be missing.
var errNoUserRow = errors.New("no users row")

// AttachRoleFromDB replaces the claim role with the authoritative users-table
// role. When no row exists, claimFallback decides whether the token's role
// stands; the admin bootstrap claim always does, or the first login could
// never seed the table.
func AttachRoleFromDB(db *sql.DB, claimFallback bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			sub := rbac.SubjectFromContext(ctx)
			claimRole := rbac.RoleFromContext(ctx)

			role, err := lookupRole(ctx, db, sub)
			switch {
			case err == nil:
				next.ServeHTTP(w, r.WithContext(rbac.WithRole(ctx, role)))
			case errors.Is(err, errNoUserRow):
				if claimRole == "admin" || (claimFallback && claimRole != "") {
					next.ServeHTTP(w, r)
					return
				}
				http.Error(w, "forbidden", http.StatusForbidden)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
		})
	}
}

// lookupRole resolves the subject by id or username; dev tokens carry the
// username as sub.
func lookupRole(ctx context.Context, db *sql.DB, sub string) (string, error) {
	var role string
	err := db.QueryRowContext(ctx,
		`SELECT role FROM users WHERE id=$1 OR username=$1`, sub).Scan(&role)
	switch {
	case errors.Is(err, sql.ErrNoRows), isUsersTableMissing(err):
		return "", errNoUserRow
	case err != nil:
		return "", err
	case role == "":
		return "", errNoUserRow
	}
	return role, nil
}

func isUsersTableMissing(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "no such table: users") || // sqlite
		strings.Contains(msg, `relation "users" does not exist`) // postgres
}
