package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Aymardds/agrilearn-hub/internal/rbac"
)

type userRow struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`               // student|instructor|editor|admin
	Password string `json:"password,omitempty"` // plaintext optional, hashed on write
}

// BulkUpsertUsersHandler accepts a JSON array of users and upserts them.
func BulkUpsertUsersHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rows []userRow
		if err := json.NewDecoder(r.Body).Decode(&rows); err != nil {
			http.Error(w, "expected JSON array", http.StatusBadRequest)
			return
		}
		if len(rows) == 0 {
			writeJSON(w, http.StatusOK, map[string]any{"upserted": 0})
			return
		}
		n, err := upsertUsers(r.Context(), db, rows)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"upserted": n})
	}
}

func upsertUsers(ctx context.Context, db *sql.DB, rows []userRow) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()
	n := 0
	for _, u := range rows {
		if u.ID == "" || u.Username == "" {
			continue
		}
		if u.Role == "" {
			u.Role = "student"
		}
		hash := ""
		if u.Password != "" {
			b, err := bcrypt.GenerateFromPassword([]byte(u.Password), 12)
			if err != nil {
				return n, err
			}
			hash = string(b)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO users (id,username,role,password_hash,created_at)
			VALUES ($1,$2,$3,$4,$5)
			ON CONFLICT (id) DO UPDATE SET username=EXCLUDED.username, role=EXCLUDED.role,
				password_hash=CASE WHEN EXCLUDED.password_hash<>'' THEN EXCLUDED.password_hash ELSE users.password_hash END`,
			u.ID, u.Username, u.Role, hash, time.Now().Unix()); err != nil {
			return n, err
		}
		n++
	}
	return n, tx.Commit()
}

func ListUsersHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := r.URL.Query().Get("role")
		sqlStr := `SELECT id,username,role FROM users`
		var args []any
		if role != "" {
			sqlStr += ` WHERE role=$1`
			args = append(args, role)
		}
		sqlStr += ` ORDER BY username`
		rows, err := db.QueryContext(r.Context(), sqlStr, args...)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		defer rows.Close()
		var out []userRow
		for rows.Next() {
			var u userRow
			if err := rows.Scan(&u.ID, &u.Username, &u.Role); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			out = append(out, u)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// POST /users/change-password { "old_password": "...", "new_password": "..." }
func ChangePasswordHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := rbac.SubjectFromContext(r.Context())
		var req struct {
			OldPassword string `json:"old_password"`
			NewPassword string `json:"new_password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.NewPassword == "" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		var storedHash string
		err := db.QueryRowContext(r.Context(),
			`SELECT password_hash FROM users WHERE id=$1 OR username=$1`, sub).Scan(&storedHash)
		if err != nil {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		if storedHash != "" && bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(req.OldPassword)) != nil {
			http.Error(w, "old password mismatch", http.StatusForbidden)
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), 12)
		if err != nil {
			http.Error(w, "hash failure", http.StatusInternalServerError)
			return
		}
		if _, err := db.ExecContext(r.Context(),
			`UPDATE users SET password_hash=$1 WHERE id=$2 OR username=$2`, string(hash), sub); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
