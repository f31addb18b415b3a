package cert

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Aymardds/agrilearn-hub/internal/db"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(d *sql.DB) *SQLStore { return &SQLStore{db: d} }

func (s *SQLStore) Create(ctx context.Context, c Certificate) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO certificates (id,learner_id,course_id,number,verify_code,snapshot_json,issued_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		c.ID, c.LearnerID, c.CourseID, c.Number, c.VerifyCode, c.Snapshot, c.IssuedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return fmt.Errorf("certificate %s/%s: %w", c.LearnerID, c.CourseID, ErrConflict)
		}
		return err
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, learnerID, courseID string) (Certificate, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,learner_id,course_id,number,verify_code,snapshot_json,issued_at
		FROM certificates WHERE learner_id=$1 AND course_id=$2`, learnerID, courseID)
	return scanCert(row)
}

func (s *SQLStore) GetByCode(ctx context.Context, verifyCode string) (Certificate, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,learner_id,course_id,number,verify_code,snapshot_json,issued_at
		FROM certificates WHERE verify_code=$1`, verifyCode)
	return scanCert(row)
}

func (s *SQLStore) ListByLearner(ctx context.Context, learnerID string) ([]Certificate, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,learner_id,course_id,number,verify_code,snapshot_json,issued_at
		FROM certificates WHERE learner_id=$1 ORDER BY issued_at DESC`, learnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Certificate
	for rows.Next() {
		var c Certificate
		if err := rows.Scan(&c.ID, &c.LearnerID, &c.CourseID, &c.Number, &c.VerifyCode, &c.Snapshot, &c.IssuedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanCert(row *sql.Row) (Certificate, error) {
	var c Certificate
	if err := row.Scan(&c.ID, &c.LearnerID, &c.CourseID, &c.Number, &c.VerifyCode, &c.Snapshot, &c.IssuedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Certificate{}, ErrNotFound
		}
		return Certificate{}, err
	}
	return c, nil
}
