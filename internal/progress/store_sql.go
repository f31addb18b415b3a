package progress

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Aymardds/agrilearn-hub/internal/course"
	"github.com/Aymardds/agrilearn-hub/internal/db"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(d *sql.DB) *SQLStore { return &SQLStore{db: d} }

func (s *SQLStore) Enroll(ctx context.Context, learnerID, courseID string) (Enrollment, error) {
	var one int
	if err := s.db.QueryRowContext(ctx, `SELECT 1 FROM courses WHERE id=$1`, courseID).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Enrollment{}, fmt.Errorf("course %s: %w", courseID, course.ErrNotFound)
		}
		return Enrollment{}, err
	}
	e := Enrollment{
		ID:        uuid.NewString(),
		LearnerID: learnerID,
		CourseID:  courseID,
		CreatedAt: time.Now().Unix(),
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO enrollments (id,learner_id,course_id,progress_pct,created_at)
		VALUES ($1,$2,$3,0,$4)`,
		e.ID, e.LearnerID, e.CourseID, e.CreatedAt)
	if err != nil {
		// The UNIQUE (learner_id, course_id) pair is the enrollment guard;
		// losing the race means someone already holds the desired state.
		if db.IsUniqueViolation(err) {
			return s.GetEnrollment(ctx, learnerID, courseID)
		}
		return Enrollment{}, err
	}
	return e, nil
}

func (s *SQLStore) GetEnrollment(ctx context.Context, learnerID, courseID string) (Enrollment, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,learner_id,course_id,progress_pct,COALESCE(completed_at,0),created_at
		FROM enrollments WHERE learner_id=$1 AND course_id=$2`, learnerID, courseID)
	var e Enrollment
	if err := row.Scan(&e.ID, &e.LearnerID, &e.CourseID, &e.ProgressPct, &e.CompletedAt, &e.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Enrollment{}, fmt.Errorf("enrollment %s/%s: %w", learnerID, courseID, ErrNotEnrolled)
		}
		return Enrollment{}, err
	}
	return e, nil
}

func (s *SQLStore) ListEnrollments(ctx context.Context, learnerID string) ([]Enrollment, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,learner_id,course_id,progress_pct,COALESCE(completed_at,0),created_at
		FROM enrollments WHERE learner_id=$1 ORDER BY created_at DESC`, learnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Enrollment
	for rows.Next() {
		var e Enrollment
		if err := rows.Scan(&e.ID, &e.LearnerID, &e.CourseID, &e.ProgressPct, &e.CompletedAt, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// MarkLessonComplete records the completion and folds the recompute into the
// same transaction, so a crash between the two writes can never leave the
// enrollment percentage stale.
func (s *SQLStore) MarkLessonComplete(ctx context.Context, learnerID, lessonID string) (Snapshot, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Snapshot{}, err
	}
	defer tx.Rollback()

	var courseID string
	err = tx.QueryRowContext(ctx, `SELECT m.course_id FROM lessons l JOIN modules m ON m.id=l.module_id WHERE l.id=$1`, lessonID).Scan(&courseID)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, fmt.Errorf("lesson %s: %w", lessonID, course.ErrNotFound)
	}
	if err != nil {
		return Snapshot{}, err
	}
	// The self-assignment write locks the enrollment row until commit, which
	// serializes concurrent completions by the same learner: the second
	// transaction recomputes only after the first one's lesson_progress row
	// is committed and visible.
	res, err := tx.ExecContext(ctx, `UPDATE enrollments SET progress_pct=progress_pct
		WHERE learner_id=$1 AND course_id=$2`, learnerID, courseID)
	if err != nil {
		return Snapshot{}, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return Snapshot{}, err
	} else if n == 0 {
		return Snapshot{}, fmt.Errorf("enrollment %s/%s: %w", learnerID, courseID, ErrNotEnrolled)
	}

	now := time.Now().Unix()
	// last completion wins
	if _, err := tx.ExecContext(ctx, `INSERT INTO lesson_progress (learner_id,lesson_id,completed,completed_at)
		VALUES ($1,$2,1,$3)
		ON CONFLICT (learner_id,lesson_id) DO UPDATE SET completed=1, completed_at=EXCLUDED.completed_at`,
		learnerID, lessonID, now); err != nil {
		return Snapshot{}, err
	}

	snap, err := snapshotIn(ctx, tx, learnerID, courseID)
	if err != nil {
		return Snapshot{}, err
	}
	if err := writeEnrollmentProgress(ctx, tx, learnerID, courseID, snap, now); err != nil {
		return Snapshot{}, err
	}
	if err := tx.Commit(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func (s *SQLStore) CompletedLessons(ctx context.Context, learnerID, courseID string) (map[string]bool, error) {
	return completedIn(ctx, s.db, learnerID, courseID)
}

func (s *SQLStore) CourseProgress(ctx context.Context, learnerID, courseID string) (Snapshot, error) {
	if _, err := s.GetEnrollment(ctx, learnerID, courseID); err != nil {
		return Snapshot{}, err
	}
	return snapshotIn(ctx, s.db, learnerID, courseID)
}

// querier is the subset of *sql.DB / *sql.Tx the snapshot helpers need.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// snapshotIn rebuilds the per-module counts from lesson rows. Chapter
// nesting does not change what is reachable, so the skeleton attaches every
// lesson at module root before running the shared calculator.
func snapshotIn(ctx context.Context, q querier, learnerID, courseID string) (Snapshot, error) {
	rows, err := q.QueryContext(ctx, `SELECT l.id, l.module_id FROM lessons l
		JOIN modules m ON m.id=l.module_id WHERE m.course_id=$1`, courseID)
	if err != nil {
		return Snapshot{}, err
	}
	defer rows.Close()
	byModule := map[string][]course.Lesson{}
	var moduleOrder []string
	for rows.Next() {
		var id, moduleID string
		if err := rows.Scan(&id, &moduleID); err != nil {
			return Snapshot{}, err
		}
		if _, seen := byModule[moduleID]; !seen {
			moduleOrder = append(moduleOrder, moduleID)
		}
		byModule[moduleID] = append(byModule[moduleID], course.Lesson{ID: id, ModuleID: moduleID})
	}
	if err := rows.Err(); err != nil {
		return Snapshot{}, err
	}
	// include lesson-less modules: they must appear (and stay incomplete)
	mrows, err := q.QueryContext(ctx, `SELECT id FROM modules WHERE course_id=$1`, courseID)
	if err != nil {
		return Snapshot{}, err
	}
	defer mrows.Close()
	for mrows.Next() {
		var id string
		if err := mrows.Scan(&id); err != nil {
			return Snapshot{}, err
		}
		if _, seen := byModule[id]; !seen {
			byModule[id] = nil
			moduleOrder = append(moduleOrder, id)
		}
	}
	if err := mrows.Err(); err != nil {
		return Snapshot{}, err
	}

	skeleton := course.Course{ID: courseID}
	for _, id := range moduleOrder {
		skeleton.Modules = append(skeleton.Modules, course.Module{ID: id, CourseID: courseID, Lessons: byModule[id]})
	}
	completed, err := completedIn(ctx, q, learnerID, courseID)
	if err != nil {
		return Snapshot{}, err
	}
	return Compute(skeleton, completed), nil
}

func completedIn(ctx context.Context, q querier, learnerID, courseID string) (map[string]bool, error) {
	rows, err := q.QueryContext(ctx, `SELECT lp.lesson_id FROM lesson_progress lp
		JOIN lessons l ON l.id=lp.lesson_id
		JOIN modules m ON m.id=l.module_id
		WHERE lp.learner_id=$1 AND m.course_id=$2 AND lp.completed=1`, learnerID, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]bool{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = true
	}
	return out, rows.Err()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func writeEnrollmentProgress(ctx context.Context, e execer, learnerID, courseID string, snap Snapshot, now int64) error {
	if snap.Percentage == 100 {
		_, err := e.ExecContext(ctx, `UPDATE enrollments SET progress_pct=$1,
			completed_at=COALESCE(completed_at,$2) WHERE learner_id=$3 AND course_id=$4`,
			snap.Percentage, now, learnerID, courseID)
		return err
	}
	_, err := e.ExecContext(ctx, `UPDATE enrollments SET progress_pct=$1 WHERE learner_id=$2 AND course_id=$3`,
		snap.Percentage, learnerID, courseID)
	return err
}
