package quiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) PutQuiz(ctx context.Context, q Quiz) error {
	if len(q.Questions) == 0 {
		return fmt.Errorf("quiz %s: %w", q.ID, ErrNoQuestions)
	}
	switch q.Parent {
	case ParentLesson, ParentModule, ParentFinal:
	default:
		return fmt.Errorf("quiz %s: invalid parent type %q", q.ID, q.Parent)
	}
	qj, err := json.Marshal(q.Questions)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO quizzes (id,course_id,parent_type,parent_id,title,passing_score,time_limit_min,questions_json,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, passing_score=EXCLUDED.passing_score,
			time_limit_min=EXCLUDED.time_limit_min, questions_json=EXCLUDED.questions_json`,
		q.ID, q.CourseID, string(q.Parent), q.ParentID, q.Title, q.PassingScore, q.TimeLimitMin, string(qj), time.Now().Unix())
	return err
}

// GetQuiz is learner-safe: correct answer keys are stripped.
func (s *SQLStore) GetQuiz(ctx context.Context, id string) (Quiz, error) {
	q, err := s.GetQuizFull(ctx, id)
	if err != nil {
		return Quiz{}, err
	}
	for i := range q.Questions {
		q.Questions[i].CorrectKey = ""
	}
	return q, nil
}

func (s *SQLStore) GetQuizFull(ctx context.Context, id string) (Quiz, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,course_id,parent_type,parent_id,title,passing_score,time_limit_min,questions_json,created_at
		FROM quizzes WHERE id=$1`, id)
	return scanQuiz(row)
}

func (s *SQLStore) GetByParent(ctx context.Context, parent ParentType, parentID string) (Quiz, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,course_id,parent_type,parent_id,title,passing_score,time_limit_min,questions_json,created_at
		FROM quizzes WHERE parent_type=$1 AND parent_id=$2`, string(parent), parentID)
	return scanQuiz(row)
}

func scanQuiz(row *sql.Row) (Quiz, error) {
	var q Quiz
	var parent, qjson string
	if err := row.Scan(&q.ID, &q.CourseID, &parent, &q.ParentID, &q.Title, &q.PassingScore, &q.TimeLimitMin, &qjson, &q.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Quiz{}, fmt.Errorf("quiz: %w", ErrNotFound)
		}
		return Quiz{}, err
	}
	q.Parent = ParentType(parent)
	if err := json.Unmarshal([]byte(qjson), &q.Questions); err != nil {
		return Quiz{}, err
	}
	return q, nil
}

func (s *SQLStore) StartAttempt(ctx context.Context, quizID, learnerID string) (Attempt, error) {
	q, err := s.GetQuizFull(ctx, quizID)
	if err != nil {
		return Attempt{}, err
	}
	now := time.Now()
	a := Attempt{
		ID:        uuid.NewString(),
		QuizID:    q.ID,
		LearnerID: learnerID,
		Status:    StatusInProgress,
		Answers:   map[string]string{},
		StartedAt: now.Unix(),
	}
	if q.TimeLimitMin > 0 {
		a.Deadline = now.Add(time.Duration(q.TimeLimitMin) * time.Minute).Unix()
	}
	aj, _ := json.Marshal(a.Answers)
	_, err = s.db.ExecContext(ctx, `INSERT INTO quiz_attempts (id,quiz_id,learner_id,status,score,passed,answers_json,started_at,deadline)
		VALUES ($1,$2,$3,$4,0,$5,$6,$7,$8)`,
		a.ID, a.QuizID, a.LearnerID, a.Status, false, string(aj), a.StartedAt, nullInt64(a.Deadline))
	if err != nil {
		return Attempt{}, err
	}
	return a, nil
}

func (s *SQLStore) SaveAnswers(ctx context.Context, attemptID string, answers map[string]string) (Attempt, error) {
	a, err := s.GetAttempt(ctx, attemptID)
	if err != nil {
		return Attempt{}, err
	}
	if a.Status == StatusSubmitted {
		return a, ErrAlreadySubmitted
	}
	if a.Answers == nil {
		a.Answers = map[string]string{}
	}
	for k, v := range answers {
		a.Answers[k] = v
	}
	buf, _ := json.Marshal(a.Answers)
	if _, err := s.db.ExecContext(ctx, `UPDATE quiz_attempts SET answers_json=$1 WHERE id=$2 AND status=$3`,
		string(buf), attemptID, StatusInProgress); err != nil {
		return Attempt{}, err
	}
	return s.GetAttempt(ctx, attemptID)
}

// Submit grades the attempt's current answers and finalizes it. The
// finalizing UPDATE is guarded on status, so of two racing submissions
// (manual vs. timer) exactly one grades; the loser gets the stored result.
func (s *SQLStore) Submit(ctx context.Context, attemptID string) (Attempt, error) {
	a, err := s.GetAttempt(ctx, attemptID)
	if err != nil {
		return Attempt{}, err
	}
	if a.Status == StatusSubmitted {
		return a, ErrAlreadySubmitted
	}
	q, err := s.GetQuizFull(ctx, a.QuizID)
	if err != nil {
		return Attempt{}, err
	}
	res, err := Grade(q, a.Answers)
	if err != nil {
		return Attempt{}, err
	}
	out, err := s.db.ExecContext(ctx, `UPDATE quiz_attempts SET status=$1, score=$2, passed=$3, submitted_at=$4
		WHERE id=$5 AND status=$6`,
		StatusSubmitted, res.Score, res.Passed, time.Now().Unix(), attemptID, StatusInProgress)
	if err != nil {
		return Attempt{}, err
	}
	if n, _ := out.RowsAffected(); n == 0 {
		stored, gerr := s.GetAttempt(ctx, attemptID)
		if gerr != nil {
			return Attempt{}, gerr
		}
		return stored, ErrAlreadySubmitted
	}
	return s.GetAttempt(ctx, attemptID)
}

func (s *SQLStore) GetAttempt(ctx context.Context, id string) (Attempt, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,quiz_id,learner_id,status,score,passed,answers_json,started_at,COALESCE(deadline,0),COALESCE(submitted_at,0)
		FROM quiz_attempts WHERE id=$1`, id)
	var a Attempt
	var ajson string
	if err := row.Scan(&a.ID, &a.QuizID, &a.LearnerID, &a.Status, &a.Score, &a.Passed, &ajson, &a.StartedAt, &a.Deadline, &a.SubmittedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Attempt{}, fmt.Errorf("attempt %s: %w", id, ErrNotFound)
		}
		return Attempt{}, err
	}
	if err := json.Unmarshal([]byte(ajson), &a.Answers); err != nil {
		a.Answers = map[string]string{}
	}
	return a, nil
}

func (s *SQLStore) ListAttempts(ctx context.Context, opts AttemptListOpts) ([]Attempt, error) {
	limit := opts.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	sqlStr := `SELECT id,quiz_id,learner_id,status,score,passed,answers_json,started_at,COALESCE(deadline,0),COALESCE(submitted_at,0)
		FROM quiz_attempts WHERE 1=1`
	var args []any
	if opts.QuizID != "" {
		args = append(args, opts.QuizID)
		sqlStr += ` AND quiz_id=$` + strconv.Itoa(len(args))
	}
	if opts.LearnerID != "" {
		args = append(args, opts.LearnerID)
		sqlStr += ` AND learner_id=$` + strconv.Itoa(len(args))
	}
	if opts.Status != "" {
		args = append(args, opts.Status)
		sqlStr += ` AND status=$` + strconv.Itoa(len(args))
	}
	args = append(args, limit, opts.Offset)
	sqlStr += ` ORDER BY started_at DESC, id LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Attempt
	for rows.Next() {
		var a Attempt
		var ajson string
		if err := rows.Scan(&a.ID, &a.QuizID, &a.LearnerID, &a.Status, &a.Score, &a.Passed, &ajson, &a.StartedAt, &a.Deadline, &a.SubmittedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(ajson), &a.Answers); err != nil {
			a.Answers = map[string]string{}
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func nullInt64(v int64) any {
	if v == 0 {
		return nil
	}
	return v
}
