package course

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) PutCourse(ctx context.Context, c Course) error {
	if c.Status == "" {
		c.Status = StatusDraft
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO courses (id,title,category,status,instructor_id,active_from,active_until,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, category=EXCLUDED.category,
			active_from=EXCLUDED.active_from, active_until=EXCLUDED.active_until`,
		c.ID, c.Title, c.Category, string(c.Status), c.InstructorID,
		nullInt64(c.ActiveFrom), nullInt64(c.ActiveUntil), time.Now().Unix())
	return err
}

func (s *SQLStore) GetCourse(ctx context.Context, id string) (Course, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,title,category,status,instructor_id,
		COALESCE(active_from,0),COALESCE(active_until,0),created_at FROM courses WHERE id=$1`, id)
	var c Course
	var st string
	if err := row.Scan(&c.ID, &c.Title, &c.Category, &st, &c.InstructorID, &c.ActiveFrom, &c.ActiveUntil, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Course{}, fmt.Errorf("course %s: %w", id, ErrNotFound)
		}
		return Course{}, err
	}
	c.Status = Status(st)
	return c, nil
}

// GetStructure loads the full content tree for a course. Rows are assembled
// in memory and sorted with the shared tie-break so the result is stable
// regardless of driver ordering.
func (s *SQLStore) GetStructure(ctx context.Context, courseID string) (Course, error) {
	c, err := s.GetCourse(ctx, courseID)
	if err != nil {
		return Course{}, err
	}

	mods := map[string]*Module{}
	var modOrder []string
	rows, err := s.db.QueryContext(ctx, `SELECT id,course_id,title,order_index,created_at FROM modules WHERE course_id=$1`, courseID)
	if err != nil {
		return Course{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var m Module
		if err := rows.Scan(&m.ID, &m.CourseID, &m.Title, &m.Order, &m.CreatedAt); err != nil {
			return Course{}, err
		}
		mods[m.ID] = &m
		modOrder = append(modOrder, m.ID)
	}
	if err := rows.Err(); err != nil {
		return Course{}, err
	}

	chaps := map[string]*Chapter{}
	crows, err := s.db.QueryContext(ctx, `SELECT ch.id,ch.module_id,ch.title,ch.order_index,ch.created_at
		FROM chapters ch JOIN modules m ON m.id=ch.module_id WHERE m.course_id=$1`, courseID)
	if err != nil {
		return Course{}, err
	}
	defer crows.Close()
	for crows.Next() {
		var ch Chapter
		if err := crows.Scan(&ch.ID, &ch.ModuleID, &ch.Title, &ch.Order, &ch.CreatedAt); err != nil {
			return Course{}, err
		}
		chaps[ch.ID] = &ch
	}
	if err := crows.Err(); err != nil {
		return Course{}, err
	}

	lrows, err := s.db.QueryContext(ctx, `SELECT l.id,l.module_id,COALESCE(l.chapter_id,''),l.title,l.type,l.order_index,COALESCE(l.live_at,0),l.created_at
		FROM lessons l JOIN modules m ON m.id=l.module_id WHERE m.course_id=$1`, courseID)
	if err != nil {
		return Course{}, err
	}
	defer lrows.Close()
	var lessons []Lesson
	for lrows.Next() {
		var l Lesson
		var typ string
		if err := lrows.Scan(&l.ID, &l.ModuleID, &l.ChapterID, &l.Title, &typ, &l.Order, &l.LiveAt, &l.CreatedAt); err != nil {
			return Course{}, err
		}
		l.Type = LessonType(typ)
		lessons = append(lessons, l)
	}
	if err := lrows.Err(); err != nil {
		return Course{}, err
	}

	for _, l := range lessons {
		if l.ChapterID != "" {
			ch, ok := chaps[l.ChapterID]
			if !ok {
				return Course{}, fmt.Errorf("%w: lesson %s references chapter %s", ErrMalformed, l.ID, l.ChapterID)
			}
			ch.Lessons = append(ch.Lessons, l)
			continue
		}
		m, ok := mods[l.ModuleID]
		if !ok {
			return Course{}, fmt.Errorf("%w: lesson %s references module %s", ErrMalformed, l.ID, l.ModuleID)
		}
		m.Lessons = append(m.Lessons, l)
	}
	for _, ch := range chaps {
		m, ok := mods[ch.ModuleID]
		if !ok {
			return Course{}, fmt.Errorf("%w: chapter %s references module %s", ErrMalformed, ch.ID, ch.ModuleID)
		}
		m.Chapters = append(m.Chapters, *ch)
	}
	for _, id := range modOrder {
		c.Modules = append(c.Modules, *mods[id])
	}
	SortTree(&c)
	return c, nil
}

func (s *SQLStore) ListCourses(ctx context.Context, opts ListOpts) ([]Course, error) {
	limit := opts.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	sqlStr := `SELECT id,title,category,status,instructor_id,COALESCE(active_from,0),COALESCE(active_until,0),created_at FROM courses WHERE 1=1`
	var args []any
	if opts.Status != "" {
		args = append(args, string(opts.Status))
		sqlStr += ` AND status=$` + strconv.Itoa(len(args))
	}
	if opts.InstructorID != "" {
		args = append(args, opts.InstructorID)
		sqlStr += ` AND instructor_id=$` + strconv.Itoa(len(args))
	}
	if opts.Q != "" {
		args = append(args, "%"+opts.Q+"%")
		sqlStr += ` AND title LIKE $` + strconv.Itoa(len(args))
	}
	args = append(args, limit, opts.Offset)
	sqlStr += ` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Course
	for rows.Next() {
		var c Course
		var st string
		if err := rows.Scan(&c.ID, &c.Title, &c.Category, &st, &c.InstructorID, &c.ActiveFrom, &c.ActiveUntil, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.Status = Status(st)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLStore) SetStatus(ctx context.Context, courseID string, st Status) error {
	res, err := s.db.ExecContext(ctx, `UPDATE courses SET status=$1 WHERE id=$2`, string(st), courseID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("course %s: %w", courseID, ErrNotFound)
	}
	return nil
}

func (s *SQLStore) DeleteCourse(ctx context.Context, courseID string) error {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM enrollments WHERE course_id=$1`, courseID).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("course %s: %w", courseID, ErrInUse)
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM courses WHERE id=$1`, courseID)
	if err != nil {
		return err
	}
	if cnt, _ := res.RowsAffected(); cnt == 0 {
		return fmt.Errorf("course %s: %w", courseID, ErrNotFound)
	}
	return nil
}

func (s *SQLStore) PutModule(ctx context.Context, m Module) error {
	if err := s.ensureExists(ctx, `SELECT 1 FROM courses WHERE id=$1`, m.CourseID, "course"); err != nil {
		return err
	}
	if err := s.checkSiblingIndex(ctx,
		`SELECT COUNT(1) FROM modules WHERE course_id=$1 AND order_index=$2 AND id<>$3`,
		m.CourseID, m.Order, m.ID); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO modules (id,course_id,title,order_index,created_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, order_index=EXCLUDED.order_index`,
		m.ID, m.CourseID, m.Title, m.Order, time.Now().Unix())
	return err
}

func (s *SQLStore) PutChapter(ctx context.Context, ch Chapter) error {
	if err := s.ensureExists(ctx, `SELECT 1 FROM modules WHERE id=$1`, ch.ModuleID, "module"); err != nil {
		return err
	}
	if err := s.checkSiblingIndex(ctx,
		`SELECT COUNT(1) FROM chapters WHERE module_id=$1 AND order_index=$2 AND id<>$3`,
		ch.ModuleID, ch.Order, ch.ID); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO chapters (id,module_id,title,order_index,created_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, order_index=EXCLUDED.order_index`,
		ch.ID, ch.ModuleID, ch.Title, ch.Order, time.Now().Unix())
	return err
}

// PutLesson keys sibling uniqueness on the parent container: chapter-nested
// lessons compete with chapter siblings, module-root lessons with other
// module-root lessons. The two sequences are independent.
func (s *SQLStore) PutLesson(ctx context.Context, l Lesson) error {
	if err := s.ensureExists(ctx, `SELECT 1 FROM modules WHERE id=$1`, l.ModuleID, "module"); err != nil {
		return err
	}
	if l.ChapterID != "" {
		var modID string
		err := s.db.QueryRowContext(ctx, `SELECT module_id FROM chapters WHERE id=$1`, l.ChapterID).Scan(&modID)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("chapter %s: %w", l.ChapterID, ErrNotFound)
		}
		if err != nil {
			return err
		}
		if modID != l.ModuleID {
			return fmt.Errorf("%w: chapter %s belongs to module %s", ErrMalformed, l.ChapterID, modID)
		}
		if err := s.checkSiblingIndex(ctx,
			`SELECT COUNT(1) FROM lessons WHERE chapter_id=$1 AND order_index=$2 AND id<>$3`,
			l.ChapterID, l.Order, l.ID); err != nil {
			return err
		}
	} else {
		if err := s.checkSiblingIndex(ctx,
			`SELECT COUNT(1) FROM lessons WHERE module_id=$1 AND chapter_id IS NULL AND order_index=$2 AND id<>$3`,
			l.ModuleID, l.Order, l.ID); err != nil {
			return err
		}
	}
	if l.Type == "" {
		l.Type = LessonText
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO lessons (id,module_id,chapter_id,title,type,order_index,live_at,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, type=EXCLUDED.type,
			order_index=EXCLUDED.order_index, live_at=EXCLUDED.live_at`,
		l.ID, l.ModuleID, nullStr(l.ChapterID), l.Title, string(l.Type), l.Order, nullInt64(l.LiveAt), time.Now().Unix())
	return err
}

func (s *SQLStore) ensureExists(ctx context.Context, q, id, kind string) error {
	var one int
	err := s.db.QueryRowContext(ctx, q, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return err
}

func (s *SQLStore) checkSiblingIndex(ctx context.Context, q string, args ...any) error {
	var n int
	if err := s.db.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrDuplicateIndex
	}
	return nil
}

func nullInt64(v int64) any {
	if v == 0 {
		return nil
	}
	return v
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
