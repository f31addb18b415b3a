package course

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// memoryStore backs tests and single-process dev runs.
type memoryStore struct {
	mu       sync.RWMutex
	courses  map[string]Course
	modules  map[string]Module
	chapters map[string]Chapter
	lessons  map[string]Lesson

	// enrollment markers so DeleteCourse can honor the in-use guard without
	// depending on the progress package
	enrolled map[string]int // courseID -> count
}

func NewInMemoryStore() Store {
	return &memoryStore{
		courses:  map[string]Course{},
		modules:  map[string]Module{},
		chapters: map[string]Chapter{},
		lessons:  map[string]Lesson{},
		enrolled: map[string]int{},
	}
}

func (m *memoryStore) PutCourse(_ context.Context, c Course) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.Status == "" {
		c.Status = StatusDraft
	}
	if c.CreatedAt == 0 {
		c.CreatedAt = time.Now().Unix()
	}
	c.Modules = nil
	m.courses[c.ID] = c
	return nil
}

func (m *memoryStore) GetCourse(_ context.Context, id string) (Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.courses[id]
	if !ok {
		return Course{}, fmt.Errorf("course %s: %w", id, ErrNotFound)
	}
	return c, nil
}

func (m *memoryStore) GetStructure(ctx context.Context, courseID string) (Course, error) {
	c, err := m.GetCourse(ctx, courseID)
	if err != nil {
		return Course{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	chapsByID := map[string]*Chapter{}
	modsByID := map[string]*Module{}
	for _, mod := range m.modules {
		if mod.CourseID != courseID {
			continue
		}
		cp := mod
		cp.Lessons, cp.Chapters = nil, nil
		modsByID[cp.ID] = &cp
	}
	for _, ch := range m.chapters {
		if _, ok := modsByID[ch.ModuleID]; !ok {
			continue
		}
		cp := ch
		cp.Lessons = nil
		chapsByID[cp.ID] = &cp
	}
	for _, l := range m.lessons {
		mod, ok := modsByID[l.ModuleID]
		if !ok {
			continue
		}
		if l.ChapterID != "" {
			ch, ok := chapsByID[l.ChapterID]
			if !ok {
				return Course{}, fmt.Errorf("%w: lesson %s references chapter %s", ErrMalformed, l.ID, l.ChapterID)
			}
			ch.Lessons = append(ch.Lessons, l)
			continue
		}
		mod.Lessons = append(mod.Lessons, l)
	}
	for _, ch := range chapsByID {
		modsByID[ch.ModuleID].Chapters = append(modsByID[ch.ModuleID].Chapters, *ch)
	}
	for _, mod := range modsByID {
		c.Modules = append(c.Modules, *mod)
	}
	SortTree(&c)
	return c, nil
}

func (m *memoryStore) ListCourses(_ context.Context, opts ListOpts) ([]Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Course
	for _, c := range m.courses {
		if opts.Status != "" && c.Status != opts.Status {
			continue
		}
		if opts.InstructorID != "" && c.InstructorID != opts.InstructorID {
			continue
		}
		if opts.Q != "" && !strings.Contains(strings.ToLower(c.Title), strings.ToLower(opts.Q)) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (m *memoryStore) SetStatus(_ context.Context, courseID string, st Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.courses[courseID]
	if !ok {
		return fmt.Errorf("course %s: %w", courseID, ErrNotFound)
	}
	c.Status = st
	m.courses[courseID] = c
	return nil
}

func (m *memoryStore) DeleteCourse(_ context.Context, courseID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.courses[courseID]; !ok {
		return fmt.Errorf("course %s: %w", courseID, ErrNotFound)
	}
	if m.enrolled[courseID] > 0 {
		return fmt.Errorf("course %s: %w", courseID, ErrInUse)
	}
	delete(m.courses, courseID)
	return nil
}

func (m *memoryStore) PutModule(_ context.Context, mod Module) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.courses[mod.CourseID]; !ok {
		return fmt.Errorf("course %s: %w", mod.CourseID, ErrNotFound)
	}
	for _, other := range m.modules {
		if other.CourseID == mod.CourseID && other.Order == mod.Order && other.ID != mod.ID {
			return ErrDuplicateIndex
		}
	}
	if mod.CreatedAt == 0 {
		mod.CreatedAt = time.Now().Unix()
	}
	mod.Lessons, mod.Chapters = nil, nil
	m.modules[mod.ID] = mod
	return nil
}

func (m *memoryStore) PutChapter(_ context.Context, ch Chapter) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.modules[ch.ModuleID]; !ok {
		return fmt.Errorf("module %s: %w", ch.ModuleID, ErrNotFound)
	}
	for _, other := range m.chapters {
		if other.ModuleID == ch.ModuleID && other.Order == ch.Order && other.ID != ch.ID {
			return ErrDuplicateIndex
		}
	}
	if ch.CreatedAt == 0 {
		ch.CreatedAt = time.Now().Unix()
	}
	ch.Lessons = nil
	m.chapters[ch.ID] = ch
	return nil
}

func (m *memoryStore) PutLesson(_ context.Context, l Lesson) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.modules[l.ModuleID]; !ok {
		return fmt.Errorf("module %s: %w", l.ModuleID, ErrNotFound)
	}
	if l.ChapterID != "" {
		ch, ok := m.chapters[l.ChapterID]
		if !ok {
			return fmt.Errorf("chapter %s: %w", l.ChapterID, ErrNotFound)
		}
		if ch.ModuleID != l.ModuleID {
			return fmt.Errorf("%w: chapter %s belongs to module %s", ErrMalformed, l.ChapterID, ch.ModuleID)
		}
	}
	for _, other := range m.lessons {
		if other.ID == l.ID {
			continue
		}
		var sameParent bool
		if l.ChapterID != "" {
			sameParent = other.ChapterID == l.ChapterID
		} else {
			sameParent = other.ChapterID == "" && other.ModuleID == l.ModuleID
		}
		if sameParent && other.Order == l.Order {
			return ErrDuplicateIndex
		}
	}
	if l.Type == "" {
		l.Type = LessonText
	}
	if l.CreatedAt == 0 {
		l.CreatedAt = time.Now().Unix()
	}
	m.lessons[l.ID] = l
	return nil
}

// MarkEnrolled lets tests and the in-memory progress store flag a course as
// having enrollments, which blocks deletion.
func (m *memoryStore) MarkEnrolled(courseID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enrolled[courseID]++
}
