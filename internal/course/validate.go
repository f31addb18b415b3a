package course

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrMalformed marks a content tree with dangling references. Callers that
	// gate content on the tree must treat it as locked, not as an exception.
	ErrMalformed = errors.New("malformed course structure")
	// ErrDuplicateIndex marks two siblings sharing an order_index. Rejected at
	// write time; tolerated on read with a deterministic tie-break.
	ErrDuplicateIndex = errors.New("duplicate order index among siblings")
	// ErrInUse blocks course deletion while enrollments still reference it.
	ErrInUse = errors.New("course has active enrollments")
)

// Validate checks referential integrity of a loaded course tree: every
// chapter points at its enclosing module, every lesson at its enclosing
// module (and chapter, when nested).
func Validate(c Course) error {
	if c.ID == "" {
		return fmt.Errorf("%w: course id empty", ErrMalformed)
	}
	for _, m := range c.Modules {
		if m.CourseID != c.ID {
			return fmt.Errorf("%w: module %s references course %s", ErrMalformed, m.ID, m.CourseID)
		}
		for _, l := range m.Lessons {
			if l.ModuleID != m.ID {
				return fmt.Errorf("%w: lesson %s references module %s", ErrMalformed, l.ID, l.ModuleID)
			}
			if l.ChapterID != "" {
				return fmt.Errorf("%w: lesson %s is module-root but references chapter %s", ErrMalformed, l.ID, l.ChapterID)
			}
		}
		for _, ch := range m.Chapters {
			if ch.ModuleID != m.ID {
				return fmt.Errorf("%w: chapter %s references module %s", ErrMalformed, ch.ID, ch.ModuleID)
			}
			for _, l := range ch.Lessons {
				if l.ModuleID != m.ID {
					return fmt.Errorf("%w: lesson %s references module %s", ErrMalformed, l.ID, l.ModuleID)
				}
				if l.ChapterID != ch.ID {
					return fmt.Errorf("%w: lesson %s references chapter %s", ErrMalformed, l.ID, l.ChapterID)
				}
			}
		}
	}
	return nil
}

// SortTree orders modules, chapters and lessons in place by
// (order_index, created_at, id). Duplicate indices left over from older data
// resolve the same way on every read.
func SortTree(c *Course) {
	sort.SliceStable(c.Modules, func(i, j int) bool { return lessOrder(c.Modules[i].Order, c.Modules[i].CreatedAt, c.Modules[i].ID, c.Modules[j].Order, c.Modules[j].CreatedAt, c.Modules[j].ID) })
	for mi := range c.Modules {
		m := &c.Modules[mi]
		sort.SliceStable(m.Lessons, func(i, j int) bool { return lessOrder(m.Lessons[i].Order, m.Lessons[i].CreatedAt, m.Lessons[i].ID, m.Lessons[j].Order, m.Lessons[j].CreatedAt, m.Lessons[j].ID) })
		sort.SliceStable(m.Chapters, func(i, j int) bool { return lessOrder(m.Chapters[i].Order, m.Chapters[i].CreatedAt, m.Chapters[i].ID, m.Chapters[j].Order, m.Chapters[j].CreatedAt, m.Chapters[j].ID) })
		for ci := range m.Chapters {
			ch := &m.Chapters[ci]
			sort.SliceStable(ch.Lessons, func(i, j int) bool { return lessOrder(ch.Lessons[i].Order, ch.Lessons[i].CreatedAt, ch.Lessons[i].ID, ch.Lessons[j].Order, ch.Lessons[j].CreatedAt, ch.Lessons[j].ID) })
		}
	}
}

func lessOrder(o1 int, t1 int64, id1 string, o2 int, t2 int64, id2 string) bool {
	if o1 != o2 {
		return o1 < o2
	}
	if t1 != t2 {
		return t1 < t2
	}
	return id1 < id2
}
