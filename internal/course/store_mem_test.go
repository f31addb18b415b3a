package course_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Aymardds/agrilearn-hub/internal/course"
)

func seedTree(t *testing.T, s course.Store) {
	t.Helper()
	ctx := context.Background()
	if err := s.PutCourse(ctx, course.Course{ID: "c1", Title: "Irrigation 101"}); err != nil {
		t.Fatalf("put course: %v", err)
	}
	if err := s.PutModule(ctx, course.Module{ID: "m1", CourseID: "c1", Order: 1}); err != nil {
		t.Fatalf("put module: %v", err)
	}
	if err := s.PutChapter(ctx, course.Chapter{ID: "ch1", ModuleID: "m1", Order: 1}); err != nil {
		t.Fatalf("put chapter: %v", err)
	}
}

func TestSiblingIndexUnique(t *testing.T) {
	ctx := context.Background()
	s := course.NewInMemoryStore()
	seedTree(t, s)

	if err := s.PutModule(ctx, course.Module{ID: "m2", CourseID: "c1", Order: 1}); !errors.Is(err, course.ErrDuplicateIndex) {
		t.Fatalf("duplicate module index: err = %v, want ErrDuplicateIndex", err)
	}
	if err := s.PutModule(ctx, course.Module{ID: "m2", CourseID: "c1", Order: 2}); err != nil {
		t.Fatalf("distinct index rejected: %v", err)
	}

	// Re-saving the same module with its own index is not a conflict.
	if err := s.PutModule(ctx, course.Module{ID: "m1", CourseID: "c1", Order: 1}); err != nil {
		t.Fatalf("self-update rejected: %v", err)
	}
}

func TestLessonSiblingScopes(t *testing.T) {
	ctx := context.Background()
	s := course.NewInMemoryStore()
	seedTree(t, s)

	// Module-root lessons and chapter lessons are independent sequences:
	// order_index 1 may appear once in each.
	if err := s.PutLesson(ctx, course.Lesson{ID: "root1", ModuleID: "m1", Order: 1}); err != nil {
		t.Fatalf("root lesson: %v", err)
	}
	if err := s.PutLesson(ctx, course.Lesson{ID: "nested1", ModuleID: "m1", ChapterID: "ch1", Order: 1}); err != nil {
		t.Fatalf("nested lesson with same index: %v", err)
	}
	if err := s.PutLesson(ctx, course.Lesson{ID: "root2", ModuleID: "m1", Order: 1}); !errors.Is(err, course.ErrDuplicateIndex) {
		t.Fatalf("duplicate root index: err = %v, want ErrDuplicateIndex", err)
	}
	if err := s.PutLesson(ctx, course.Lesson{ID: "nested2", ModuleID: "m1", ChapterID: "ch1", Order: 1}); !errors.Is(err, course.ErrDuplicateIndex) {
		t.Fatalf("duplicate nested index: err = %v, want ErrDuplicateIndex", err)
	}
}

func TestPutLessonChapterOwnership(t *testing.T) {
	ctx := context.Background()
	s := course.NewInMemoryStore()
	seedTree(t, s)
	if err := s.PutModule(ctx, course.Module{ID: "m2", CourseID: "c1", Order: 2}); err != nil {
		t.Fatalf("put module: %v", err)
	}

	err := s.PutLesson(ctx, course.Lesson{ID: "l1", ModuleID: "m2", ChapterID: "ch1", Order: 1})
	if !errors.Is(err, course.ErrMalformed) {
		t.Fatalf("cross-module chapter: err = %v, want ErrMalformed", err)
	}
}

func TestGetStructureSorted(t *testing.T) {
	ctx := context.Background()
	s := course.NewInMemoryStore()
	seedTree(t, s)
	for _, l := range []course.Lesson{
		{ID: "l2", ModuleID: "m1", Order: 2},
		{ID: "l1", ModuleID: "m1", Order: 1},
		{ID: "n1", ModuleID: "m1", ChapterID: "ch1", Order: 1},
	} {
		if err := s.PutLesson(ctx, l); err != nil {
			t.Fatalf("put lesson %s: %v", l.ID, err)
		}
	}

	c, err := s.GetStructure(ctx, "c1")
	if err != nil {
		t.Fatalf("get structure: %v", err)
	}
	if err := course.Validate(c); err != nil {
		t.Fatalf("assembled tree malformed: %v", err)
	}
	m := c.Modules[0]
	if len(m.Lessons) != 2 || m.Lessons[0].ID != "l1" || m.Lessons[1].ID != "l2" {
		t.Fatalf("root lessons out of order: %+v", m.Lessons)
	}
	if len(m.Chapters) != 1 || len(m.Chapters[0].Lessons) != 1 {
		t.Fatalf("chapter lessons missing: %+v", m.Chapters)
	}
}

func TestDeleteCourseInUse(t *testing.T) {
	ctx := context.Background()
	s := course.NewInMemoryStore()
	seedTree(t, s)

	s.(interface{ MarkEnrolled(string) }).MarkEnrolled("c1")
	if err := s.DeleteCourse(ctx, "c1"); !errors.Is(err, course.ErrInUse) {
		t.Fatalf("err = %v, want ErrInUse", err)
	}
}

func TestDeleteCourseNotFound(t *testing.T) {
	s := course.NewInMemoryStore()
	if err := s.DeleteCourse(context.Background(), "nope"); !errors.Is(err, course.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
