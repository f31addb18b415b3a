package course_test

import (
	"errors"
	"testing"

	"github.com/Aymardds/agrilearn-hub/internal/course"
)

func validTree() course.Course {
	return course.Course{
		ID: "c1",
		Modules: []course.Module{
			{
				ID: "m1", CourseID: "c1",
				Lessons: []course.Lesson{{ID: "l1", ModuleID: "m1"}},
				Chapters: []course.Chapter{
					{ID: "ch1", ModuleID: "m1", Lessons: []course.Lesson{
						{ID: "l2", ModuleID: "m1", ChapterID: "ch1"},
					}},
				},
			},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*course.Course)
		wantErr bool
	}{
		{"valid tree", func(*course.Course) {}, false},
		{"empty course id", func(c *course.Course) { c.ID = "" }, true},
		{"module references wrong course", func(c *course.Course) { c.Modules[0].CourseID = "other" }, true},
		{"lesson references wrong module", func(c *course.Course) { c.Modules[0].Lessons[0].ModuleID = "mX" }, true},
		{"root lesson carries chapter id", func(c *course.Course) { c.Modules[0].Lessons[0].ChapterID = "ch1" }, true},
		{"chapter references wrong module", func(c *course.Course) { c.Modules[0].Chapters[0].ModuleID = "mX" }, true},
		{"nested lesson references wrong chapter", func(c *course.Course) { c.Modules[0].Chapters[0].Lessons[0].ChapterID = "chX" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validTree()
			tt.mutate(&c)
			err := course.Validate(c)
			if tt.wantErr && !errors.Is(err, course.ErrMalformed) {
				t.Fatalf("err = %v, want ErrMalformed", err)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
		})
	}
}

func TestSortTreeTieBreak(t *testing.T) {
	c := course.Course{
		ID: "c1",
		Modules: []course.Module{
			// same order_index: created_at decides, then id
			{ID: "mc", CourseID: "c1", Order: 1, CreatedAt: 300},
			{ID: "mb", CourseID: "c1", Order: 1, CreatedAt: 100},
			{ID: "ma", CourseID: "c1", Order: 1, CreatedAt: 100},
			{ID: "m0", CourseID: "c1", Order: 0, CreatedAt: 999},
		},
	}
	course.SortTree(&c)

	want := []string{"m0", "ma", "mb", "mc"}
	for i, m := range c.Modules {
		if m.ID != want[i] {
			t.Fatalf("position %d = %s, want %s", i, m.ID, want[i])
		}
	}
}

func TestSortTreeLessons(t *testing.T) {
	c := course.Course{
		ID: "c1",
		Modules: []course.Module{{
			ID: "m1", CourseID: "c1",
			Lessons: []course.Lesson{
				{ID: "l3", ModuleID: "m1", Order: 3},
				{ID: "l1", ModuleID: "m1", Order: 1},
				{ID: "l2", ModuleID: "m1", Order: 2},
			},
		}},
	}
	course.SortTree(&c)
	for i, want := range []string{"l1", "l2", "l3"} {
		if got := c.Modules[0].Lessons[i].ID; got != want {
			t.Fatalf("lesson %d = %s, want %s", i, got, want)
		}
	}
}
