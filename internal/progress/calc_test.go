package progress_test

import (
	"fmt"
	"testing"

	"github.com/Aymardds/agrilearn-hub/internal/course"
	"github.com/Aymardds/agrilearn-hub/internal/progress"
)

func twoModuleCourse() course.Course {
	return course.Course{
		ID: "c1",
		Modules: []course.Module{
			{
				ID: "m1", CourseID: "c1",
				Lessons: []course.Lesson{
					{ID: "l1", ModuleID: "m1"},
					{ID: "l2", ModuleID: "m1"},
				},
				Chapters: []course.Chapter{
					{ID: "ch1", ModuleID: "m1", Lessons: []course.Lesson{
						{ID: "l3", ModuleID: "m1", ChapterID: "ch1"},
					}},
				},
			},
			{
				ID: "m2", CourseID: "c1",
				Lessons: []course.Lesson{
					{ID: "l4", ModuleID: "m2"},
					{ID: "l5", ModuleID: "m2"},
				},
			},
		},
	}
}

func TestComputePercentage(t *testing.T) {
	c := twoModuleCourse() // 5 lessons total

	tests := []struct {
		name      string
		completed []string
		wantPct   int
		wantDone  int
	}{
		{"none", nil, 0, 0},
		{"one of five", []string{"l1"}, 20, 1},
		{"three of five", []string{"l1", "l2", "l3"}, 60, 3},
		{"all five", []string{"l1", "l2", "l3", "l4", "l5"}, 100, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := progress.Compute(c, progress.CompletedSet(tt.completed))
			if snap.Percentage != tt.wantPct {
				t.Fatalf("percentage = %d, want %d", snap.Percentage, tt.wantPct)
			}
			if snap.CompletedCount != tt.wantDone {
				t.Fatalf("completed count = %d, want %d", snap.CompletedCount, tt.wantDone)
			}
			if snap.TotalCount != 5 {
				t.Fatalf("total count = %d, want 5", snap.TotalCount)
			}
		})
	}
}

func TestComputeModuleCompletion(t *testing.T) {
	c := twoModuleCourse()
	snap := progress.Compute(c, progress.CompletedSet([]string{"l1", "l2", "l3"}))

	if !snap.Modules["m1"].Completed {
		t.Fatalf("m1 should be completed")
	}
	if snap.Modules["m2"].Completed {
		t.Fatalf("m2 should not be completed")
	}
}

func TestComputeNeverReportsHundredEarly(t *testing.T) {
	// 200 lessons, 199 complete: plain rounding would yield 100.
	var c course.Course
	c.ID = "big"
	m := course.Module{ID: "m1", CourseID: "big"}
	var done []string
	for i := 0; i < 200; i++ {
		id := fmt.Sprintf("l%03d", i)
		m.Lessons = append(m.Lessons, course.Lesson{ID: id, ModuleID: "m1"})
		if i < 199 {
			done = append(done, id)
		}
	}
	c.Modules = []course.Module{m}

	snap := progress.Compute(c, progress.CompletedSet(done))
	if snap.Percentage != 99 {
		t.Fatalf("percentage = %d, want 99 (clamped until fully complete)", snap.Percentage)
	}
}

func TestComputeMonotonic(t *testing.T) {
	c := twoModuleCourse()
	ids := c.LessonIDs()
	prev := -1
	for i := 0; i <= len(ids); i++ {
		snap := progress.Compute(c, progress.CompletedSet(ids[:i]))
		if snap.Percentage < prev {
			t.Fatalf("percentage dropped from %d to %d at %d completions", prev, snap.Percentage, i)
		}
		prev = snap.Percentage
	}
	if prev != 100 {
		t.Fatalf("final percentage = %d, want 100", prev)
	}
}

func TestComputeZeroLessonModule(t *testing.T) {
	c := course.Course{
		ID: "c1",
		Modules: []course.Module{
			{ID: "m1", CourseID: "c1", Lessons: []course.Lesson{{ID: "l1", ModuleID: "m1"}}},
			{ID: "empty", CourseID: "c1"},
		},
	}
	snap := progress.Compute(c, progress.CompletedSet([]string{"l1"}))
	if snap.Modules["empty"].Completed {
		t.Fatalf("empty module must never count as completed")
	}
	if snap.Percentage != 100 {
		t.Fatalf("percentage = %d, want 100 (empty module contributes no lessons)", snap.Percentage)
	}
}

func TestComputeEmptyCourse(t *testing.T) {
	snap := progress.Compute(course.Course{ID: "c1"}, nil)
	if snap.Percentage != 0 || snap.TotalCount != 0 {
		t.Fatalf("empty course: pct=%d total=%d, want 0/0", snap.Percentage, snap.TotalCount)
	}
}
