package unlock_test

import (
	"testing"

	"github.com/Aymardds/agrilearn-hub/internal/course"
	"github.com/Aymardds/agrilearn-hub/internal/progress"
	"github.com/Aymardds/agrilearn-hub/internal/unlock"
)

func gatedCourse() course.Course {
	return course.Course{
		ID: "c1",
		Modules: []course.Module{
			{
				ID: "m1", CourseID: "c1",
				Lessons: []course.Lesson{
					{ID: "l1", ModuleID: "m1", Type: course.LessonVideo},
					{ID: "l2", ModuleID: "m1", Type: course.LessonText},
				},
			},
			{
				ID: "m2", CourseID: "c1",
				Lessons: []course.Lesson{
					{ID: "live1", ModuleID: "m2", Type: course.LessonLive, LiveAt: 9999999999},
					{ID: "l3", ModuleID: "m2", Type: course.LessonDocument},
				},
			},
		},
	}
}

func snapFor(c course.Course, done ...string) progress.Snapshot {
	return progress.Compute(c, progress.CompletedSet(done))
}

func TestCanStartModuleQuiz(t *testing.T) {
	c := gatedCourse()
	e := unlock.NewEngine(c)

	tests := []struct {
		name     string
		moduleID string
		done     []string
		attended map[string]bool
		want     bool
	}{
		{"incomplete module locked", "m1", []string{"l1"}, nil, false},
		{"complete module unlocked", "m1", []string{"l1", "l2"}, nil, true},
		{"unknown module locked", "m9", []string{"l1", "l2"}, nil, false},
		// m2 holds a live lesson: attendance decides, lesson completion and
		// the scheduled time are irrelevant.
		{"live not attended locked", "m2", []string{"live1", "l3"}, nil, false},
		{"live attended unlocked", "m2", nil, map[string]bool{"live1": true}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.CanStartModuleQuiz(tt.moduleID, snapFor(c, tt.done...), tt.attended)
			if got != tt.want {
				t.Fatalf("CanStartModuleQuiz(%s) = %v, want %v", tt.moduleID, got, tt.want)
			}
		})
	}
}

func TestCanStartFinalAssessment(t *testing.T) {
	c := course.Course{
		ID: "c1",
		Modules: []course.Module{
			{ID: "m1", CourseID: "c1", Lessons: []course.Lesson{{ID: "l1", ModuleID: "m1"}}},
			{ID: "m2", CourseID: "c1", Lessons: []course.Lesson{{ID: "l2", ModuleID: "m2"}}},
		},
	}
	e := unlock.NewEngine(c)
	allDone := snapFor(c, "l1", "l2")

	tests := []struct {
		name    string
		snap    progress.Snapshot
		quizzes map[string]unlock.ModuleQuizState
		want    bool
	}{
		{"lessons incomplete", snapFor(c, "l1"), nil, false},
		{"complete, no module quizzes", allDone, nil, true},
		{"complete, quiz unpassed", allDone, map[string]unlock.ModuleQuizState{
			"m1": {HasQuiz: true, Passed: false},
		}, false},
		{"complete, all quizzes passed", allDone, map[string]unlock.ModuleQuizState{
			"m1": {HasQuiz: true, Passed: true},
			"m2": {HasQuiz: true, Passed: true},
		}, true},
		{"quizless module does not block", allDone, map[string]unlock.ModuleQuizState{
			"m1": {HasQuiz: true, Passed: true},
			"m2": {HasQuiz: false},
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.CanStartFinalAssessment(tt.snap, tt.quizzes); got != tt.want {
				t.Fatalf("CanStartFinalAssessment = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMalformedTreeFailsClosed(t *testing.T) {
	c := gatedCourse()
	c.Modules[0].Lessons[0].ModuleID = "wrong" // dangling reference
	e := unlock.NewEngine(c)

	if e.CanStartModuleQuiz("m1", snapFor(c, "l1", "l2"), nil) {
		t.Fatalf("malformed tree unlocked a module quiz")
	}
	if e.CanStartFinalAssessment(snapFor(c, c.LessonIDs()...), nil) {
		t.Fatalf("malformed tree unlocked the final assessment")
	}
}

func TestEmptyCourseLocksFinal(t *testing.T) {
	e := unlock.NewEngine(course.Course{ID: "c1"})
	if e.CanStartFinalAssessment(progress.Snapshot{CourseID: "c1"}, nil) {
		t.Fatalf("course without modules unlocked the final assessment")
	}
}

func TestCanIssueCertificate(t *testing.T) {
	tests := []struct {
		name        string
		pct         int
		hasFinal    bool
		finalPassed bool
		want        bool
	}{
		{"complete, no final", 100, false, false, true},
		{"complete, final passed", 100, true, true, true},
		{"complete, final not passed", 100, true, false, false},
		{"almost complete", 99, false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enr := progress.Enrollment{ProgressPct: tt.pct}
			if got := unlock.CanIssueCertificate(enr, tt.hasFinal, tt.finalPassed); got != tt.want {
				t.Fatalf("CanIssueCertificate = %v, want %v", got, tt.want)
			}
		})
	}
}
