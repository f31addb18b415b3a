// Package unlock decides when a learner may start the next gated step:
// a module quiz, the course final assessment, or certificate issuance.
// Every rule fails closed — on malformed input the answer is "locked",
// never an error that a caller might mistake for "open".
package unlock

import (
	"github.com/Aymardds/agrilearn-hub/internal/course"
	"github.com/Aymardds/agrilearn-hub/internal/progress"
)

// ModuleQuizState summarizes a module's quiz for final-assessment gating.
type ModuleQuizState struct {
	HasQuiz bool
	Passed  bool // at least one passing attempt recorded
}

// Engine evaluates gating rules against one validated course tree.
// Construction validates once; a malformed tree locks everything.
type Engine struct {
	course course.Course
	valid  bool
}

func NewEngine(c course.Course) Engine {
	return Engine{course: c, valid: course.Validate(c) == nil}
}

// CanStartModuleQuiz applies the module gate. Modules holding live lessons
// unlock on attendance: every live lesson must be marked attended (a form of
// completion), regardless of whether the scheduled session time has passed.
// Modules without live lessons unlock on full lesson completion.
func (e Engine) CanStartModuleQuiz(moduleID string, snap progress.Snapshot, attended map[string]bool) bool {
	if !e.valid {
		return false
	}
	m, ok := e.moduleByID(moduleID)
	if !ok {
		return false
	}
	if live := m.LiveLessons(); len(live) > 0 {
		for _, l := range live {
			if !attended[l.ID] {
				return false
			}
		}
		return true
	}
	mp, ok := snap.Modules[moduleID]
	if !ok {
		return false
	}
	return mp.Completed
}

// CanStartFinalAssessment requires every module's lessons completed and, for
// modules that carry a quiz, a recorded passing attempt. A module without a
// quiz does not block.
func (e Engine) CanStartFinalAssessment(snap progress.Snapshot, quizzes map[string]ModuleQuizState) bool {
	if !e.valid || len(e.course.Modules) == 0 {
		return false
	}
	for _, m := range e.course.Modules {
		mp, ok := snap.Modules[m.ID]
		if !ok || !mp.Completed {
			return false
		}
		if st, ok := quizzes[m.ID]; ok && st.HasQuiz && !st.Passed {
			return false
		}
	}
	return true
}

// CanIssueCertificate is the final gate: exact 100% progress, plus a passing
// final-assessment attempt when the course has one. Without a final
// assessment, completion alone suffices.
func CanIssueCertificate(enr progress.Enrollment, hasFinal, finalPassed bool) bool {
	if enr.ProgressPct != 100 {
		return false
	}
	if hasFinal && !finalPassed {
		return false
	}
	return true
}

func (e Engine) moduleByID(id string) (course.Module, bool) {
	for _, m := range e.course.Modules {
		if m.ID == id {
			return m, true
		}
	}
	return course.Module{}, false
}
