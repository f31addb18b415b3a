package progress

import "github.com/Aymardds/agrilearn-hub/internal/course"

// ModuleProgress is the per-module slice of a course snapshot.
type ModuleProgress struct {
	ModuleID       string `json:"module_id"`
	Completed      bool   `json:"completed"`
	CompletedCount int    `json:"completed_count"`
	TotalCount     int    `json:"total_count"`
}

// Snapshot is the derived progress state for one learner in one course.
type Snapshot struct {
	CourseID       string                    `json:"course_id"`
	Percentage     int                       `json:"percentage"` // 0..100
	CompletedCount int                       `json:"completed_count"`
	TotalCount     int                       `json:"total_count"`
	Modules        map[string]ModuleProgress `json:"modules"`
}

// Compute derives a snapshot from the course tree and the set of completed
// lesson IDs. Pure: no I/O, deterministic for identical inputs.
//
// Percentage is round-half-up, except that 100 is only ever reported when
// every reachable lesson is completed. A module with zero lessons never
// counts as completed, so an empty module cannot unlock its quiz.
func Compute(c course.Course, completed map[string]bool) Snapshot {
	snap := Snapshot{
		CourseID: c.ID,
		Modules:  make(map[string]ModuleProgress, len(c.Modules)),
	}
	for _, m := range c.Modules {
		mp := ModuleProgress{ModuleID: m.ID}
		for _, l := range m.AllLessons() {
			mp.TotalCount++
			if completed[l.ID] {
				mp.CompletedCount++
			}
		}
		mp.Completed = mp.TotalCount > 0 && mp.CompletedCount == mp.TotalCount
		snap.Modules[m.ID] = mp
		snap.TotalCount += mp.TotalCount
		snap.CompletedCount += mp.CompletedCount
	}
	snap.Percentage = percent(snap.CompletedCount, snap.TotalCount)
	return snap
}

func percent(completed, total int) int {
	if total == 0 {
		return 0
	}
	pct := (100*completed + total/2) / total
	if pct >= 100 && completed < total {
		pct = 99 // rounding must not report completion early
	}
	return pct
}

// CompletedSet converts a lesson-ID list into the set form Compute expects.
func CompletedSet(ids []string) map[string]bool {
	m := make(map[string]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}
