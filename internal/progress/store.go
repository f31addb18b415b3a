package progress

import (
	"context"
	"errors"
)

// ErrNotEnrolled is returned when a progress operation requires an
// enrollment that does not exist.
var ErrNotEnrolled = errors.New("learner not enrolled in course")

// Store is the enrollment/completion side of the progress store.
//
// MarkLessonComplete covers the whole flow in one atomic step: record the
// completion, recompute the owning course's snapshot and write the
// enrollment percentage. Splitting those into separate calls is what left
// progress stale in the old client-driven design.
type Store interface {
	// Enroll creates the (learner, course) enrollment. If one already
	// exists it is returned unchanged; duplicate enrollment is the desired
	// state, not an error.
	Enroll(ctx context.Context, learnerID, courseID string) (Enrollment, error)
	GetEnrollment(ctx context.Context, learnerID, courseID string) (Enrollment, error)
	ListEnrollments(ctx context.Context, learnerID string) ([]Enrollment, error)

	// MarkLessonComplete is idempotent; re-completion refreshes the
	// timestamp and recomputes to the same percentage.
	MarkLessonComplete(ctx context.Context, learnerID, lessonID string) (Snapshot, error)
	CompletedLessons(ctx context.Context, learnerID, courseID string) (map[string]bool, error)

	// CourseProgress recomputes the snapshot from current completions.
	CourseProgress(ctx context.Context, learnerID, courseID string) (Snapshot, error)
}
