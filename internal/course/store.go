package course

import "context"

type ListOpts struct {
	Q            string
	Status       Status
	InstructorID string
	Limit        int
	Offset       int
}

// Store is the content-tree side of the progress store. GetStructure returns
// the full nested tree, ordered; writes enforce sibling order-index
// uniqueness so read-side tie-breaks only ever apply to legacy rows.
type Store interface {
	PutCourse(ctx context.Context, c Course) error
	GetCourse(ctx context.Context, id string) (Course, error)
	GetStructure(ctx context.Context, courseID string) (Course, error)
	ListCourses(ctx context.Context, opts ListOpts) ([]Course, error)
	SetStatus(ctx context.Context, courseID string, st Status) error
	// DeleteCourse refuses while enrollments reference the course.
	DeleteCourse(ctx context.Context, courseID string) error

	PutModule(ctx context.Context, m Module) error
	PutChapter(ctx context.Context, ch Chapter) error
	PutLesson(ctx context.Context, l Lesson) error
}
