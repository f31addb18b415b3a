package progress

// Enrollment links a learner to a course. ProgressPct is only ever written
// from a freshly computed snapshot; CompletedAt is set the first time the
// percentage reaches 100.
type Enrollment struct {
	ID          string `json:"id"`
	LearnerID   string `json:"learner_id"`
	CourseID    string `json:"course_id"`
	ProgressPct int    `json:"progress_percentage"`
	CompletedAt int64  `json:"completed_at,omitempty"`
	CreatedAt   int64  `json:"created_at,omitempty"`
}
