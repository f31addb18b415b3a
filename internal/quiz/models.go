package quiz

// ParentType says what a quiz gates: a single lesson, a module, or the
// whole course (final assessment). Exactly one parent per quiz.
type ParentType string

const (
	ParentLesson ParentType = "lesson"
	ParentModule ParentType = "module"
	ParentFinal  ParentType = "final" // parent_id is the course itself
)

type Option struct {
	Key  string `json:"key"`
	Text string `json:"text,omitempty"`
}

type Question struct {
	ID         string   `json:"id"`
	Prompt     string   `json:"prompt,omitempty"`
	Options    []Option `json:"options,omitempty"`
	CorrectKey string   `json:"correct_key,omitempty"` // stripped when served to learners
	Order      int      `json:"order_index"`
}

type Quiz struct {
	ID           string     `json:"id"`
	CourseID     string     `json:"course_id"`
	Parent       ParentType `json:"parent_type"`
	ParentID     string     `json:"parent_id"`
	Title        string     `json:"title"`
	PassingScore int        `json:"passing_score"`            // percentage, inclusive threshold
	TimeLimitMin int        `json:"time_limit_min,omitempty"` // 0 = untimed
	Questions    []Question `json:"questions"`
	CreatedAt    int64      `json:"created_at,omitempty"`
}

const (
	StatusInProgress = "in_progress"
	StatusSubmitted  = "submitted"
)

type Attempt struct {
	ID          string            `json:"id"`
	QuizID      string            `json:"quiz_id"`
	LearnerID   string            `json:"learner_id"`
	Status      string            `json:"status"`
	Score       int               `json:"score"`
	Passed      bool              `json:"passed"`
	Answers     map[string]string `json:"answers"` // questionID -> chosen option key
	StartedAt   int64             `json:"started_at"`
	Deadline    int64             `json:"deadline,omitempty"` // unix, 0 = untimed
	SubmittedAt int64             `json:"submitted_at,omitempty"`
}

// AnyPassed reports whether any attempt in the list passed.
func AnyPassed(attempts []Attempt) bool {
	for _, a := range attempts {
		if a.Passed {
			return true
		}
	}
	return false
}
