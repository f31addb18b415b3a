package course

// Status is the course review lifecycle. Courses are created as draft,
// submitted for review, then approved (or rejected) and finally published.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusPublished Status = "published"
)

type LessonType string

const (
	LessonVideo    LessonType = "video"
	LessonDocument LessonType = "document"
	LessonText     LessonType = "text"
	LessonLive     LessonType = "live"
)

type Lesson struct {
	ID        string     `json:"id"`
	ModuleID  string     `json:"module_id"`
	ChapterID string     `json:"chapter_id,omitempty"` // empty for module-root lessons
	Title     string     `json:"title"`
	Type      LessonType `json:"type"`
	Order     int        `json:"order_index"`
	LiveAt    int64      `json:"live_at,omitempty"` // scheduled session time for live lessons
	CreatedAt int64      `json:"created_at,omitempty"`
}

type Chapter struct {
	ID        string   `json:"id"`
	ModuleID  string   `json:"module_id"`
	Title     string   `json:"title"`
	Order     int      `json:"order_index"`
	CreatedAt int64    `json:"created_at,omitempty"`
	Lessons   []Lesson `json:"lessons,omitempty"`
}

type Module struct {
	ID        string    `json:"id"`
	CourseID  string    `json:"course_id"`
	Title     string    `json:"title"`
	Order     int       `json:"order_index"`
	CreatedAt int64     `json:"created_at,omitempty"`
	Lessons   []Lesson  `json:"lessons,omitempty"` // module-root lessons only
	Chapters  []Chapter `json:"chapters,omitempty"`
}

type Course struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Category     string `json:"category,omitempty"`
	Status       Status `json:"status"`
	InstructorID string `json:"instructor_id"`
	ActiveFrom   int64  `json:"active_from,omitempty"`
	ActiveUntil  int64  `json:"active_until,omitempty"`
	CreatedAt    int64  `json:"created_at,omitempty"`

	Modules []Module `json:"modules,omitempty"`
}

// AllLessons returns every lesson reachable from the module, module-root
// lessons first, then chapter lessons in chapter order.
func (m Module) AllLessons() []Lesson {
	out := make([]Lesson, 0, len(m.Lessons))
	out = append(out, m.Lessons...)
	for _, ch := range m.Chapters {
		out = append(out, ch.Lessons...)
	}
	return out
}

// LiveLessons returns the module's live-session lessons (direct or nested).
func (m Module) LiveLessons() []Lesson {
	var out []Lesson
	for _, l := range m.AllLessons() {
		if l.Type == LessonLive {
			out = append(out, l)
		}
	}
	return out
}

// LessonIDs lists every lesson ID reachable from the course's modules.
func (c Course) LessonIDs() []string {
	var out []string
	for _, m := range c.Modules {
		for _, l := range m.AllLessons() {
			out = append(out, l.ID)
		}
	}
	return out
}
