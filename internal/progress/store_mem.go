package progress

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Aymardds/agrilearn-hub/internal/course"
)

// StructureSource is the single content-tree read the progress store needs.
type StructureSource interface {
	GetStructure(ctx context.Context, courseID string) (course.Course, error)
}

type memoryStore struct {
	mu         sync.Mutex
	structures StructureSource
	enrolls    map[string]Enrollment       // learner|course
	completed  map[string]map[string]int64 // learner -> lesson -> completed_at
}

func NewInMemoryStore(structures StructureSource) Store {
	return &memoryStore{
		structures: structures,
		enrolls:    map[string]Enrollment{},
		completed:  map[string]map[string]int64{},
	}
}

func enrollKey(learnerID, courseID string) string { return learnerID + "|" + courseID }

func (m *memoryStore) Enroll(ctx context.Context, learnerID, courseID string) (Enrollment, error) {
	if _, err := m.structures.GetStructure(ctx, courseID); err != nil {
		return Enrollment{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.enrolls[enrollKey(learnerID, courseID)]; ok {
		return e, nil
	}
	e := Enrollment{
		ID:        uuid.NewString(),
		LearnerID: learnerID,
		CourseID:  courseID,
		CreatedAt: time.Now().Unix(),
	}
	m.enrolls[enrollKey(learnerID, courseID)] = e
	return e, nil
}

func (m *memoryStore) GetEnrollment(_ context.Context, learnerID, courseID string) (Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.enrolls[enrollKey(learnerID, courseID)]
	if !ok {
		return Enrollment{}, fmt.Errorf("enrollment %s/%s: %w", learnerID, courseID, ErrNotEnrolled)
	}
	return e, nil
}

func (m *memoryStore) ListEnrollments(_ context.Context, learnerID string) ([]Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Enrollment
	for _, e := range m.enrolls {
		if e.LearnerID == learnerID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memoryStore) MarkLessonComplete(ctx context.Context, learnerID, lessonID string) (Snapshot, error) {
	m.mu.Lock()
	enrollments := make([]Enrollment, 0, 4)
	for _, e := range m.enrolls {
		if e.LearnerID == learnerID {
			enrollments = append(enrollments, e)
		}
	}
	m.mu.Unlock()

	for _, e := range enrollments {
		c, err := m.structures.GetStructure(ctx, e.CourseID)
		if err != nil {
			return Snapshot{}, err
		}
		if !containsLesson(c, lessonID) {
			continue
		}
		m.mu.Lock()
		set := m.completed[learnerID]
		if set == nil {
			set = map[string]int64{}
			m.completed[learnerID] = set
		}
		set[lessonID] = time.Now().Unix() // last completion wins
		snap := Compute(c, snapshotSet(set))
		e.ProgressPct = snap.Percentage
		if snap.Percentage == 100 && e.CompletedAt == 0 {
			e.CompletedAt = time.Now().Unix()
		}
		m.enrolls[enrollKey(learnerID, e.CourseID)] = e
		m.mu.Unlock()
		return snap, nil
	}
	return Snapshot{}, fmt.Errorf("lesson %s: %w", lessonID, course.ErrNotFound)
}

func (m *memoryStore) CompletedLessons(ctx context.Context, learnerID, courseID string) (map[string]bool, error) {
	c, err := m.structures.GetStructure(ctx, courseID)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	set := m.completed[learnerID]
	out := map[string]bool{}
	for _, id := range c.LessonIDs() {
		if _, ok := set[id]; ok {
			out[id] = true
		}
	}
	return out, nil
}

func (m *memoryStore) CourseProgress(ctx context.Context, learnerID, courseID string) (Snapshot, error) {
	if _, err := m.GetEnrollment(ctx, learnerID, courseID); err != nil {
		return Snapshot{}, err
	}
	c, err := m.structures.GetStructure(ctx, courseID)
	if err != nil {
		return Snapshot{}, err
	}
	completed, err := m.CompletedLessons(ctx, learnerID, courseID)
	if err != nil {
		return Snapshot{}, err
	}
	return Compute(c, completed), nil
}

func containsLesson(c course.Course, lessonID string) bool {
	for _, id := range c.LessonIDs() {
		if id == lessonID {
			return true
		}
	}
	return false
}

func snapshotSet(m map[string]int64) map[string]bool {
	out := make(map[string]bool, len(m))
	for k := range m {
		out[k] = true
	}
	return out
}
