package syncx

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

// Domain event types appended by the gating flows.
const (
	TypeEnrolled          = "Enrolled"
	TypeLessonCompleted   = "LessonCompleted"
	TypeQuizSubmitted     = "QuizSubmitted"
	TypeCertificateIssued = "CertificateIssued"
)

type Event struct {
	Seq       int64
	SiteID    string
	Type      string
	Key       string // natural key, e.g. "learner|lesson"
	DataJSON  string
	CreatedAt int64
}

type EventRepo struct {
	db     *sql.DB
	siteID string
}

func NewEventRepo(db *sql.DB, siteID string) *EventRepo {
	if siteID == "" {
		siteID = "local"
	}
	return &EventRepo{db: db, siteID: siteID}
}

func (r *EventRepo) Append(ctx context.Context, e Event) error {
	if e.SiteID == "" {
		e.SiteID = r.siteID
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO event_log (site_id, typ, key, data, created_at)
		 VALUES ($1,$2,$3,$4,$5)`,
		e.SiteID, e.Type, e.Key, e.DataJSON, time.Now().Unix())
	return err
}

// Emit marshals payload and appends it. Event-log failures never abort the
// domain write that triggered them, so callers ignore the return in the
// request path and it exists for tests.
func (r *EventRepo) Emit(ctx context.Context, typ, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return r.Append(ctx, Event{Type: typ, Key: key, DataJSON: string(data)})
}
