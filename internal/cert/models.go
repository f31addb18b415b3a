package cert

import "encoding/json"

// Settings is the styling/partner configuration in force when a certificate
// is issued. It is copied into the record so later settings edits never
// alter certificates already in learners' hands.
type Settings struct {
	IssuerName  string   `json:"issuer_name"`
	Partners    []string `json:"partners,omitempty"`
	CourseTitle string   `json:"course_title,omitempty"`
}

type Certificate struct {
	ID         string `json:"id"`
	LearnerID  string `json:"learner_id"`
	CourseID   string `json:"course_id"`
	Number     string `json:"number"`
	VerifyCode string `json:"verify_code"`
	Snapshot   string `json:"-"` // settings JSON as stored
	IssuedAt   int64  `json:"issued_at"`
}

// SnapshotSettings decodes the stored settings snapshot.
func (c Certificate) SnapshotSettings() (Settings, error) {
	var s Settings
	err := json.Unmarshal([]byte(c.Snapshot), &s)
	return s, err
}
