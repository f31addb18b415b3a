package cert

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Aymardds/agrilearn-hub/internal/progress"
	"github.com/Aymardds/agrilearn-hub/internal/quiz"
	"github.com/Aymardds/agrilearn-hub/internal/unlock"
)

// Outcome says what IssueIfEligible did.
type Outcome string

const (
	OutcomeIssued        Outcome = "issued"
	OutcomeAlreadyIssued Outcome = "already_issued"
	OutcomeNotEligible   Outcome = "not_eligible"
)

// Gate is the certificate eligibility gate. The store's uniqueness
// constraint is the real duplicate guard; the pre-check only saves a write.
type Gate struct {
	store    Store
	settings func() Settings
	now      func() time.Time
}

func NewGate(store Store, settings func() Settings) *Gate {
	return &Gate{store: store, settings: settings, now: time.Now}
}

// IssueIfEligible issues at most one certificate per (learner, course).
// Calling it again returns the existing record with OutcomeAlreadyIssued.
// hasFinal and finalAttempts describe the course's final assessment, if any.
func (g *Gate) IssueIfEligible(ctx context.Context, learnerID, courseID string, enr progress.Enrollment, hasFinal bool, finalAttempts []quiz.Attempt) (Certificate, Outcome, error) {
	if existing, err := g.store.Get(ctx, learnerID, courseID); err == nil {
		return existing, OutcomeAlreadyIssued, nil
	} else if !errors.Is(err, ErrNotFound) {
		return Certificate{}, "", err
	}

	if !unlock.CanIssueCertificate(enr, hasFinal, quiz.AnyPassed(finalAttempts)) {
		return Certificate{}, OutcomeNotEligible, nil
	}

	now := g.now()
	snap, err := json.Marshal(g.settings())
	if err != nil {
		return Certificate{}, "", err
	}
	c := Certificate{
		ID:         uuid.NewString(),
		LearnerID:  learnerID,
		CourseID:   courseID,
		Number:     certNumber(now),
		VerifyCode: uuid.NewString(),
		Snapshot:   string(snap),
		IssuedAt:   now.Unix(),
	}
	if err := g.store.Create(ctx, c); err != nil {
		if errors.Is(err, ErrConflict) {
			// lost the race to a concurrent issuance; theirs stands
			existing, gerr := g.store.Get(ctx, learnerID, courseID)
			if gerr != nil {
				return Certificate{}, "", gerr
			}
			return existing, OutcomeAlreadyIssued, nil
		}
		return Certificate{}, "", err
	}
	return c, OutcomeIssued, nil
}

func certNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("ALH-%s-%s", now.Format("20060102"), suffix)
}
