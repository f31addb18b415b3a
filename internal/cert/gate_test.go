package cert_test

import (
	"context"
	"testing"

	"github.com/Aymardds/agrilearn-hub/internal/cert"
	"github.com/Aymardds/agrilearn-hub/internal/progress"
	"github.com/Aymardds/agrilearn-hub/internal/quiz"
)

func testGate() (*cert.Gate, cert.Store) {
	store := cert.NewInMemoryStore()
	gate := cert.NewGate(store, func() cert.Settings {
		return cert.Settings{IssuerName: "AgriLearn Hub", Partners: []string{"FAO"}}
	})
	return gate, store
}

func TestIssueIfEligible(t *testing.T) {
	ctx := context.Background()
	gate, _ := testGate()
	enr := progress.Enrollment{LearnerID: "u1", CourseID: "c1", ProgressPct: 100}

	c, outcome, err := gate.IssueIfEligible(ctx, "u1", "c1", enr, false, nil)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if outcome != cert.OutcomeIssued {
		t.Fatalf("outcome = %s, want issued", outcome)
	}
	if c.Number == "" || c.VerifyCode == "" {
		t.Fatalf("missing number or verify code: %+v", c)
	}
	s, err := c.SnapshotSettings()
	if err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if s.IssuerName != "AgriLearn Hub" {
		t.Fatalf("snapshot issuer = %q", s.IssuerName)
	}

	// Second request returns the same certificate, no duplicate.
	again, outcome, err := gate.IssueIfEligible(ctx, "u1", "c1", enr, false, nil)
	if err != nil {
		t.Fatalf("re-issue: %v", err)
	}
	if outcome != cert.OutcomeAlreadyIssued {
		t.Fatalf("outcome = %s, want already_issued", outcome)
	}
	if again.ID != c.ID || again.Number != c.Number {
		t.Fatalf("re-issue returned a different record: %+v vs %+v", again, c)
	}
}

func TestIssueNotEligible(t *testing.T) {
	ctx := context.Background()
	gate, store := testGate()

	tests := []struct {
		name     string
		enr      progress.Enrollment
		hasFinal bool
		attempts []quiz.Attempt
	}{
		{"incomplete course", progress.Enrollment{ProgressPct: 80}, false, nil},
		{"final not attempted", progress.Enrollment{ProgressPct: 100}, true, nil},
		{"final failed", progress.Enrollment{ProgressPct: 100}, true, []quiz.Attempt{{Passed: false}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, outcome, err := gate.IssueIfEligible(ctx, "u1", "c1", tt.enr, tt.hasFinal, tt.attempts)
			if err != nil {
				t.Fatalf("issue: %v", err)
			}
			if outcome != cert.OutcomeNotEligible {
				t.Fatalf("outcome = %s, want not_eligible", outcome)
			}
		})
	}
	if _, err := store.Get(ctx, "u1", "c1"); err == nil {
		t.Fatalf("ineligible request still wrote a certificate")
	}
}

func TestIssueWithPassedFinal(t *testing.T) {
	ctx := context.Background()
	gate, _ := testGate()
	enr := progress.Enrollment{ProgressPct: 100}
	attempts := []quiz.Attempt{{Passed: false}, {Passed: true}}

	_, outcome, err := gate.IssueIfEligible(ctx, "u1", "c1", enr, true, attempts)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if outcome != cert.OutcomeIssued {
		t.Fatalf("outcome = %s, want issued", outcome)
	}
}

func TestIssueLosesRaceToExisting(t *testing.T) {
	ctx := context.Background()
	store := cert.NewInMemoryStore()
	gate := cert.NewGate(racingStore{store}, func() cert.Settings { return cert.Settings{} })

	enr := progress.Enrollment{ProgressPct: 100}
	got, outcome, err := gate.IssueIfEligible(ctx, "u1", "c1", enr, false, nil)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if outcome != cert.OutcomeAlreadyIssued {
		t.Fatalf("outcome = %s, want already_issued", outcome)
	}
	if got.ID != "winner" {
		t.Fatalf("got %s, want the concurrently created record", got.ID)
	}
}

// racingStore simulates a concurrent issuance sneaking in between the
// pre-check and the insert.
type racingStore struct {
	cert.Store
}

func (r racingStore) Create(ctx context.Context, c cert.Certificate) error {
	_ = r.Store.Create(ctx, cert.Certificate{
		ID: "winner", LearnerID: c.LearnerID, CourseID: c.CourseID,
		Number: "ALH-00000000-RACE", VerifyCode: "race-code",
	})
	return r.Store.Create(ctx, c)
}
