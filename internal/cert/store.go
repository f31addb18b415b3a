package cert

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("certificate not found")
	// ErrConflict reports a uniqueness violation on (learner, course). The
	// gate maps it to "already issued" rather than surfacing an error.
	ErrConflict = errors.New("certificate already exists")
)

type Store interface {
	// Create must fail with ErrConflict when a certificate for the
	// (learner, course) pair already exists, backed by a storage-level
	// uniqueness constraint rather than a prior read.
	Create(ctx context.Context, c Certificate) error
	Get(ctx context.Context, learnerID, courseID string) (Certificate, error)
	GetByCode(ctx context.Context, verifyCode string) (Certificate, error)
	ListByLearner(ctx context.Context, learnerID string) ([]Certificate, error)
}
