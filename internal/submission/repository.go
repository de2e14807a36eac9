package submission

import (
	"context"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/bluecarbon/internal/ledger"
)

//go:generate mockgen -source=repository.go -destination=repository_mock.go -package=submission
type Repository interface {
	CreateSubmission(ctx context.Context, s *Submission) error
	GetSubmission(ctx context.Context, id uuid.UUID) (*Submission, error)
	ListSubmissions(ctx context.Context, filter ListFilter) ([]*Submission, error)

	// BeginTransition locks the submission against concurrent transitions
	// until Commit or Rollback. Returns ErrNotFound for unknown ids.
	BeginTransition(ctx context.Context, id uuid.UUID) (TransitionTx, error)
}

// TransitionTx is a unit of work over one locked submission. The submission
// update and any ledger append become visible together on Commit.
type TransitionTx interface {
	Submission() *Submission
	SaveSubmission(ctx context.Context, s *Submission) error
	RefExists(ctx context.Context, ref string) (bool, error)
	AppendEntry(ctx context.Context, e *ledger.Entry) error
	Commit() error
	Rollback() error
}

// ListFilter narrows ListSubmissions. Results are in insertion order.
type ListFilter struct {
	State       *State
	SubmittedBy string
}
