package submission

import (
	"context"

	"github.com/MrJamesThe3rd/bluecarbon/internal/ledger"
)

// Snapshot is one consistent view of the registry. No transition commits
// between the read of Submissions and the read of Entries.
type Snapshot struct {
	Submissions []*Submission
	Entries     []*ledger.Entry
}

// Snapshotter reads submissions, in insertion order, together with the
// ledger entries, in issuance order.
type Snapshotter interface {
	Snapshot(ctx context.Context) (*Snapshot, error)
}

// Match reports whether s passes the filter.
func (f ListFilter) Match(s *Submission) bool {
	if f.State != nil && s.State != *f.State {
		return false
	}

	return f.SubmittedBy == "" || s.SubmittedBy == f.SubmittedBy
}
