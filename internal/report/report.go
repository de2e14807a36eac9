package report

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/bluecarbon/internal/ledger"
	"github.com/MrJamesThe3rd/bluecarbon/internal/submission"
)

// Service derives dashboard figures from one store snapshot per call.
// Nothing is cached.
type Service struct {
	snapshots submission.Snapshotter
	ledger    *ledger.Recorder
}

func NewService(snapshots submission.Snapshotter, recorder *ledger.Recorder) *Service {
	return &Service{snapshots: snapshots, ledger: recorder}
}

type Summary struct {
	Pending  int
	Verified int
	Rejected int
	Issued   int

	// Flagged counts rejections with reason fraud_detected.
	Flagged int

	// PendingIssuance counts verified submissions awaiting an administrator.
	PendingIssuance int

	TotalIssued   decimal.Decimal
	LedgerEntries int
	LedgerTotal   decimal.Decimal

	// VerificationRate is the share of decided submissions that were
	// confirmed, as a percentage. Zero when nothing has been decided.
	VerificationRate float64
}

// Mismatch describes a submission whose store and ledger views disagree.
type Mismatch struct {
	SubmissionID uuid.UUID
	Problem      string
}

type Reconciliation struct {
	StoreTotal  decimal.Decimal
	LedgerTotal decimal.Decimal
	Mismatches  []Mismatch
	Consistent  bool
}

func (s *Service) load(ctx context.Context) ([]*submission.Submission, []*ledger.Entry, error) {
	snap, err := s.snapshots.Snapshot(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("taking snapshot: %w", err)
	}

	return snap.Submissions, snap.Entries, nil
}

func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	subs, entries, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	sum := &Summary{
		TotalIssued:   decimal.Zero,
		LedgerEntries: len(entries),
		LedgerTotal:   ledger.Total(entries),
	}

	for _, sub := range subs {
		switch sub.State {
		case submission.StatePending:
			sum.Pending++
		case submission.StateVerified:
			sum.Verified++
		case submission.StateRejected:
			sum.Rejected++

			if sub.Decision != nil && sub.Decision.Reason == submission.ReasonFraudDetected {
				sum.Flagged++
			}
		case submission.StateIssued:
			sum.Issued++
			sum.TotalIssued = sum.TotalIssued.Add(sub.CarbonValue)
		}
	}

	sum.PendingIssuance = sum.Verified

	confirmed := sum.Verified + sum.Issued
	if decided := confirmed + sum.Rejected; decided > 0 {
		sum.VerificationRate = float64(confirmed) / float64(decided) * 100
	}

	return sum, nil
}

// Reconcile checks that every issued submission has exactly one ledger entry
// with the same carbon value and reference, and that no entry is orphaned.
func (s *Service) Reconcile(ctx context.Context) (*Reconciliation, error) {
	subs, entries, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	rec := &Reconciliation{
		StoreTotal:  decimal.Zero,
		LedgerTotal: ledger.Total(entries),
	}

	bySubmission := make(map[uuid.UUID][]*ledger.Entry, len(entries))
	for _, e := range entries {
		bySubmission[e.SubmissionID] = append(bySubmission[e.SubmissionID], e)
	}

	seen := make(map[uuid.UUID]bool, len(subs))

	for _, sub := range subs {
		seen[sub.ID] = true
		found := bySubmission[sub.ID]

		if sub.State != submission.StateIssued {
			if len(found) > 0 {
				rec.Mismatches = append(rec.Mismatches, Mismatch{sub.ID, fmt.Sprintf("ledger entry for %s submission", sub.State)})
			}

			continue
		}

		rec.StoreTotal = rec.StoreTotal.Add(sub.CarbonValue)

		switch {
		case len(found) == 0:
			rec.Mismatches = append(rec.Mismatches, Mismatch{sub.ID, "issued without ledger entry"})
		case len(found) > 1:
			rec.Mismatches = append(rec.Mismatches, Mismatch{sub.ID, fmt.Sprintf("%d ledger entries", len(found))})
		case !found[0].CarbonValue.Equal(sub.CarbonValue):
			rec.Mismatches = append(rec.Mismatches, Mismatch{sub.ID, fmt.Sprintf("carbon value %s, ledger %s", sub.CarbonValue, found[0].CarbonValue)})
		case sub.Issuance == nil || sub.Issuance.IssuanceRef != found[0].IssuanceRef:
			rec.Mismatches = append(rec.Mismatches, Mismatch{sub.ID, "issuance reference differs from ledger"})
		}
	}

	for id := range bySubmission {
		if !seen[id] {
			rec.Mismatches = append(rec.Mismatches, Mismatch{id, "ledger entry for unknown submission"})
		}
	}

	rec.Consistent = len(rec.Mismatches) == 0 && rec.StoreTotal.Equal(rec.LedgerTotal)

	return rec, nil
}

// RecentIssuances returns up to n ledger entries, newest first.
func (s *Service) RecentIssuances(ctx context.Context, n int) ([]*ledger.Entry, error) {
	return s.ledger.Recent(ctx, n)
}
