package report_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/bluecarbon/internal/identity"
	"github.com/MrJamesThe3rd/bluecarbon/internal/ledger"
	"github.com/MrJamesThe3rd/bluecarbon/internal/report"
	"github.com/MrJamesThe3rd/bluecarbon/internal/submission"
	"github.com/MrJamesThe3rd/bluecarbon/internal/submission/store"
)

var (
	ngo      = identity.Actor{ID: "Ocean Conservation NGO", Role: identity.RoleSubmitter}
	verifier = identity.Actor{ID: "verifier@example.com", Role: identity.RoleVerifier}
	admin    = identity.Actor{ID: "admin@example.com", Role: identity.RoleAdmin}
)

type fixture struct {
	store  *store.Memory
	svc    *submission.Service
	report *report.Service
}

func newFixture() *fixture {
	mem := store.NewMemory()
	recorder := ledger.NewRecorder(mem)

	return &fixture{
		store:  mem,
		svc:    submission.NewService(mem, recorder),
		report: report.NewService(mem, recorder),
	}
}

func (f *fixture) mangrove(t *testing.T) *submission.Submission {
	t.Helper()

	sub, err := f.svc.Create(context.Background(), ngo, submission.CreateParams{
		ProjectName:    "Mangrove Restoration",
		Location:       "-1.2921,36.8219",
		CollectionDate: "2024-01-15",
		SubmittedBy:    "Ocean Conservation NGO",
	})
	require.NoError(t, err)
	require.Equal(t, submission.StatePending, sub.State)

	return sub
}

func value(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func TestLifecycle_IssueIncreasesTotal(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	sub := f.mangrove(t)

	before, err := f.report.Summary(ctx)
	require.NoError(t, err)

	verified, err := f.svc.ApplyTransition(ctx, verifier, sub.ID, submission.Transition{
		Event:       submission.EventVerifyConfirm,
		CarbonValue: value(150),
	})
	require.NoError(t, err)
	assert.Equal(t, submission.StateVerified, verified.State)
	assert.Equal(t, verifier.ID, verified.Decision.DecidedBy)

	issued, err := f.svc.ApplyTransition(ctx, admin, sub.ID, submission.Transition{Event: submission.EventIssueCredits})
	require.NoError(t, err)
	assert.Equal(t, submission.StateIssued, issued.State)

	entries, err := f.report.RecentIssuances(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, decimal.NewFromInt(150).Equal(entries[0].CarbonValue))

	after, err := f.report.Summary(ctx)
	require.NoError(t, err)
	assert.True(t, after.TotalIssued.Sub(before.TotalIssued).Equal(decimal.NewFromInt(150)))
	assert.True(t, after.TotalIssued.Equal(after.LedgerTotal))
	assert.Equal(t, 1, after.Issued)
	assert.Equal(t, 1, after.LedgerEntries)
}

func TestLifecycle_RejectedCannotBeIssued(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	sub := f.mangrove(t)

	rejected, err := f.svc.ApplyTransition(ctx, verifier, sub.ID, submission.Transition{Event: submission.EventVerifyReject})
	require.NoError(t, err)
	assert.Equal(t, submission.StateRejected, rejected.State)

	_, err = f.svc.ApplyTransition(ctx, admin, sub.ID, submission.Transition{Event: submission.EventIssueCredits})
	assert.ErrorIs(t, err, submission.ErrIllegalState)

	entries, err := f.report.RecentIssuances(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLifecycle_SubmitterCannotIssue(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	sub := f.mangrove(t)

	_, err := f.svc.ApplyTransition(ctx, ngo, sub.ID, submission.Transition{Event: submission.EventIssueCredits})
	assert.ErrorIs(t, err, submission.ErrUnauthorized)

	stored, err := f.svc.Get(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, submission.StatePending, stored.State)
}

func TestSummary(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	// pending, verified, issued, rejected (fraud), rejected (other)
	subs := make([]*submission.Submission, 5)
	for i := range subs {
		subs[i] = f.mangrove(t)
	}

	for _, i := range []int{1, 2} {
		_, err := f.svc.ApplyTransition(ctx, verifier, subs[i].ID, submission.Transition{
			Event:       submission.EventVerifyConfirm,
			CarbonValue: value(int64(100 * i)),
		})
		require.NoError(t, err)
	}

	_, err := f.svc.ApplyTransition(ctx, admin, subs[2].ID, submission.Transition{Event: submission.EventIssueCredits})
	require.NoError(t, err)

	_, err = f.svc.ApplyTransition(ctx, verifier, subs[3].ID, submission.Transition{
		Event:  submission.EventVerifyReject,
		Reason: submission.ReasonFraudDetected,
	})
	require.NoError(t, err)

	_, err = f.svc.ApplyTransition(ctx, verifier, subs[4].ID, submission.Transition{
		Event:  submission.EventVerifyReject,
		Reason: submission.ReasonInsufficientEvidence,
	})
	require.NoError(t, err)

	sum, err := f.report.Summary(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Pending)
	assert.Equal(t, 1, sum.Verified)
	assert.Equal(t, 2, sum.Rejected)
	assert.Equal(t, 1, sum.Issued)
	assert.Equal(t, 1, sum.Flagged)
	assert.Equal(t, 1, sum.PendingIssuance)
	assert.Equal(t, "200", sum.TotalIssued.String())
	assert.Equal(t, "200", sum.LedgerTotal.String())
	assert.InDelta(t, 50.0, sum.VerificationRate, 0.001)
}

func TestSummary_Empty(t *testing.T) {
	sum, err := newFixture().report.Summary(context.Background())
	require.NoError(t, err)

	assert.Zero(t, sum.VerificationRate)
	assert.True(t, sum.TotalIssued.IsZero())
	assert.Zero(t, sum.LedgerEntries)
}

func TestReconcile_Consistent(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	sub := f.mangrove(t)

	_, err := f.svc.ApplyTransition(ctx, verifier, sub.ID, submission.Transition{
		Event:       submission.EventVerifyConfirm,
		CarbonValue: value(150),
	})
	require.NoError(t, err)

	_, err = f.svc.ApplyTransition(ctx, admin, sub.ID, submission.Transition{Event: submission.EventIssueCredits})
	require.NoError(t, err)

	rec, err := f.report.Reconcile(ctx)
	require.NoError(t, err)
	assert.True(t, rec.Consistent)
	assert.Empty(t, rec.Mismatches)
	assert.Equal(t, "150", rec.StoreTotal.String())
}

type fakeSnapshot submission.Snapshot

func (f fakeSnapshot) Snapshot(context.Context) (*submission.Snapshot, error) {
	snap := submission.Snapshot(f)
	return &snap, nil
}

func TestReconcile_Mismatches(t *testing.T) {
	issuedID := uuid.New()
	missingID := uuid.New()
	orphanID := uuid.New()

	subs := []*submission.Submission{
		{
			ID:          issuedID,
			State:       submission.StateIssued,
			CarbonValue: decimal.NewFromInt(150),
			Issuance:    &submission.Issuance{IssuanceRef: "0x01"},
		},
		{
			ID:          missingID,
			State:       submission.StateIssued,
			CarbonValue: decimal.NewFromInt(20),
			Issuance:    &submission.Issuance{IssuanceRef: "0x02"},
		},
	}

	entries := []*ledger.Entry{
		{IssuanceRef: "0x01", SubmissionID: issuedID, CarbonValue: decimal.NewFromInt(140)},
		{IssuanceRef: "0x03", SubmissionID: orphanID, CarbonValue: decimal.NewFromInt(5)},
	}

	snap := fakeSnapshot{Submissions: subs, Entries: entries}

	rec, err := report.NewService(snap, ledger.NewRecorder(nil)).Reconcile(context.Background())
	require.NoError(t, err)

	assert.False(t, rec.Consistent)
	assert.Len(t, rec.Mismatches, 3)

	ids := make(map[uuid.UUID]bool)
	for _, m := range rec.Mismatches {
		ids[m.SubmissionID] = true
	}

	assert.True(t, ids[issuedID])
	assert.True(t, ids[missingID])
	assert.True(t, ids[orphanID])
	assert.Equal(t, "170", rec.StoreTotal.String())
	assert.Equal(t, "145", rec.LedgerTotal.String())
}

// interleavingStore issues credits the first time the ledger is read on its
// own, as an administrator acting between two reads would.
type interleavingStore struct {
	*store.Memory
	once  sync.Once
	issue func()
}

func (s *interleavingStore) ListEntries(ctx context.Context) ([]*ledger.Entry, error) {
	s.once.Do(s.issue)
	return s.Memory.ListEntries(ctx)
}

func TestReconcile_IssuanceBetweenReads(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	sub := f.mangrove(t)

	_, err := f.svc.ApplyTransition(ctx, verifier, sub.ID, submission.Transition{
		Event:       submission.EventVerifyConfirm,
		CarbonValue: value(150),
	})
	require.NoError(t, err)

	racing := &interleavingStore{Memory: f.store}
	racing.issue = func() {
		_, err := f.svc.ApplyTransition(ctx, admin, sub.ID, submission.Transition{Event: submission.EventIssueCredits})
		require.NoError(t, err)
	}

	reports := report.NewService(racing, ledger.NewRecorder(racing))

	rec, err := reports.Reconcile(ctx)
	require.NoError(t, err)
	assert.True(t, rec.Consistent, "mismatches: %v", rec.Mismatches)

	sum, err := reports.Summary(ctx)
	require.NoError(t, err)
	assert.True(t, sum.TotalIssued.Equal(sum.LedgerTotal))

	// The ledger read fires the issuance; the next snapshot carries both halves.
	entries, err := reports.RecentIssuances(ctx, 5)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	rec, err = reports.Reconcile(ctx)
	require.NoError(t, err)
	assert.True(t, rec.Consistent, "mismatches: %v", rec.Mismatches)
	assert.Equal(t, "150", rec.StoreTotal.String())
	assert.Equal(t, "150", rec.LedgerTotal.String())
}

func TestReconcile_DuringConcurrentIssuance(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	const n = 20

	subs := make([]*submission.Submission, n)
	for i := range subs {
		subs[i] = f.mangrove(t)

		_, err := f.svc.ApplyTransition(ctx, verifier, subs[i].ID, submission.Transition{
			Event:       submission.EventVerifyConfirm,
			CarbonValue: value(int64(i + 1)),
		})
		require.NoError(t, err)
	}

	done := make(chan struct{})

	go func() {
		defer close(done)

		for _, sub := range subs {
			_, err := f.svc.ApplyTransition(ctx, admin, sub.ID, submission.Transition{Event: submission.EventIssueCredits})
			assert.NoError(t, err)
		}
	}()

	for running := true; running; {
		select {
		case <-done:
			running = false
		default:
		}

		rec, err := f.report.Reconcile(ctx)
		require.NoError(t, err)
		require.True(t, rec.Consistent, "store %s, ledger %s, mismatches %v", rec.StoreTotal, rec.LedgerTotal, rec.Mismatches)

		sum, err := f.report.Summary(ctx)
		require.NoError(t, err)
		require.True(t, sum.TotalIssued.Equal(sum.LedgerTotal))
	}

	sum, err := f.report.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, n, sum.Issued)
	assert.Equal(t, "210", sum.LedgerTotal.String())
}
