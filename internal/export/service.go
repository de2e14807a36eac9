// Package export renders the registry as an audit bundle: every submission
// in the selection, the ledger entry it produced, and a plain text statement.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/bluecarbon/internal/ledger"
	"github.com/MrJamesThe3rd/bluecarbon/internal/submission"
)

// Item links a submission to its ledger entry, if one exists.
type Item struct {
	Submission *submission.Submission
	Entry      *ledger.Entry
}

// Service handles the export of submissions and the issuance ledger.
type Service struct {
	snapshots submission.Snapshotter
}

func NewService(snapshots submission.Snapshotter) *Service {
	return &Service{snapshots: snapshots}
}

// Export returns the submissions matching the filter in insertion order,
// each paired with the ledger entry recorded for it. Submissions and entries
// come from one snapshot.
func (s *Service) Export(ctx context.Context, filter submission.ListFilter) ([]Item, error) {
	snap, err := s.snapshots.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("taking snapshot: %w", err)
	}

	bySubmission := make(map[uuid.UUID]*ledger.Entry, len(snap.Entries))
	for _, e := range snap.Entries {
		bySubmission[e.SubmissionID] = e
	}

	var items []Item

	for _, sub := range snap.Submissions {
		if filter.Match(sub) {
			items = append(items, Item{Submission: sub, Entry: bySubmission[sub.ID]})
		}
	}

	return items, nil
}

var submissionHeader = []string{
	"id", "project_name", "location", "collection_date", "submitted_by", "state",
	"carbon_value", "decided_by", "decided_at", "outcome", "reason", "rationale",
	"issuance_ref", "issued_by", "issued_at",
}

// WriteSubmissions writes one CSV row per item.
func WriteSubmissions(w io.Writer, items []Item) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(submissionHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, item := range items {
		if err := cw.Write(submissionRow(item.Submission)); err != nil {
			return fmt.Errorf("writing submission %s: %w", item.Submission.ID, err)
		}
	}

	cw.Flush()

	return cw.Error()
}

func submissionRow(s *submission.Submission) []string {
	row := []string{
		s.ID.String(),
		s.ProjectName,
		s.Location.String(),
		s.CollectionDate.Format(time.DateOnly),
		s.SubmittedBy,
		string(s.State),
		carbon(s.CarbonValue),
		"", "", "", "", "",
		"", "", "",
	}

	if d := s.Decision; d != nil {
		row[7] = d.DecidedBy
		row[8] = d.DecidedAt.UTC().Format(time.RFC3339)
		row[9] = string(d.Outcome)
		row[10] = string(d.Reason)
		row[11] = d.Rationale
	}

	if i := s.Issuance; i != nil {
		row[12] = i.IssuanceRef
		row[13] = i.IssuedBy
		row[14] = i.IssuedAt.UTC().Format(time.RFC3339)
	}

	return row
}

// WriteLedger writes the ledger entries of the exported items in issuance order.
func WriteLedger(w io.Writer, entries []*ledger.Entry) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"issuance_ref", "submission_id", "carbon_value", "issued_by", "issued_at"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, e := range entries {
		err := cw.Write([]string{
			e.IssuanceRef,
			e.SubmissionID.String(),
			e.CarbonValue.String(),
			e.IssuedBy,
			e.IssuedAt.UTC().Format(time.RFC3339),
		})
		if err != nil {
			return fmt.Errorf("writing entry %s: %w", e.IssuanceRef, err)
		}
	}

	cw.Flush()

	return cw.Error()
}

// Entries returns the ledger entries attached to items.
func Entries(items []Item) []*ledger.Entry {
	var entries []*ledger.Entry

	for _, item := range items {
		if item.Entry != nil {
			entries = append(entries, item.Entry)
		}
	}

	return entries
}

// Statement renders a human readable summary, one line per submission.
func Statement(items []Item) string {
	var (
		sb    strings.Builder
		total = decimal.Zero
	)

	for _, item := range items {
		s := item.Submission

		status := string(s.State)
		if s.Decision != nil && s.Decision.Reason != submission.ReasonUnspecified {
			status += " (" + string(s.Decision.Reason) + ")"
		}

		ref := "no issuance"
		if item.Entry != nil {
			ref = item.Entry.IssuanceRef
			total = total.Add(item.Entry.CarbonValue)
		}

		fmt.Fprintf(&sb, "* %s | %s | %s | %s t | %s\n",
			s.CollectionDate.Format(time.DateOnly), s.ProjectName, status, s.CarbonValue.StringFixed(2), ref)
	}

	fmt.Fprintf(&sb, "\nCredits issued: %s t across %d submissions\n", total.String(), len(items))

	return sb.String()
}

func carbon(v decimal.Decimal) string {
	if v.IsZero() {
		return ""
	}

	return v.String()
}
