package export_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/bluecarbon/internal/demo"
	"github.com/MrJamesThe3rd/bluecarbon/internal/export"
	"github.com/MrJamesThe3rd/bluecarbon/internal/ledger"
	"github.com/MrJamesThe3rd/bluecarbon/internal/submission"
	"github.com/MrJamesThe3rd/bluecarbon/internal/submission/store"
)

func seeded(t *testing.T) *export.Service {
	t.Helper()

	mem := store.NewMemory()
	_, err := demo.Seed(context.Background(), submission.NewService(mem, ledger.NewRecorder(mem)))
	require.NoError(t, err)

	return export.NewService(mem)
}

func TestService_Export(t *testing.T) {
	svc := seeded(t)

	items, err := svc.Export(context.Background(), submission.ListFilter{})
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Nil(t, items[0].Entry)
	require.NotNil(t, items[1].Entry)
	assert.Equal(t, items[1].Submission.Issuance.IssuanceRef, items[1].Entry.IssuanceRef)
	assert.Nil(t, items[2].Entry)

	assert.Len(t, export.Entries(items), 1)
}

func TestService_ExportFiltered(t *testing.T) {
	svc := seeded(t)

	items, err := svc.Export(context.Background(), submission.ListFilter{State: new(submission.StateVerified)})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Coastal Wetland Protection", items[0].Submission.ProjectName)
}

type failingSnapshots struct{}

func (failingSnapshots) Snapshot(context.Context) (*submission.Snapshot, error) {
	return nil, errors.New("connection reset")
}

func TestService_ExportSnapshotFails(t *testing.T) {
	_, err := export.NewService(failingSnapshots{}).Export(context.Background(), submission.ListFilter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "taking snapshot")
}

// Entries are paired from the same snapshot as the submissions, so a
// submission without an issuance never carries an entry.
func TestService_ExportPairsFromOneSnapshot(t *testing.T) {
	subID := uuid.New()

	snap := fixedSnapshot{
		Submissions: []*submission.Submission{
			{ID: subID, State: submission.StateIssued, SubmittedBy: "Ocean Conservation NGO"},
			{ID: uuid.New(), State: submission.StateVerified, SubmittedBy: "Blue Ocean Trust"},
		},
		Entries: []*ledger.Entry{{IssuanceRef: "0x01", SubmissionID: subID}},
	}

	items, err := export.NewService(snap).Export(context.Background(), submission.ListFilter{})
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.NotNil(t, items[0].Entry)
	assert.Equal(t, "0x01", items[0].Entry.IssuanceRef)
	assert.Nil(t, items[1].Entry)

	mine, err := export.NewService(snap).Export(context.Background(), submission.ListFilter{SubmittedBy: "Blue Ocean Trust"})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, submission.StateVerified, mine[0].Submission.State)
}

type fixedSnapshot submission.Snapshot

func (f fixedSnapshot) Snapshot(context.Context) (*submission.Snapshot, error) {
	snap := submission.Snapshot(f)
	return &snap, nil
}

func TestWriteSubmissions(t *testing.T) {
	items, err := seeded(t).Export(context.Background(), submission.ListFilter{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, export.WriteSubmissions(&buf, items))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)

	header := records[0]
	assert.Equal(t, "id", header[0])

	pending := records[1]
	assert.Equal(t, "Mangrove Restoration Project", pending[1])
	assert.Equal(t, "-1.2921,36.8219", pending[2])
	assert.Equal(t, "pending", pending[5])
	assert.Equal(t, "150", pending[6])
	assert.Empty(t, pending[7])
	assert.Empty(t, pending[12])

	issued := records[2]
	assert.Equal(t, "issued", issued[5])
	assert.Equal(t, "verifier@example.com", issued[7])
	assert.Equal(t, "confirm", issued[9])
	assert.True(t, strings.HasPrefix(issued[12], "0x"))
	assert.Equal(t, "admin@example.com", issued[13])
}

func TestWriteLedger(t *testing.T) {
	items, err := seeded(t).Export(context.Background(), submission.ListFilter{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, export.WriteLedger(&buf, export.Entries(items)))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, items[1].Submission.ID.String(), records[1][1])
	assert.Equal(t, "200", records[1][2])
}

func TestStatement(t *testing.T) {
	items, err := seeded(t).Export(context.Background(), submission.ListFilter{})
	require.NoError(t, err)

	got := export.Statement(items)

	assert.Contains(t, got, "* 2024-01-15 | Mangrove Restoration Project | pending | 150.00 t | no issuance\n")
	assert.Contains(t, got, "Seagrass Restoration Initiative | issued | 200.00 t | 0x")
	assert.Contains(t, got, "Credits issued: 200 t across 3 submissions")
}
