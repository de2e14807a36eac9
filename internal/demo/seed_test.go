package demo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/bluecarbon/internal/demo"
	"github.com/MrJamesThe3rd/bluecarbon/internal/ledger"
	"github.com/MrJamesThe3rd/bluecarbon/internal/report"
	"github.com/MrJamesThe3rd/bluecarbon/internal/submission"
	"github.com/MrJamesThe3rd/bluecarbon/internal/submission/store"
)

func TestSeed(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	recorder := ledger.NewRecorder(mem)

	subs, err := demo.Seed(ctx, submission.NewService(mem, recorder))
	require.NoError(t, err)
	require.Len(t, subs, 3)

	assert.Equal(t, submission.StatePending, subs[0].State)
	assert.Equal(t, submission.StateIssued, subs[1].State)
	assert.Equal(t, submission.StateVerified, subs[2].State)

	for _, s := range subs {
		assert.NoError(t, s.Check())
	}

	sum, err := report.NewService(mem, recorder).Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, "200", sum.TotalIssued.String())
	assert.Equal(t, 1, sum.PendingIssuance)
	assert.Equal(t, 1, sum.LedgerEntries)
}
