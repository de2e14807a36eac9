package ledger

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLedger struct {
	entries   []*Entry
	appendErr error
}

func (f *fakeLedger) RefExists(_ context.Context, ref string) (bool, error) {
	for _, e := range f.entries {
		if e.IssuanceRef == ref {
			return true, nil
		}
	}

	return false, nil
}

func (f *fakeLedger) AppendEntry(_ context.Context, e *Entry) error {
	if f.appendErr != nil {
		return f.appendErr
	}

	f.entries = append(f.entries, e)

	return nil
}

func (f *fakeLedger) ListEntries(context.Context) ([]*Entry, error) {
	return f.entries, nil
}

func validRecord() Record {
	return Record{
		SubmissionID: uuid.New(),
		CarbonValue:  decimal.NewFromInt(150),
		IssuedBy:     "admin@example.com",
		IssuedAt:     time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestRecorder_Record(t *testing.T) {
	fl := &fakeLedger{}
	r := NewRecorder(fl)

	rec := validRecord()

	e, err := r.Record(context.Background(), fl, rec)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(e.IssuanceRef, "0x"))
	assert.Len(t, e.IssuanceRef, 2+2*refBytes)
	assert.Equal(t, rec.SubmissionID, e.SubmissionID)
	assert.Equal(t, "150", e.CarbonValue.String())
	assert.Equal(t, rec.IssuedBy, e.IssuedBy)
	assert.Equal(t, rec.IssuedAt, e.IssuedAt)
	require.Len(t, fl.entries, 1)
}

func TestRecorder_Record_RetriesOnCollision(t *testing.T) {
	fl := &fakeLedger{entries: []*Entry{{IssuanceRef: "0xdup"}}}
	r := NewRecorder(fl)

	refs := []string{"0xdup", "0xdup", "0xfresh"}
	r.newRef = func() (string, error) {
		ref := refs[0]
		refs = refs[1:]

		return ref, nil
	}

	e, err := r.Record(context.Background(), fl, validRecord())
	require.NoError(t, err)
	assert.Equal(t, "0xfresh", e.IssuanceRef)
}

func TestRecorder_Record_Exhausted(t *testing.T) {
	fl := &fakeLedger{entries: []*Entry{{IssuanceRef: "0xdup"}}}
	r := NewRecorder(fl)
	r.newRef = func() (string, error) { return "0xdup", nil }

	_, err := r.Record(context.Background(), fl, validRecord())
	assert.ErrorIs(t, err, ErrRefExhausted)
	assert.Len(t, fl.entries, 1)
}

func TestRecorder_Record_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *Record)
	}{
		{name: "NoSubmission", mutate: func(r *Record) { r.SubmissionID = uuid.Nil }},
		{name: "ZeroValue", mutate: func(r *Record) { r.CarbonValue = decimal.Zero }},
		{name: "NegativeValue", mutate: func(r *Record) { r.CarbonValue = decimal.NewFromInt(-3) }},
		{name: "NoIssuer", mutate: func(r *Record) { r.IssuedBy = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fl := &fakeLedger{}
			rec := validRecord()
			tt.mutate(&rec)

			_, err := NewRecorder(fl).Record(context.Background(), fl, rec)
			assert.Error(t, err)
			assert.Empty(t, fl.entries)
		})
	}
}

func TestRecorder_Record_AppendError(t *testing.T) {
	fl := &fakeLedger{appendErr: errors.New("disk full")}

	_, err := NewRecorder(fl).Record(context.Background(), fl, validRecord())
	assert.ErrorContains(t, err, "disk full")
}

func TestRecorder_Recent(t *testing.T) {
	fl := &fakeLedger{}
	r := NewRecorder(fl)

	for range 3 {
		_, err := r.Record(context.Background(), fl, validRecord())
		require.NoError(t, err)
	}

	recent, err := r.Recent(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, fl.entries[2], recent[0])
	assert.Equal(t, fl.entries[1], recent[1])

	all, err := r.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestTotal(t *testing.T) {
	entries := []*Entry{
		{CarbonValue: decimal.NewFromInt(150)},
		{CarbonValue: decimal.RequireFromString("200.5")},
	}

	assert.Equal(t, "350.5", Total(entries).String())
	assert.True(t, Total(nil).IsZero())
}
