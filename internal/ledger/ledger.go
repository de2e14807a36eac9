package ledger

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	refBytes       = 32
	maxRefAttempts = 5
)

// ErrRefExhausted is returned when no unused issuance reference could be minted.
var ErrRefExhausted = errors.New("could not mint a unique issuance reference")

// Entry is an immutable audit record, one per issuance.
type Entry struct {
	IssuanceRef  string
	SubmissionID uuid.UUID
	CarbonValue  decimal.Decimal
	IssuedBy     string
	IssuedAt     time.Time
}

// Appender is the write side of the ledger, scoped to the unit of work that
// also moves the submission into issued.
type Appender interface {
	RefExists(ctx context.Context, ref string) (bool, error)
	AppendEntry(ctx context.Context, e *Entry) error
}

// Reader lists committed entries in creation order.
type Reader interface {
	ListEntries(ctx context.Context) ([]*Entry, error)
}

// Record holds the inputs of a single issuance.
type Record struct {
	SubmissionID uuid.UUID
	CarbonValue  decimal.Decimal
	IssuedBy     string
	IssuedAt     time.Time
}

type Recorder struct {
	reader Reader
	newRef func() (string, error)
}

func NewRecorder(reader Reader) *Recorder {
	return &Recorder{reader: reader, newRef: randomRef}
}

// Record mints a reference that is unused in this ledger and appends the entry.
func (r *Recorder) Record(ctx context.Context, a Appender, rec Record) (*Entry, error) {
	if rec.SubmissionID == uuid.Nil {
		return nil, fmt.Errorf("recording issuance: missing submission id")
	}

	if !rec.CarbonValue.IsPositive() {
		return nil, fmt.Errorf("recording issuance: carbon value must be positive, got %s", rec.CarbonValue)
	}

	if rec.IssuedBy == "" {
		return nil, fmt.Errorf("recording issuance: missing issuer")
	}

	ref, err := r.mintRef(ctx, a)
	if err != nil {
		return nil, err
	}

	e := &Entry{
		IssuanceRef:  ref,
		SubmissionID: rec.SubmissionID,
		CarbonValue:  rec.CarbonValue,
		IssuedBy:     rec.IssuedBy,
		IssuedAt:     rec.IssuedAt,
	}

	if err := a.AppendEntry(ctx, e); err != nil {
		return nil, fmt.Errorf("appending ledger entry: %w", err)
	}

	return e, nil
}

func (r *Recorder) mintRef(ctx context.Context, a Appender) (string, error) {
	for range maxRefAttempts {
		ref, err := r.newRef()
		if err != nil {
			return "", fmt.Errorf("generating issuance reference: %w", err)
		}

		exists, err := a.RefExists(ctx, ref)
		if err != nil {
			return "", fmt.Errorf("checking issuance reference: %w", err)
		}

		if !exists {
			return ref, nil
		}
	}

	return "", ErrRefExhausted
}

// ListAll returns every entry in creation order.
func (r *Recorder) ListAll(ctx context.Context) ([]*Entry, error) {
	entries, err := r.reader.ListEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing ledger entries: %w", err)
	}

	return entries, nil
}

// Recent returns up to n entries, newest first.
func (r *Recorder) Recent(ctx context.Context, n int) ([]*Entry, error) {
	entries, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	if n <= 0 || n > len(entries) {
		n = len(entries)
	}

	recent := make([]*Entry, 0, n)
	for i := len(entries) - 1; i >= len(entries)-n; i-- {
		recent = append(recent, entries[i])
	}

	return recent, nil
}

// Total sums the carbon value of the given entries.
func Total(entries []*Entry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.CarbonValue)
	}

	return total
}

// randomRef returns a 0x-prefixed hex token shaped like a transaction hash.
func randomRef() (string, error) {
	b := make([]byte, refBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return "0x" + hex.EncodeToString(b), nil
}
