package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/bluecarbon/internal/ledger"
	"github.com/MrJamesThe3rd/bluecarbon/internal/submission"
)

// Memory keeps submissions and ledger entries in process memory. Records are
// cloned on the way in and out so callers never share state with the store.
type Memory struct {
	mu      sync.RWMutex
	subs    map[uuid.UUID]*submission.Submission
	order   []uuid.UUID
	entries []*ledger.Entry
	refs    map[string]struct{}
	issued  map[uuid.UUID]struct{}

	locksMu sync.Mutex
	locks   map[uuid.UUID]chan struct{}
}

func NewMemory() *Memory {
	return &Memory{
		subs:   make(map[uuid.UUID]*submission.Submission),
		refs:   make(map[string]struct{}),
		issued: make(map[uuid.UUID]struct{}),
		locks:  make(map[uuid.UUID]chan struct{}),
	}
}

func (m *Memory) CreateSubmission(_ context.Context, s *submission.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.subs[s.ID]; ok {
		return fmt.Errorf("creating submission: id %s already exists", s.ID)
	}

	m.subs[s.ID] = s.Clone()
	m.order = append(m.order, s.ID)

	return nil
}

func (m *Memory) GetSubmission(_ context.Context, id uuid.UUID) (*submission.Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.subs[id]
	if !ok {
		return nil, fmt.Errorf("%w: submission %s", submission.ErrNotFound, id)
	}

	return s.Clone(), nil
}

func (m *Memory) ListSubmissions(_ context.Context, filter submission.ListFilter) ([]*submission.Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*submission.Submission

	for _, id := range m.order {
		if s := m.subs[id]; filter.Match(s) {
			out = append(out, s.Clone())
		}
	}

	return out, nil
}

func (m *Memory) ListEntries(_ context.Context) ([]*ledger.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.copyEntries(), nil
}

// Snapshot copies submissions and entries under one read lock. Commit takes
// the write lock, so a transition is either wholly in the view or absent.
func (m *Memory) Snapshot(_ context.Context) (*submission.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	subs := make([]*submission.Submission, 0, len(m.order))
	for _, id := range m.order {
		subs = append(subs, m.subs[id].Clone())
	}

	return &submission.Snapshot{Submissions: subs, Entries: m.copyEntries()}, nil
}

// copyEntries expects m.mu to be held.
func (m *Memory) copyEntries() []*ledger.Entry {
	out := make([]*ledger.Entry, 0, len(m.entries))

	for _, e := range m.entries {
		c := *e
		out = append(out, &c)
	}

	return out
}

func (m *Memory) lockFor(id uuid.UUID) chan struct{} {
	m.locksMu.Lock()
	defer m.locksMu.Unlock()

	l, ok := m.locks[id]
	if !ok {
		l = make(chan struct{}, 1)
		m.locks[id] = l
	}

	return l
}

// BeginTransition waits for exclusive access to one submission. Transitions
// on different submissions do not block each other.
func (m *Memory) BeginTransition(ctx context.Context, id uuid.UUID) (submission.TransitionTx, error) {
	if _, err := m.GetSubmission(ctx, id); err != nil {
		return nil, err
	}

	l := m.lockFor(id)

	select {
	case l <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for submission lock: %w", ctx.Err())
	}

	// Re-read under the lock so the engine sees the last committed state.
	current, err := m.GetSubmission(ctx, id)
	if err != nil {
		<-l
		return nil, err
	}

	return &memTx{m: m, lock: l, current: current}, nil
}

type memTx struct {
	m       *Memory
	lock    chan struct{}
	current *submission.Submission
	staged  *submission.Submission
	entries []*ledger.Entry
	once    sync.Once
}

func (t *memTx) release() {
	t.once.Do(func() { <-t.lock })
}

func (t *memTx) Submission() *submission.Submission {
	return t.current.Clone()
}

func (t *memTx) SaveSubmission(_ context.Context, s *submission.Submission) error {
	if s.ID != t.current.ID {
		return fmt.Errorf("saving submission: unit of work holds %s, got %s", t.current.ID, s.ID)
	}

	t.staged = s.Clone()

	return nil
}

func (t *memTx) RefExists(_ context.Context, ref string) (bool, error) {
	for _, e := range t.entries {
		if e.IssuanceRef == ref {
			return true, nil
		}
	}

	t.m.mu.RLock()
	defer t.m.mu.RUnlock()

	_, ok := t.m.refs[ref]

	return ok, nil
}

func (t *memTx) AppendEntry(_ context.Context, e *ledger.Entry) error {
	if e.SubmissionID != t.current.ID {
		return fmt.Errorf("appending entry: unit of work holds %s, got %s", t.current.ID, e.SubmissionID)
	}

	if len(t.entries) > 0 {
		return fmt.Errorf("%w: submission %s", submission.ErrAlreadyIssued, e.SubmissionID)
	}

	c := *e
	t.entries = append(t.entries, &c)

	return nil
}

func (t *memTx) Commit() error {
	defer t.release()

	t.m.mu.Lock()
	defer t.m.mu.Unlock()

	for _, e := range t.entries {
		if _, ok := t.m.refs[e.IssuanceRef]; ok {
			return fmt.Errorf("committing: issuance reference %s already recorded", e.IssuanceRef)
		}

		if _, ok := t.m.issued[e.SubmissionID]; ok {
			return fmt.Errorf("%w: submission %s", submission.ErrAlreadyIssued, e.SubmissionID)
		}
	}

	for _, e := range t.entries {
		t.m.entries = append(t.m.entries, e)
		t.m.refs[e.IssuanceRef] = struct{}{}
		t.m.issued[e.SubmissionID] = struct{}{}
	}

	if t.staged != nil {
		t.m.subs[t.staged.ID] = t.staged
	}

	t.staged = nil
	t.entries = nil

	return nil
}

// Rollback discards staged changes. Safe to call after Commit.
func (t *memTx) Rollback() error {
	t.staged = nil
	t.entries = nil
	t.release()

	return nil
}
