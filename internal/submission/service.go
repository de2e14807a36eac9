package submission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/bluecarbon/internal/identity"
	"github.com/MrJamesThe3rd/bluecarbon/internal/ledger"
	"github.com/MrJamesThe3rd/bluecarbon/internal/metrics"
)

// Assessor is an external verification capability (automated checks,
// satellite cross-checks, manual judgment) that proposes a verdict.
type Assessor interface {
	Assess(ctx context.Context, s *Submission) (Transition, error)
}

type Service struct {
	repo    Repository
	ledger  *ledger.Recorder
	metrics *metrics.Metrics
	now     func() time.Time
	newID   func() uuid.UUID
}

type Option func(*Service)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo Repository, recorder *ledger.Recorder, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		ledger: recorder,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.New,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Create validates the params and stores a new pending submission. Submitters
// file under their own identity only.
func (s *Service) Create(ctx context.Context, actor identity.Actor, params CreateParams) (*Submission, error) {
	if actor.Role != identity.RoleSubmitter {
		return nil, fmt.Errorf("%w: %s may not create submissions", ErrUnauthorized, actor.Role)
	}

	sub, err := params.build(s.newID(), s.now())
	if err != nil {
		return nil, err
	}

	// SubmittedBy is the ownership key Amend checks against.
	if sub.SubmittedBy != actor.ID {
		return nil, fmt.Errorf("%w: %s may not submit on behalf of %s", ErrUnauthorized, actor.ID, sub.SubmittedBy)
	}

	if err := s.repo.CreateSubmission(ctx, sub); err != nil {
		return nil, err
	}

	s.metrics.IncrementCreated()
	slog.Info("submission created", "id", sub.ID, "project", sub.ProjectName, "actor", actor.ID)

	return sub, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Submission, error) {
	return s.repo.GetSubmission(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Submission, error) {
	return s.repo.ListSubmissions(ctx, filter)
}

func (s *Service) ListByState(ctx context.Context, state State) ([]*Submission, error) {
	return s.repo.ListSubmissions(ctx, ListFilter{State: &state})
}

// ApplyTransition runs the engine against the locked submission and persists
// the result. On any error the stored record is left unchanged.
func (s *Service) ApplyTransition(ctx context.Context, actor identity.Actor, id uuid.UUID, t Transition) (*Submission, error) {
	next, err := s.applyTransition(ctx, actor, id, t)
	s.metrics.IncrementTransition(eventLabel(t.Event), resultLabel(err))

	if err != nil {
		return nil, err
	}

	if next.State == StateIssued {
		s.metrics.AddCreditsIssued(next.CarbonValue.InexactFloat64())
	}

	slog.Info("submission transitioned",
		"id", next.ID,
		"event", t.Event,
		"state", next.State,
		"actor", actor.ID,
	)

	return next, nil
}

func (s *Service) applyTransition(ctx context.Context, actor identity.Actor, id uuid.UUID, t Transition) (*Submission, error) {
	utx, err := s.repo.BeginTransition(ctx, id)
	if err != nil {
		return nil, err
	}
	defer utx.Rollback()

	next, err := Apply(utx.Submission(), actor, t, s.now())
	if err != nil {
		return nil, err
	}

	if next.State == StateIssued {
		entry, err := s.ledger.Record(ctx, utx, ledger.Record{
			SubmissionID: next.ID,
			CarbonValue:  next.CarbonValue,
			IssuedBy:     actor.ID,
			IssuedAt:     next.Issuance.IssuedAt,
		})
		if err != nil {
			return nil, fmt.Errorf("recording issuance: %w", err)
		}

		next.Issuance.IssuanceRef = entry.IssuanceRef
	}

	if err := next.Check(); err != nil {
		return nil, fmt.Errorf("checking transition result: %w", err)
	}

	if err := utx.SaveSubmission(ctx, next); err != nil {
		return nil, fmt.Errorf("saving submission: %w", err)
	}

	if err := utx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transition: %w", err)
	}

	return next, nil
}

// AmendCarbonValue sets the carbon value while the submission is pending.
func (s *Service) AmendCarbonValue(ctx context.Context, actor identity.Actor, id uuid.UUID, value decimal.Decimal) (*Submission, error) {
	utx, err := s.repo.BeginTransition(ctx, id)
	if err != nil {
		return nil, err
	}
	defer utx.Rollback()

	next, err := Amend(utx.Submission(), actor, value, s.now())
	if err != nil {
		return nil, err
	}

	if err := utx.SaveSubmission(ctx, next); err != nil {
		return nil, fmt.Errorf("saving submission: %w", err)
	}

	if err := utx.Commit(); err != nil {
		return nil, fmt.Errorf("committing amendment: %w", err)
	}

	return next, nil
}

// Assess asks a verification capability for a verdict and applies it. The
// capability runs without holding the submission lock; the transition
// re-validates state, so a concurrent decision wins cleanly.
func (s *Service) Assess(ctx context.Context, actor identity.Actor, id uuid.UUID, a Assessor) (*Submission, error) {
	if actor.Role != identity.RoleVerifier {
		return nil, fmt.Errorf("%w: %s may not assess submissions", ErrUnauthorized, actor.Role)
	}

	sub, err := s.repo.GetSubmission(ctx, id)
	if err != nil {
		return nil, err
	}

	if sub.State != StatePending {
		return nil, fmt.Errorf("%w: cannot assess a %s submission", ErrIllegalState, sub.State)
	}

	t, err := a.Assess(ctx, sub)
	if err != nil {
		return nil, fmt.Errorf("assessing submission: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return s.ApplyTransition(ctx, actor, id, t)
}

// eventLabel keeps the event label set fixed: names outside the state
// machine share one series.
func eventLabel(e Event) string {
	if _, ok := edges[e]; !ok {
		return "unknown"
	}

	return string(e)
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrIllegalState):
		return "illegal_state"
	case errors.Is(err, ErrAlreadyIssued):
		return "already_issued"
	case errors.Is(err, ErrImmutableField):
		return "immutable_field"
	default:
		return "error"
	}
}
