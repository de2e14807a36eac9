// Package verification holds the capabilities that propose a verdict for a
// pending submission. Whether the verdict may be applied is decided by the
// submission engine, never here.
package verification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/bluecarbon/internal/submission"
)

var ErrNoAssessors = errors.New("no assessors configured")

// Manual passes a human reviewer's verdict through unchanged.
type Manual struct {
	Transition submission.Transition
}

func (m Manual) Assess(ctx context.Context, _ *submission.Submission) (submission.Transition, error) {
	if err := ctx.Err(); err != nil {
		return submission.Transition{}, err
	}

	return m.Transition, nil
}

// Rules applies deterministic plausibility checks. A zero MaxAge or
// MaxCarbonValue disables the corresponding check.
type Rules struct {
	MaxAge         time.Duration
	MaxCarbonValue decimal.Decimal
	now            func() time.Time
}

type RulesOption func(*Rules)

func WithClock(now func() time.Time) RulesOption {
	return func(r *Rules) { r.now = now }
}

func NewRules(maxAge time.Duration, maxCarbonValue decimal.Decimal, opts ...RulesOption) *Rules {
	r := &Rules{
		MaxAge:         maxAge,
		MaxCarbonValue: maxCarbonValue,
		now:            func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

func (r *Rules) Assess(ctx context.Context, s *submission.Submission) (submission.Transition, error) {
	if err := ctx.Err(); err != nil {
		return submission.Transition{}, err
	}

	now := r.now()

	if s.CollectionDate.After(now) {
		return reject(submission.ReasonDataInconsistent, "collection date %s is in the future", s.CollectionDate.Format(time.DateOnly)), nil
	}

	if r.MaxAge > 0 && now.Sub(s.CollectionDate) > r.MaxAge {
		return reject(submission.ReasonInsufficientEvidence, "data collected on %s is older than %s", s.CollectionDate.Format(time.DateOnly), r.MaxAge), nil
	}

	if !s.CarbonValue.IsPositive() {
		return reject(submission.ReasonInsufficientEvidence, "no carbon value supplied"), nil
	}

	if r.MaxCarbonValue.IsPositive() && s.CarbonValue.GreaterThan(r.MaxCarbonValue) {
		return reject(submission.ReasonFraudDetected, "carbon value %s exceeds plausible maximum %s", s.CarbonValue, r.MaxCarbonValue), nil
	}

	value := s.CarbonValue

	return submission.Transition{
		Event:       submission.EventVerifyConfirm,
		CarbonValue: &value,
		Rationale:   "passed automated checks",
	}, nil
}

func reject(reason submission.RejectReason, format string, args ...any) submission.Transition {
	return submission.Transition{
		Event:     submission.EventVerifyReject,
		Reason:    reason,
		Rationale: fmt.Sprintf(format, args...),
	}
}

// Chain runs assessors in order. The first rejection wins; otherwise the
// last confirmation is returned.
type Chain []submission.Assessor

func (c Chain) Assess(ctx context.Context, s *submission.Submission) (submission.Transition, error) {
	if len(c) == 0 {
		return submission.Transition{}, ErrNoAssessors
	}

	var last submission.Transition

	for i, a := range c {
		if err := ctx.Err(); err != nil {
			return submission.Transition{}, err
		}

		t, err := a.Assess(ctx, s)
		if err != nil {
			return submission.Transition{}, fmt.Errorf("assessor %d: %w", i, err)
		}

		if t.Event == submission.EventVerifyReject {
			return t, nil
		}

		last = t
	}

	return last, nil
}
