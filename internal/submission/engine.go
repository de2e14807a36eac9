package submission

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/bluecarbon/internal/identity"
)

// Event names a requested lifecycle transition.
type Event string

const (
	EventVerifyConfirm Event = "verify-confirm"
	EventVerifyReject  Event = "verify-reject"
	EventIssueCredits  Event = "issue-credits"
)

// Transition is a caller's request to move a submission along the lifecycle.
// The verdict itself comes from outside (manual review, automated checks);
// the engine only decides whether it is legal.
type Transition struct {
	Event       Event
	CarbonValue *decimal.Decimal
	Rationale   string
	Reason      RejectReason
}

type edge struct {
	role identity.Role
	from State
	to   State
}

var edges = map[Event]edge{
	EventVerifyConfirm: {role: identity.RoleVerifier, from: StatePending, to: StateVerified},
	EventVerifyReject:  {role: identity.RoleVerifier, from: StatePending, to: StateRejected},
	EventIssueCredits:  {role: identity.RoleAdmin, from: StateVerified, to: StateIssued},
}

// Apply validates t against the current record and the caller's role and
// returns the next record. The input is never modified.
//
// Checks run role, then state, then fields. For issue-credits the returned
// issuance has no reference yet; the ledger recorder mints it.
func Apply(current *Submission, actor identity.Actor, t Transition, now time.Time) (*Submission, error) {
	e, ok := edges[t.Event]
	if !ok {
		return nil, fmt.Errorf("%w: unknown event %q", ErrValidation, t.Event)
	}

	if actor.Role != e.role {
		return nil, fmt.Errorf("%w: %s may not %s", ErrUnauthorized, actor.Role, t.Event)
	}

	if current.State != e.from {
		if t.Event == EventIssueCredits && current.State == StateIssued {
			return nil, fmt.Errorf("%w: submission %s", ErrAlreadyIssued, current.ID)
		}

		return nil, fmt.Errorf("%w: cannot %s a %s submission", ErrIllegalState, t.Event, current.State)
	}

	next := current.Clone()
	next.State = e.to
	next.UpdatedAt = now

	switch t.Event {
	case EventVerifyConfirm:
		if t.Reason != ReasonUnspecified {
			return nil, fmt.Errorf("%w: reject reason %q given with %s", ErrValidation, t.Reason, t.Event)
		}

		value := current.CarbonValue
		if t.CarbonValue != nil {
			value = *t.CarbonValue
		}

		if !value.IsPositive() {
			return nil, fmt.Errorf("%w: verification requires a positive carbon value", ErrValidation)
		}

		next.CarbonValue = value
		next.Decision = &Decision{
			Outcome:     OutcomeConfirm,
			DecidedBy:   actor.ID,
			DecidedAt:   now,
			Rationale:   t.Rationale,
			CarbonValue: value,
		}

	case EventVerifyReject:
		if t.CarbonValue != nil {
			return nil, fmt.Errorf("%w: carbon value given with %s", ErrValidation, t.Event)
		}

		if !t.Reason.Valid() {
			return nil, fmt.Errorf("%w: unknown reject reason %q", ErrValidation, t.Reason)
		}

		next.Decision = &Decision{
			Outcome:   OutcomeReject,
			DecidedBy: actor.ID,
			DecidedAt: now,
			Rationale: t.Rationale,
			Reason:    t.Reason,
		}

	case EventIssueCredits:
		if t.Reason != ReasonUnspecified {
			return nil, fmt.Errorf("%w: reject reason %q given with %s", ErrValidation, t.Reason, t.Event)
		}

		if current.Issuance != nil {
			return nil, fmt.Errorf("%w: submission %s", ErrAlreadyIssued, current.ID)
		}

		if current.Decision == nil {
			return nil, fmt.Errorf("%w: verified submission %s has no decision", ErrIllegalState, current.ID)
		}

		fixed := current.Decision.CarbonValue
		if t.CarbonValue != nil && !t.CarbonValue.Equal(fixed) {
			return nil, fmt.Errorf("%w: carbon value was fixed at %s on verification", ErrImmutableField, fixed)
		}

		next.CarbonValue = fixed
		next.Issuance = &Issuance{
			IssuedBy: actor.ID,
			IssuedAt: now,
		}
	}

	return next, nil
}

// Amend changes the carbon value of a pending submission. Submitters may
// only amend their own records.
func Amend(current *Submission, actor identity.Actor, value decimal.Decimal, now time.Time) (*Submission, error) {
	switch actor.Role {
	case identity.RoleVerifier:
	case identity.RoleSubmitter:
		if current.SubmittedBy != actor.ID {
			return nil, fmt.Errorf("%w: %s does not own submission %s", ErrUnauthorized, actor.ID, current.ID)
		}
	default:
		return nil, fmt.Errorf("%w: %s may not amend carbon value", ErrUnauthorized, actor.Role)
	}

	switch current.State {
	case StatePending:
	case StateVerified, StateIssued:
		return nil, fmt.Errorf("%w: carbon value is fixed once verified", ErrImmutableField)
	default:
		return nil, fmt.Errorf("%w: cannot amend a %s submission", ErrIllegalState, current.State)
	}

	if !value.IsPositive() {
		return nil, fmt.Errorf("%w: carbon value must be positive", ErrValidation)
	}

	next := current.Clone()
	next.CarbonValue = value
	next.UpdatedAt = now

	return next, nil
}
