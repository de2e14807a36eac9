package submission

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// State represents the lifecycle state of a submission.
type State string

const (
	StatePending  State = "pending"
	StateVerified State = "verified"
	StateRejected State = "rejected"
	StateIssued   State = "issued"
)

// States lists every state in lifecycle order.
var States = []State{StatePending, StateVerified, StateRejected, StateIssued}

func (s State) Valid() bool {
	switch s {
	case StatePending, StateVerified, StateRejected, StateIssued:
		return true
	}

	return false
}

func ParseState(s string) (State, error) {
	st := State(s)
	if !st.Valid() {
		return "", fmt.Errorf("%w: unknown state %q", ErrValidation, s)
	}

	return st, nil
}

// Outcome is the verifier's verdict recorded on a decision.
type Outcome string

const (
	OutcomeConfirm Outcome = "confirm"
	OutcomeReject  Outcome = "reject"
)

// RejectReason classifies a rejection. Rejected remains the single terminal
// state; the reason lets reporting tell fraud apart from other rejections.
type RejectReason string

const (
	ReasonUnspecified          RejectReason = ""
	ReasonFraudDetected        RejectReason = "fraud_detected"
	ReasonInsufficientEvidence RejectReason = "insufficient_evidence"
	ReasonDataInconsistent     RejectReason = "data_inconsistent"
)

func (r RejectReason) Valid() bool {
	switch r {
	case ReasonUnspecified, ReasonFraudDetected, ReasonInsufficientEvidence, ReasonDataInconsistent:
		return true
	}

	return false
}

// Decision is set exactly once, when a submission leaves pending.
type Decision struct {
	Outcome   Outcome
	DecidedBy string
	DecidedAt time.Time
	Rationale string
	Reason    RejectReason
	// CarbonValue is the value fixed at verification. Zero for rejections.
	CarbonValue decimal.Decimal
}

// Issuance is set exactly once, when a submission enters issued.
type Issuance struct {
	IssuanceRef string
	IssuedBy    string
	IssuedAt    time.Time
}

// Submission is a single project record moving through verification and issuance.
type Submission struct {
	ID             uuid.UUID
	ProjectName    string
	Location       Location
	CollectionDate time.Time
	SubmittedBy    string
	State          State
	CarbonValue    decimal.Decimal // Tonnes CO2e; zero means not yet supplied
	Decision       *Decision
	Issuance       *Issuance
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Clone returns a deep copy.
func (s *Submission) Clone() *Submission {
	c := *s

	if s.Decision != nil {
		d := *s.Decision
		c.Decision = &d
	}

	if s.Issuance != nil {
		i := *s.Issuance
		c.Issuance = &i
	}

	return &c
}

// Check reports whether the record satisfies the lifecycle invariants.
func (s *Submission) Check() error {
	if !s.State.Valid() {
		return fmt.Errorf("invalid state %q", s.State)
	}

	decided := s.State != StatePending
	if decided != (s.Decision != nil) {
		return fmt.Errorf("state %s with decision present=%t", s.State, s.Decision != nil)
	}

	if (s.State == StateIssued) != (s.Issuance != nil) {
		return fmt.Errorf("state %s with issuance present=%t", s.State, s.Issuance != nil)
	}

	if s.State == StateVerified || s.State == StateIssued {
		if !s.CarbonValue.IsPositive() {
			return fmt.Errorf("state %s requires a positive carbon value", s.State)
		}

		if s.Decision.Outcome != OutcomeConfirm {
			return fmt.Errorf("state %s with decision outcome %q", s.State, s.Decision.Outcome)
		}
	}

	if s.State == StateRejected && s.Decision.Outcome != OutcomeReject {
		return fmt.Errorf("state %s with decision outcome %q", s.State, s.Decision.Outcome)
	}

	if s.Issuance != nil && s.Issuance.IssuanceRef == "" {
		return fmt.Errorf("issuance without reference")
	}

	return nil
}
