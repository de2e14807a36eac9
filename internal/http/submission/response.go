package submission

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/bluecarbon/internal/submission"
)

type submissionResponse struct {
	ID             uuid.UUID         `json:"id"`
	ProjectName    string            `json:"project_name"`
	Location       string            `json:"location"`
	Latitude       float64           `json:"latitude"`
	Longitude      float64           `json:"longitude"`
	CollectionDate string            `json:"collection_date"`
	SubmittedBy    string            `json:"submitted_by"`
	State          submission.State  `json:"state"`
	CarbonValue    *decimal.Decimal  `json:"carbon_value,omitempty"`
	Decision       *decisionResponse `json:"decision,omitempty"`
	Issuance       *issuanceResponse `json:"issuance,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

type decisionResponse struct {
	Outcome   submission.Outcome      `json:"outcome"`
	DecidedBy string                  `json:"decided_by"`
	DecidedAt time.Time               `json:"decided_at"`
	Rationale string                  `json:"rationale,omitempty"`
	Reason    submission.RejectReason `json:"reason,omitempty"`
}

type issuanceResponse struct {
	IssuanceRef string    `json:"issuance_ref"`
	IssuedBy    string    `json:"issued_by"`
	IssuedAt    time.Time `json:"issued_at"`
}

func toResponse(s *submission.Submission) submissionResponse {
	resp := submissionResponse{
		ID:             s.ID,
		ProjectName:    s.ProjectName,
		Location:       s.Location.String(),
		Latitude:       s.Location.Lat,
		Longitude:      s.Location.Lng,
		CollectionDate: s.CollectionDate.Format(time.DateOnly),
		SubmittedBy:    s.SubmittedBy,
		State:          s.State,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}

	if !s.CarbonValue.IsZero() {
		resp.CarbonValue = new(s.CarbonValue)
	}

	if d := s.Decision; d != nil {
		resp.Decision = &decisionResponse{
			Outcome:   d.Outcome,
			DecidedBy: d.DecidedBy,
			DecidedAt: d.DecidedAt,
			Rationale: d.Rationale,
			Reason:    d.Reason,
		}
	}

	if i := s.Issuance; i != nil {
		resp.Issuance = &issuanceResponse{
			IssuanceRef: i.IssuanceRef,
			IssuedBy:    i.IssuedBy,
			IssuedAt:    i.IssuedAt,
		}
	}

	return resp
}

func toResponseList(subs []*submission.Submission) []submissionResponse {
	resp := make([]submissionResponse, len(subs))
	for i, s := range subs {
		resp[i] = toResponse(s)
	}

	return resp
}
