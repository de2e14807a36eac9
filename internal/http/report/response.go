package report

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/bluecarbon/internal/ledger"
	"github.com/MrJamesThe3rd/bluecarbon/internal/report"
)

type summaryResponse struct {
	Pending          int             `json:"pending"`
	Verified         int             `json:"verified"`
	Rejected         int             `json:"rejected"`
	Issued           int             `json:"issued"`
	Flagged          int             `json:"flagged"`
	PendingIssuance  int             `json:"pending_issuance"`
	TotalIssued      decimal.Decimal `json:"total_issued"`
	LedgerEntries    int             `json:"ledger_entries"`
	LedgerTotal      decimal.Decimal `json:"ledger_total"`
	VerificationRate float64         `json:"verification_rate"`
}

type mismatchResponse struct {
	SubmissionID uuid.UUID `json:"submission_id"`
	Problem      string    `json:"problem"`
}

type reconciliationResponse struct {
	StoreTotal  decimal.Decimal    `json:"store_total"`
	LedgerTotal decimal.Decimal    `json:"ledger_total"`
	Consistent  bool               `json:"consistent"`
	Mismatches  []mismatchResponse `json:"mismatches"`
}

type entryResponse struct {
	IssuanceRef  string          `json:"issuance_ref"`
	SubmissionID uuid.UUID       `json:"submission_id"`
	CarbonValue  decimal.Decimal `json:"carbon_value"`
	IssuedBy     string          `json:"issued_by"`
	IssuedAt     time.Time       `json:"issued_at"`
}

func toSummaryResponse(s *report.Summary) summaryResponse {
	return summaryResponse{
		Pending:          s.Pending,
		Verified:         s.Verified,
		Rejected:         s.Rejected,
		Issued:           s.Issued,
		Flagged:          s.Flagged,
		PendingIssuance:  s.PendingIssuance,
		TotalIssued:      s.TotalIssued,
		LedgerEntries:    s.LedgerEntries,
		LedgerTotal:      s.LedgerTotal,
		VerificationRate: s.VerificationRate,
	}
}

func toReconciliationResponse(r *report.Reconciliation) reconciliationResponse {
	resp := reconciliationResponse{
		StoreTotal:  r.StoreTotal,
		LedgerTotal: r.LedgerTotal,
		Consistent:  r.Consistent,
		Mismatches:  make([]mismatchResponse, 0, len(r.Mismatches)),
	}

	for _, m := range r.Mismatches {
		resp.Mismatches = append(resp.Mismatches, mismatchResponse{SubmissionID: m.SubmissionID, Problem: m.Problem})
	}

	return resp
}

func toEntryList(entries []*ledger.Entry) []entryResponse {
	resp := make([]entryResponse, len(entries))
	for i, e := range entries {
		resp[i] = entryResponse{
			IssuanceRef:  e.IssuanceRef,
			SubmissionID: e.SubmissionID,
			CarbonValue:  e.CarbonValue,
			IssuedBy:     e.IssuedBy,
			IssuedAt:     e.IssuedAt,
		}
	}

	return resp
}
