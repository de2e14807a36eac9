package report

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/bluecarbon/internal/http/httperr"
	"github.com/MrJamesThe3rd/bluecarbon/internal/ledger"
	"github.com/MrJamesThe3rd/bluecarbon/internal/report"
)

const defaultRecent = 10

type Handler struct {
	reports *report.Service
	ledger  *ledger.Recorder
}

func NewHandler(reports *report.Service, recorder *ledger.Recorder) *Handler {
	return &Handler{reports: reports, ledger: recorder}
}

// Routes registers the report endpoints under /reports.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/summary", h.summary)
	r.Get("/reconciliation", h.reconciliation)
	r.Get("/recent", h.recent)
}

// LedgerRoutes registers the read-only ledger listing.
func (h *Handler) LedgerRoutes(r chi.Router) {
	r.Get("/", h.ledgerEntries)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.reports.Summary(r.Context())
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	writeJSON(w, toSummaryResponse(sum))
}

func (h *Handler) reconciliation(w http.ResponseWriter, r *http.Request) {
	rec, err := h.reports.Reconcile(r.Context())
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	writeJSON(w, toReconciliationResponse(rec))
}

func (h *Handler) recent(w http.ResponseWriter, r *http.Request) {
	n := defaultRecent

	if s := r.URL.Query().Get("n"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			http.Error(w, "n must be a positive integer", http.StatusBadRequest)
			return
		}

		n = v
	}

	entries, err := h.reports.RecentIssuances(r.Context(), n)
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	writeJSON(w, toEntryList(entries))
}

func (h *Handler) ledgerEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.ledger.ListAll(r.Context())
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	writeJSON(w, toEntryList(entries))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
