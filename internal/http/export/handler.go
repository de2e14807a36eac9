package export

import (
	"archive/zip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/bluecarbon/internal/export"
	"github.com/MrJamesThe3rd/bluecarbon/internal/http/httperr"
	"github.com/MrJamesThe3rd/bluecarbon/internal/submission"
)

type Handler struct {
	svc *export.Service
}

func NewHandler(svc *export.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.metadata)
	r.Post("/download", h.download)
}

type exportRequest struct {
	State       string `json:"state,omitempty"`
	SubmittedBy string `json:"submitted_by,omitempty"`
}

type itemResponse struct {
	ID          uuid.UUID        `json:"id"`
	ProjectName string           `json:"project_name"`
	State       submission.State `json:"state"`
	CarbonValue *decimal.Decimal `json:"carbon_value,omitempty"`
	IssuanceRef string           `json:"issuance_ref,omitempty"`
}

type exportMetadataResponse struct {
	Items     []itemResponse `json:"items"`
	Statement string         `json:"statement"`
}

func toItemResponse(item export.Item) itemResponse {
	resp := itemResponse{
		ID:          item.Submission.ID,
		ProjectName: item.Submission.ProjectName,
		State:       item.Submission.State,
	}

	if !item.Submission.CarbonValue.IsZero() {
		resp.CarbonValue = new(item.Submission.CarbonValue)
	}

	if item.Entry != nil {
		resp.IssuanceRef = item.Entry.IssuanceRef
	}

	return resp
}

// decodeFilter accepts an empty body as "everything".
func decodeFilter(r *http.Request) (submission.ListFilter, error) {
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return submission.ListFilter{}, fmt.Errorf("%w: %v", submission.ErrValidation, err)
	}

	filter := submission.ListFilter{SubmittedBy: req.SubmittedBy}

	if req.State != "" {
		state, err := submission.ParseState(req.State)
		if err != nil {
			return submission.ListFilter{}, err
		}

		filter.State = new(state)
	}

	return filter, nil
}

func (h *Handler) metadata(w http.ResponseWriter, r *http.Request) {
	filter, err := decodeFilter(r)
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	items, err := h.svc.Export(r.Context(), filter)
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	resp := exportMetadataResponse{
		Items:     make([]itemResponse, 0, len(items)),
		Statement: export.Statement(items),
	}

	for _, item := range items {
		resp.Items = append(resp.Items, toItemResponse(item))
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	filter, err := decodeFilter(r)
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	items, err := h.svc.Export(r.Context(), filter)
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"bluecarbon_audit_%s.zip\"", time.Now().Format("20060102")))

	zipWriter := zip.NewWriter(w)
	defer zipWriter.Close()

	files := []struct {
		name  string
		write func(io.Writer) error
	}{
		{"submissions.csv", func(w io.Writer) error { return export.WriteSubmissions(w, items) }},
		{"ledger.csv", func(w io.Writer) error { return export.WriteLedger(w, export.Entries(items)) }},
		{"statement.txt", func(w io.Writer) error {
			_, err := io.WriteString(w, export.Statement(items))
			return err
		}},
	}

	for _, f := range files {
		zf, err := zipWriter.Create(f.name)
		if err != nil {
			slog.Error("failed to create zip", "error", err)
			return
		}

		if err := f.write(zf); err != nil {
			slog.Error("failed to write export file", "file", f.name, "error", err)
			return
		}
	}
}
