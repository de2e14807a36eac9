package submission

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/bluecarbon/internal/http/auth"
	"github.com/MrJamesThe3rd/bluecarbon/internal/http/httperr"
	"github.com/MrJamesThe3rd/bluecarbon/internal/submission"
)

type Handler struct {
	svc      *submission.Service
	assessor submission.Assessor
}

func NewHandler(svc *submission.Service, assessor submission.Assessor) *Handler {
	return &Handler{svc: svc, assessor: assessor}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Patch("/{id}/carbon-value", h.amendCarbonValue)
	r.Post("/{id}/transitions", h.transition)
	r.Post("/{id}/assessments", h.assess)
}

type createSubmissionRequest struct {
	ProjectName    string           `json:"project_name"`
	Location       string           `json:"location"`
	CollectionDate string           `json:"collection_date"`
	SubmittedBy    string           `json:"submitted_by"`
	CarbonValue    *decimal.Decimal `json:"carbon_value,omitempty"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.Actor(w, r)
	if !ok {
		return
	}

	var req createSubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	submittedBy := req.SubmittedBy
	if submittedBy == "" {
		submittedBy = actor.ID
	}

	sub, err := h.svc.Create(r.Context(), actor, submission.CreateParams{
		ProjectName:    req.ProjectName,
		Location:       req.Location,
		CollectionDate: req.CollectionDate,
		SubmittedBy:    submittedBy,
		CarbonValue:    req.CarbonValue,
	})
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(sub))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := submission.ListFilter{
		SubmittedBy: r.URL.Query().Get("submitted_by"),
	}

	if s := r.URL.Query().Get("state"); s != "" {
		state, err := submission.ParseState(s)
		if err != nil {
			httperr.Write(w, r, err)
			return
		}

		filter.State = new(state)
	}

	subs, err := h.svc.List(r.Context(), filter)
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponseList(subs))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	sub, err := h.svc.Get(r.Context(), id)
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(sub))
}

type amendCarbonValueRequest struct {
	CarbonValue *decimal.Decimal `json:"carbon_value"`
}

func (h *Handler) amendCarbonValue(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.Actor(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req amendCarbonValueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.CarbonValue == nil {
		httperr.Write(w, r, fmt.Errorf("%w: carbon_value is required", submission.ErrValidation))
		return
	}

	sub, err := h.svc.AmendCarbonValue(r.Context(), actor, id, *req.CarbonValue)
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(sub))
}

type transitionRequest struct {
	Event       submission.Event        `json:"event"`
	CarbonValue *decimal.Decimal        `json:"carbon_value,omitempty"`
	Rationale   string                  `json:"rationale,omitempty"`
	Reason      submission.RejectReason `json:"reason,omitempty"`
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.Actor(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sub, err := h.svc.ApplyTransition(r.Context(), actor, id, submission.Transition{
		Event:       req.Event,
		CarbonValue: req.CarbonValue,
		Rationale:   req.Rationale,
		Reason:      req.Reason,
	})
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(sub))
}

func (h *Handler) assess(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.Actor(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	sub, err := h.svc.Assess(r.Context(), actor, id, h.assessor)
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(sub))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
