package intake

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/bluecarbon/internal/http/auth"
	"github.com/MrJamesThe3rd/bluecarbon/internal/http/httperr"
	"github.com/MrJamesThe3rd/bluecarbon/internal/intake"
	"github.com/MrJamesThe3rd/bluecarbon/internal/submission"
)

const maxUploadSize = 10 << 20

type Handler struct {
	svc *intake.Service
}

func NewHandler(svc *intake.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/csv", h.importCSV)
}

type createdDTO struct {
	ID          uuid.UUID        `json:"id"`
	ProjectName string           `json:"project_name"`
	State       submission.State `json:"state"`
}

type failedDTO struct {
	Line  int    `json:"line"`
	Error string `json:"error"`
}

type importResponse struct {
	Charset  string       `json:"charset"`
	Profile  string       `json:"profile"`
	Imported int          `json:"imported"`
	Created  []createdDTO `json:"created"`
	Failed   []failedDTO  `json:"failed"`
}

func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.Actor(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	res, err := h.svc.Import(r.Context(), actor, file)
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	resp := importResponse{
		Charset:  res.Charset,
		Profile:  res.Profile,
		Imported: len(res.Created),
		Created:  make([]createdDTO, 0, len(res.Created)),
		Failed:   make([]failedDTO, 0, len(res.Failed)),
	}

	for _, s := range res.Created {
		resp.Created = append(resp.Created, createdDTO{ID: s.ID, ProjectName: s.ProjectName, State: s.State})
	}

	for _, f := range res.Failed {
		resp.Failed = append(resp.Failed, failedDTO{Line: f.Line, Error: f.Err.Error()})
	}

	status := http.StatusCreated
	if len(res.Created) == 0 && len(res.Failed) > 0 {
		status = http.StatusUnprocessableEntity
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
