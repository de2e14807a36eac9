package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/bluecarbon/internal/identity"
)

// Handler exchanges a demo account email for a signed token.
type Handler struct {
	accounts identity.Provider
	tokens   *identity.JWTProvider
	ttl      time.Duration
}

func NewHandler(accounts identity.Provider, tokens *identity.JWTProvider, ttl time.Duration) *Handler {
	return &Handler{accounts: accounts, tokens: tokens, ttl: ttl}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/token", h.token)
}

type tokenRequest struct {
	Email string `json:"email"`
}

type tokenResponse struct {
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"`
	ExpiresIn   int           `json:"expires_in"`
	ActorID     string        `json:"actor_id"`
	Role        identity.Role `json:"role"`
}

func (h *Handler) token(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	actor, err := h.accounts.Resolve(r.Context(), req.Email)
	if err != nil {
		http.Error(w, "unknown account", http.StatusUnauthorized)
		return
	}

	token, err := h.tokens.Issue(actor, h.ttl)
	if err != nil {
		slog.Error("failed to issue token", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	resp := tokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(h.ttl.Seconds()),
		ActorID:     actor.ID,
		Role:        actor.Role,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
