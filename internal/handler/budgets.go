package handler

import (
	"net/http"

	"github.com/spnd-app/spnd-server/internal/middleware"
	"github.com/spnd-app/spnd-server/internal/models"
)

type createBudgetRequest struct {
	Budgetname   string   `json:"budgetname"`
	Amount       float64  `json:"amount"`
	Participants []string `json:"participants"`
}

type contributeRequest struct {
	Amount           float64 `json:"amount"`
	BudgetID         string  `json:"budgetId"`
	IdempotencyToken string  `json:"idempotencyToken"`
}

// CreateSharedBudget handles shared budget creation
func (h *Handler) CreateSharedBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	var req createBudgetRequest
	if !h.decode(w, r, &req) {
		return
	}

	budget, err := h.svc.CreateSharedBudget(r.Context(), userID, req.Budgetname, req.Amount, req.Participants)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, budget)
}

// ListSharedBudgets returns every budget the user owns or participates in
func (h *Handler) ListSharedBudgets(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	budgets, err := h.svc.ListSharedBudgets(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, budgets)
}

// Contribute moves money from the wallet into a shared budget pool. The
// idempotency token comes from the body or the Idempotency-Key header;
// retries with the same token are applied at most once.
func (h *Handler) Contribute(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	var req contributeRequest
	if !h.decode(w, r, &req) {
		return
	}
	token := req.IdempotencyToken
	if token == "" {
		token = r.Header.Get("Idempotency-Key")
	}

	result, err := h.svc.Contribute(r.Context(), userID, req.BudgetID, req.Amount, token)
	if err != nil {
		h.writeError(w, err)
		return
	}

	// The client types this response as the budget itself, so the budget
	// fields stay top-level; the refreshed user rides along.
	h.writeJSON(w, http.StatusOK, contributeResponse{
		SharedBudget: result.Budget,
		Contributor:  result.User,
	})
}

type contributeResponse struct {
	*models.SharedBudget
	Contributor *models.User `json:"contributor"`
}
