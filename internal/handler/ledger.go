package handler

import (
	"net/http"
	"time"

	"github.com/spnd-app/spnd-server/internal/apperr"
	"github.com/spnd-app/spnd-server/internal/middleware"
	"github.com/spnd-app/spnd-server/internal/models"
)

type createIncomeRequest struct {
	Amount   float64 `json:"amount"`
	Source   string  `json:"source"`
	Category string  `json:"category"`
	Date     string  `json:"date"`
	// Older client builds send the timestamp as createdAt
	CreatedAt string `json:"createdAt"`
}

type createExpenseRequest struct {
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Date        string  `json:"date"`
	CreatedAt   string  `json:"createdAt"`
}

// CreateIncome handles income creation
func (h *Handler) CreateIncome(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	var req createIncomeRequest
	if !h.decode(w, r, &req) {
		return
	}

	occurredAt, err := parseWireTime(req.Date, req.CreatedAt)
	if err != nil {
		h.writeError(w, err)
		return
	}

	income, err := h.svc.RecordIncome(r.Context(), userID, req.Amount, req.Source, req.Category, occurredAt)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, income)
}

// CreateExpense handles expense creation
func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	var req createExpenseRequest
	if !h.decode(w, r, &req) {
		return
	}

	occurredAt, err := parseWireTime(req.Date, req.CreatedAt)
	if err != nil {
		h.writeError(w, err)
		return
	}

	expense, err := h.svc.RecordExpense(r.Context(), userID, req.Amount, req.Description, req.Category, occurredAt)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, expense)
}

// ListIncomes returns the income history, most recent first
func (h *Handler) ListIncomes(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	filter, err := parseRangeFilter(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	incomes, err := h.svc.ListIncomes(r.Context(), userID, filter)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, incomes)
}

// ListExpenses returns the expense history, most recent first
func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	filter, err := parseRangeFilter(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	expenses, err := h.svc.ListExpenses(r.Context(), userID, filter)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, expenses)
}

// parseWireTime accepts either the date or createdAt wire field, in
// RFC 3339 or plain YYYY-MM-DD form. Nil means "now".
func parseWireTime(date, createdAt string) (*time.Time, error) {
	raw := date
	if raw == "" {
		raw = createdAt
	}
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, apperr.New(apperr.InvalidInput, "date is malformed")
}

func parseRangeFilter(r *http.Request) (models.RangeFilter, error) {
	var filter models.RangeFilter
	if from := r.URL.Query().Get("from"); from != "" {
		t, err := parseWireTime(from, "")
		if err != nil {
			return filter, err
		}
		filter.From = t
	}
	if to := r.URL.Query().Get("to"); to != "" {
		t, err := parseWireTime(to, "")
		if err != nil {
			return filter, err
		}
		filter.To = t
	}
	return filter, nil
}
