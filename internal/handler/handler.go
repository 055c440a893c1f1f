package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spnd-app/spnd-server/internal/apperr"
	"github.com/spnd-app/spnd-server/internal/middleware"
	"github.com/spnd-app/spnd-server/internal/models"
	"github.com/spnd-app/spnd-server/internal/service"
)

// LedgerService is the surface of the service layer the handlers use.
type LedgerService interface {
	Register(ctx context.Context, username, email, password string) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	GoogleLogin(ctx context.Context, idToken string) (*models.User, string, error)
	Snapshot(ctx context.Context, userID string) (*models.AccountSnapshot, error)
	RecordIncome(ctx context.Context, userID string, amount float64, source, category string, occurredAt *time.Time) (*models.Income, error)
	RecordExpense(ctx context.Context, userID string, amount float64, description, category string, occurredAt *time.Time) (*models.Expense, error)
	ListIncomes(ctx context.Context, userID string, filter models.RangeFilter) ([]models.Income, error)
	ListExpenses(ctx context.Context, userID string, filter models.RangeFilter) ([]models.Expense, error)
	CreateSharedBudget(ctx context.Context, ownerID, name string, initialAmount float64, participantEmails []string) (*models.SharedBudget, error)
	ListSharedBudgets(ctx context.Context, userID string) ([]models.SharedBudget, error)
	Contribute(ctx context.Context, userID, budgetID string, amount float64, token string) (*service.ContributionResult, error)
}

type Handler struct {
	svc LedgerService
	log *logrus.Logger
}

func NewHandler(svc LedgerService, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

type authResponse struct {
	Token   string       `json:"token"`
	User    *models.User `json:"user"`
	Message string       `json:"message"`
}

// Register handles user registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	user, token, err := h.svc.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, authResponse{Token: token, User: user, Message: "registered"})
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	user, token, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, authResponse{Token: token, User: user, Message: "logged in"})
}

// GoogleLogin handles authentication with a Google ID token
func (h *Handler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDToken string `json:"idToken"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	user, token, err := h.svc.GoogleLogin(r.Context(), req.IDToken)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, authResponse{Token: token, User: user, Message: "logged in"})
}

// Me returns the authenticated user with the refreshed wallet balance
// and activity counts.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	snap, err := h.svc.Snapshot(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, snap)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.writeError(w, apperr.New(apperr.InvalidInput, "request body is malformed"))
		return false
	}
	return true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Errorf("Failed to encode response: %v", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	if kind == 0 && (errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)) {
		kind = apperr.Timeout
		err = apperr.New(apperr.Timeout, "request timed out")
	}

	status := http.StatusInternalServerError
	message := "internal server error"
	switch kind {
	case apperr.NotFound:
		status = http.StatusNotFound
	case apperr.Forbidden:
		status = http.StatusForbidden
	case apperr.InsufficientFunds:
		status = http.StatusUnprocessableEntity
	case apperr.InvalidInput:
		status = http.StatusBadRequest
	case apperr.Conflict:
		status = http.StatusConflict
	case apperr.Timeout:
		status = http.StatusGatewayTimeout
	}
	if kind != 0 {
		message = err.Error()
	} else {
		h.log.Errorf("Internal error: %v", err)
	}

	h.writeJSON(w, status, map[string]string{
		"message": message,
		"error":   kind.String(),
	})
}
