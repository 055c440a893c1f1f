package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/spnd-app/spnd-server/internal/apperr"
	"github.com/spnd-app/spnd-server/internal/models"
)

// ContributionResult carries the refreshed views returned after a
// contribution: the budget with its new pooled amount and the user with
// the new wallet balance. On an idempotent replay both reflect the
// originally committed values.
type ContributionResult struct {
	Budget       *models.SharedBudget
	User         *models.User
	Contribution *models.Contribution
}

// CreateSharedBudget resolves participant emails to existing accounts,
// creates the budget and applies a positive initial amount as an owner
// contribution in the same transaction.
func (s *Service) CreateSharedBudget(ctx context.Context, ownerID, name string, initialAmount float64, participantEmails []string) (*models.SharedBudget, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.New(apperr.InvalidInput, "budget name is required")
	}
	if len(name) > maxLabelLen {
		return nil, apperr.New(apperr.InvalidInput, "budget name is too long")
	}
	if initialAmount < 0 {
		return nil, apperr.New(apperr.InvalidInput, "initial amount must not be negative")
	}

	owner, err := s.store.FindUserByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	participantIDs := []string{ownerID}
	seen := map[string]bool{ownerID: true}
	invitees := make([]*models.User, 0, len(participantEmails))
	for _, email := range participantEmails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email == "" {
			continue
		}
		participant, err := s.store.FindUserByEmail(ctx, email)
		if apperr.Is(err, apperr.NotFound) {
			return nil, apperr.New(apperr.NotFound, "participant email not found: %s", email)
		}
		if err != nil {
			return nil, err
		}
		if seen[participant.ID] {
			continue
		}
		seen[participant.ID] = true
		participantIDs = append(participantIDs, participant.ID)
		invitees = append(invitees, participant)
	}

	budget := &models.SharedBudget{
		Name:         name,
		OwnerID:      ownerID,
		Participants: participantIDs,
		PooledAmount: initialAmount,
	}
	if err := s.store.CreateSharedBudget(ctx, budget, uuid.NewString()); err != nil {
		return nil, err
	}

	s.notifyInvitees(invitees, budget.Name, owner.Username)

	s.log.Infof("Shared budget created by user %s: %s (%d participants)", ownerID, budget.ID, len(participantIDs))
	return budget, nil
}

// GetSharedBudget returns a budget the user can see.
func (s *Service) GetSharedBudget(ctx context.Context, userID, budgetID string) (*models.SharedBudget, error) {
	budget, err := s.store.GetSharedBudget(ctx, budgetID)
	if err != nil {
		return nil, err
	}
	if !budget.IsParticipant(userID) {
		return nil, apperr.New(apperr.Forbidden, "user is not a participant of this budget")
	}
	return budget, nil
}

// ListSharedBudgets returns every budget the user owns or participates in.
func (s *Service) ListSharedBudgets(ctx context.Context, userID string) ([]models.SharedBudget, error) {
	return s.store.ListSharedBudgetsForUser(ctx, userID)
}

// Contribute moves amount from the user's wallet into the budget pool.
// An empty idempotency token gets a generated one, which protects this
// call server-side but gives the client no retry safety.
func (s *Service) Contribute(ctx context.Context, userID, budgetID string, amount float64, token string) (*ContributionResult, error) {
	if amount <= 0 {
		return nil, apperr.New(apperr.InvalidInput, "amount must be positive")
	}
	if budgetID == "" {
		return nil, apperr.New(apperr.InvalidInput, "budgetId is required")
	}
	if token == "" {
		token = uuid.NewString()
		s.log.Debugf("No idempotency token supplied for user %s, generated %s", userID, token)
	}

	contribution, err := s.store.Contribute(ctx, userID, budgetID, amount, token)
	if err != nil {
		return nil, err
	}

	budget, err := s.store.GetSharedBudget(ctx, budgetID)
	if err != nil {
		return nil, err
	}
	user, err := s.store.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Report the state computed by this contribution, not whatever has
	// committed since; replays therefore return the original result.
	budget.PooledAmount = contribution.PooledAfter
	user.Balance = contribution.BalanceAfter

	s.log.Infof("Contribution by user %s to budget %s: %.2f", userID, budgetID, contribution.Amount)
	return &ContributionResult{Budget: budget, User: user, Contribution: contribution}, nil
}

func (s *Service) notifyInvitees(invitees []*models.User, budgetName, ownerName string) {
	if s.mailer == nil {
		return
	}
	for _, invitee := range invitees {
		go func(u *models.User) {
			if err := s.mailer.SendBudgetInvite(u.Email, u.Username, budgetName, ownerName); err != nil {
				s.log.Errorf("Failed to send budget invite to %s: %v", u.Email, err)
			}
		}(invitee)
	}
}
