package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/spnd-app/spnd-server/internal/apperr"
	"github.com/spnd-app/spnd-server/internal/config"
	"github.com/spnd-app/spnd-server/internal/models"
	"golang.org/x/crypto/bcrypt"
)

const maxLabelLen = 140

// Store is the persistence surface the service needs. Implemented by
// repository.Repository; tests supply an in-memory implementation.
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	Snapshot(ctx context.Context, userID string) (*models.AccountSnapshot, error)

	RecordIncome(ctx context.Context, income *models.Income) error
	RecordExpense(ctx context.Context, expense *models.Expense) error
	ListIncomes(ctx context.Context, userID string, filter models.RangeFilter) ([]models.Income, error)
	ListExpenses(ctx context.Context, userID string, filter models.RangeFilter) ([]models.Expense, error)

	CreateSharedBudget(ctx context.Context, budget *models.SharedBudget, initialToken string) error
	GetSharedBudget(ctx context.Context, budgetID string) (*models.SharedBudget, error)
	ListSharedBudgetsForUser(ctx context.Context, userID string) ([]models.SharedBudget, error)
	Contribute(ctx context.Context, userID, budgetID string, amount float64, token string) (*models.Contribution, error)
}

// GoogleVerifier validates a Google ID token and returns the verified
// email and display name.
type GoogleVerifier interface {
	Verify(ctx context.Context, idToken string) (email, name string, err error)
}

// Mailer sends best-effort notifications. A nil Mailer disables them.
type Mailer interface {
	SendBudgetInvite(to, username, budgetName, ownerName string) error
}

// Service handles business logic
type Service struct {
	store  Store
	log    *logrus.Logger
	config *config.Config
	google GoogleVerifier
	mailer Mailer
}

// NewService initializes a new service
func NewService(store Store, log *logrus.Logger, cfg *config.Config, google GoogleVerifier, mailer Mailer) *Service {
	return &Service{store: store, log: log, config: cfg, google: google, mailer: mailer}
}

// Register creates a new user with hashed password and returns the user
// together with a signed token.
func (s *Service) Register(ctx context.Context, username, email, password string) (*models.User, string, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" || email == "" {
		return nil, "", apperr.New(apperr.InvalidInput, "username and email are required")
	}
	if !strings.Contains(email, "@") {
		return nil, "", apperr.New(apperr.InvalidInput, "email is malformed")
	}
	if len(password) < 8 {
		return nil, "", apperr.New(apperr.InvalidInput, "password must be at least 8 characters")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return nil, "", err
	}

	s.log.Infof("User registered: %s", user.Email)
	return user, token, nil
}

// Login authenticates a user by email and password.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.store.FindUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, "", apperr.New(apperr.Forbidden, "invalid credentials")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", apperr.New(apperr.Forbidden, "invalid credentials")
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return nil, "", err
	}

	s.log.Infof("User logged in: %s", user.Email)
	return user, token, nil
}

// GoogleLogin verifies the Google ID token and finds or creates the
// account for the verified email.
func (s *Service) GoogleLogin(ctx context.Context, idToken string) (*models.User, string, error) {
	if idToken == "" {
		return nil, "", apperr.New(apperr.InvalidInput, "idToken is required")
	}
	email, name, err := s.google.Verify(ctx, idToken)
	if err != nil {
		return nil, "", apperr.New(apperr.Forbidden, "invalid credentials")
	}

	user, err := s.store.FindUserByEmail(ctx, email)
	if apperr.Is(err, apperr.NotFound) {
		if name == "" {
			name = email
		}
		user = &models.User{Username: name, Email: email}
		if err := s.store.CreateUser(ctx, user); err != nil {
			return nil, "", err
		}
		s.log.Infof("User registered via Google: %s", user.Email)
	} else if err != nil {
		return nil, "", err
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return nil, "", err
	}

	s.log.Infof("User logged in via Google: %s", user.Email)
	return user, token, nil
}

// Snapshot returns the user's current balance and activity counts.
func (s *Service) Snapshot(ctx context.Context, userID string) (*models.AccountSnapshot, error) {
	return s.store.Snapshot(ctx, userID)
}

func (s *Service) issueToken(userID string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.config.TokenTTL)),
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}
