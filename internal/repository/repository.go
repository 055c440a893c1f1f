package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/spnd-app/spnd-server/internal/apperr"
	"github.com/spnd-app/spnd-server/internal/models"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Repository provides database operations
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser creates a new user in the database
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO ledger.users (username, email, password_hash, balance, created_at, updated_at)
		VALUES ($1, $2, $3, 0, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, user.Username, user.Email, user.PasswordHash).
		Scan(&user.ID, &user.CreatedAt)
	if isUniqueViolation(err) {
		return apperr.New(apperr.Conflict, "email is already registered")
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	user.Balance = 0
	return nil
}

// FindUserByEmail retrieves a user by email
func (r *Repository) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, username, email, password_hash, balance, created_at
		FROM ledger.users
		WHERE email = $1`
	err := r.db.QueryRowContext(ctx, query, email).
		Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Balance, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apperr.New(apperr.NotFound, "user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// FindUserByID retrieves a user by identifier
func (r *Repository) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, username, email, password_hash, balance, created_at
		FROM ledger.users
		WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Balance, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apperr.New(apperr.NotFound, "user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// Snapshot returns the user together with ledger activity counts.
func (r *Repository) Snapshot(ctx context.Context, userID string) (*models.AccountSnapshot, error) {
	user, err := r.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	snap := &models.AccountSnapshot{User: *user}
	query := `
		SELECT
			(SELECT count(*) FROM ledger.incomes WHERE user_id = $1),
			(SELECT count(*) FROM ledger.expenses WHERE user_id = $1),
			(SELECT count(*) FROM ledger.contributions WHERE user_id = $1)`
	err = r.db.QueryRowContext(ctx, query, userID).
		Scan(&snap.IncomeCount, &snap.ExpenseCount, &snap.ContributionCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count activity: %w", err)
	}
	return snap, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func rollback(tx *sql.Tx) {
	// sql.ErrTxDone after a successful commit is expected
	_ = tx.Rollback()
}
