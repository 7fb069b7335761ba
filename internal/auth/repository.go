// Package auth manages user accounts, credentials, and session tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Account types.
const (
	AccountEmail     = "email"
	AccountAnonymous = "anonymous"
)

// User represents a registered account. Email and PasswordHash are nil for
// anonymous demo accounts.
type User struct {
	ID           string    `json:"id"`
	Email        *string   `json:"email,omitempty"`
	PasswordHash *string   `json:"-"`
	AccountType  string    `json:"accountType"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ErrNotFound is returned when a user does not exist.
var ErrNotFound = errors.New("user not found")

// ErrAlreadyExists is returned when an email is already registered.
var ErrAlreadyExists = errors.New("user already exists")

// Repository handles all user database operations.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreateEmail inserts a new email/password account and returns the created record.
func (r *Repository) CreateEmail(ctx context.Context, email, passwordHash string) (*User, error) {
	u := &User{}
	err := r.db.QueryRow(ctx,
		`INSERT INTO users (email, password_hash, account_type)
		 VALUES ($1, $2, $3)
		 RETURNING id, email, password_hash, account_type, created_at, updated_at`,
		email, passwordHash, AccountEmail,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.AccountType, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// CreateAnonymous inserts a throwaway demo account with no credentials.
func (r *Repository) CreateAnonymous(ctx context.Context) (*User, error) {
	u := &User{}
	err := r.db.QueryRow(ctx,
		`INSERT INTO users (account_type)
		 VALUES ($1)
		 RETURNING id, email, password_hash, account_type, created_at, updated_at`,
		AccountAnonymous,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.AccountType, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create anonymous user: %w", err)
	}
	return u, nil
}

// GetByID fetches a user by their UUID.
func (r *Repository) GetByID(ctx context.Context, id string) (*User, error) {
	return r.get(ctx, `WHERE id = $1`, id)
}

// GetByEmail fetches a user by their email address.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.get(ctx, `WHERE email = $1`, email)
}

func (r *Repository) get(ctx context.Context, where string, arg any) (*User, error) {
	u := &User{}
	err := r.db.QueryRow(ctx,
		`SELECT id, email, password_hash, account_type, created_at, updated_at
		 FROM users `+where,
		arg,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.AccountType, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// isUniqueViolation checks whether an error is a PostgreSQL unique_violation (code 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
