package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/ajay-develops/spotify-clone/internal/config"
)

const tokenTTL = 30 * 24 * time.Hour

// ErrInvalidCredentials is returned when the email/password pair does not match.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Service contains the business logic for account auth.
type Service struct {
	repo *Repository
	cfg  *config.Config
}

// NewService creates a new auth Service.
func NewService(repo *Repository, cfg *config.Config) *Service {
	return &Service{repo: repo, cfg: cfg}
}

// Register creates a new email/password account and issues a JWT.
func (s *Service) Register(ctx context.Context, email, password string) (string, *User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.repo.CreateEmail(ctx, email, string(hash))
	if err != nil {
		return "", nil, err
	}

	token, err := s.issueToken(u)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, u, nil
}

// Login verifies credentials and issues a JWT.
func (s *Service) Login(ctx context.Context, email, password string) (string, *User, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}
	if u.PasswordHash == nil {
		return "", nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.issueToken(u)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, u, nil
}

// SignInAnonymously creates a fresh demo account and issues a JWT for it.
// Every call yields a new account; anonymous songs keep playing when the
// session is abandoned because songs.user_id is nullable.
func (s *Service) SignInAnonymously(ctx context.Context) (string, *User, error) {
	u, err := s.repo.CreateAnonymous(ctx)
	if err != nil {
		return "", nil, err
	}

	token, err := s.issueToken(u)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, u, nil
}

// issueToken creates a signed JWT for the given user.
func (s *Service) issueToken(u *User) (string, error) {
	email := ""
	if u.Email != nil {
		email = *u.Email
	}
	claims := jwt.MapClaims{
		"sub":         u.ID,
		"email":       email,
		"accountType": u.AccountType,
		"iat":         time.Now().Unix(),
		"exp":         time.Now().Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}
