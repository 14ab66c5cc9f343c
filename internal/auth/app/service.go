package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrMissingFields    = errors.New("missing required fields")
	ErrPasswordMismatch = errors.New("passwords do not match")
	// ErrProviderUnavailable means the identity provider could not be
	// reached or answered with a server error.
	ErrProviderUnavailable = errors.New("identity provider unavailable")
)

// ProviderError is a rejection from the identity provider. Message is shown
// to the user as is.
type ProviderError struct {
	Status  int
	Message string
}

func (e *ProviderError) Error() string {
	return e.Message
}

type Identity struct {
	UserID      string
	Email       string
	DisplayName string
}

type Provider interface {
	SignIn(ctx context.Context, email, password string) (Identity, error)
	SignUp(ctx context.Context, email, password, displayName string) (Identity, error)
}

type TokenIssuer interface {
	Issue(userID, email string) (string, time.Time, error)
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignUpRequest struct {
	FullName        string `json:"full_name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
}

type Service struct {
	provider Provider
	tokens   TokenIssuer
}

func NewService(provider Provider, tokens TokenIssuer) *Service {
	return &Service{provider: provider, tokens: tokens}
}

// SignIn checks the credentials with the provider and opens a session.
func (s *Service) SignIn(ctx context.Context, req SignInRequest) (Session, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return Session{}, ErrMissingFields
	}

	id, err := s.provider.SignIn(ctx, email, req.Password)
	if err != nil {
		return Session{}, err
	}

	tok, exp, err := s.tokens.Issue(id.UserID, id.Email)
	if err != nil {
		return Session{}, fmt.Errorf("issue session: %w", err)
	}
	return Session{Token: tok, ExpiresAt: exp, UserID: id.UserID, Email: id.Email}, nil
}

// SignUp creates the account. It does not sign the user in.
func (s *Service) SignUp(ctx context.Context, req SignUpRequest) (Identity, error) {
	name := strings.TrimSpace(req.FullName)
	email := strings.TrimSpace(req.Email)
	if name == "" || email == "" || req.Password == "" || req.ConfirmPassword == "" {
		return Identity{}, ErrMissingFields
	}
	if req.Password != req.ConfirmPassword {
		return Identity{}, ErrPasswordMismatch
	}

	return s.provider.SignUp(ctx, email, req.Password, name)
}
