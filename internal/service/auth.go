// Authentication business logic.
//
// AuthService sits between the HTTP handlers and the repository/auth
// utilities:
//
//	AuthHandler (HTTP) → AuthService (business rules) → UserRepository (DB)
//	                   ↘ TokenService (JWT) / PasswordService (bcrypt)
//
// It owns the signup/login rules: field validation, email normalization,
// duplicate detection, credential verification, and token issuance. It has
// no knowledge of HTTP.

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/akshatp/pgdesk/internal/apperror"
	"github.com/akshatp/pgdesk/internal/auth"
	"github.com/akshatp/pgdesk/internal/model"
	"github.com/akshatp/pgdesk/internal/repository"
)

// AuthService handles signup, login, and token issuance.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the user record and the issued JWT so the handler can
// respond in one step. The user's password hash is never serialized
// (json:"-" on the model field).
type AuthResult struct {
	User  *model.User
	Token string
}

// Signup registers a new account and logs it in.
//
// Rules:
//   - name, email, password, and role are all required
//   - role must be one of the closed enum (student/owner/admin)
//   - email is normalized to lower case before the uniqueness check and
//     before storage, so uniqueness is case-insensitive
//   - the password is stored as a bcrypt hash
//
// A duplicate email yields apperror.ErrConflict whether it is caught by the
// pre-insert lookup or by the UNIQUE constraint under a concurrent race.
func (s *AuthService) Signup(ctx context.Context, name, email, password, role string) (*AuthResult, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	role = strings.TrimSpace(role)

	if name == "" {
		return nil, apperror.ValidationFailed("name", "name is required")
	}
	if email == "" {
		return nil, apperror.ValidationFailed("email", "email is required")
	}
	if password == "" {
		return nil, apperror.ValidationFailed("password", "password is required")
	}
	if role == "" {
		return nil, apperror.ValidationFailed("role", "role is required")
	}

	r := model.Role(role)
	if !r.Valid() {
		return nil, apperror.ValidationFailed("role", "role must be one of student, owner, admin")
	}

	// Friendly pre-check; the UNIQUE constraint on email is the real guard
	// against a concurrent duplicate slipping between check and insert.
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperror.Conflict("email already registered")
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("service/auth: checking email %s: %w", email, err)
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         r,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("service/auth: creating user %s: %w", email, err)
	}

	s.logger.Info("user signed up",
		slog.Int64("userID", user.ID),
		slog.String("role", string(user.Role)),
	)

	token, err := s.tokens.Issue(auth.Identity{UserID: user.ID, Email: user.Email, Role: user.Role})
	if err != nil {
		return nil, fmt.Errorf("service/auth: issuing token for user %d: %w", user.ID, err)
	}

	return &AuthResult{User: user, Token: token}, nil
}

// Login verifies credentials and issues a token.
//
// Both "no such email" and "wrong password" produce the same
// apperror.ErrUnauthorized so responses don't reveal which emails have
// accounts.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperror.Unauthorized("invalid email or password")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("invalid email or password")
		}
		return nil, fmt.Errorf("service/auth: looking up %s: %w", email, err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.Unauthorized("invalid email or password")
	}

	s.logger.Info("user logged in",
		slog.Int64("userID", user.ID),
		slog.String("role", string(user.Role)),
	)

	token, err := s.tokens.Issue(auth.Identity{UserID: user.ID, Email: user.Email, Role: user.Role})
	if err != nil {
		return nil, fmt.Errorf("service/auth: issuing token for user %d: %w", user.ID, err)
	}

	return &AuthResult{User: user, Token: token}, nil
}
