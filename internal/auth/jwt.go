// Package auth provides JWT issuance/verification, password hashing, and
// the HTTP middleware that enforces both.
//
// AUTHENTICATION FLOW:
//  1. Client signs up or logs in → server issues a signed JWT carrying
//     {user id, email, role} with a 7-day expiry
//  2. Client sends the token on every API call in the Authorization header:
//     Authorization: Bearer <token>
//  3. Middleware validates the signature and expiry, puts the decoded
//     Identity in the request context, and (for protected routes) checks
//     the role against the route's allowed set
//
// Tokens are stateless: there is no revocation list, so a token stays
// valid for its full lifetime regardless of server-side changes.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/akshatp/pgdesk/internal/model"
)

// TokenTTL is the fixed validity window for issued tokens. There is no
// refresh mechanism; after 7 days the client must log in again.
const TokenTTL = 7 * 24 * time.Hour

const issuer = "pgdesk"

// Identity is the decoded payload of a verified token. It is what
// authorization decisions are made against.
type Identity struct {
	UserID int64
	Email  string
	Role   model.Role
}

// TokenService signs and verifies identity tokens with a shared HMAC secret.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
// Example: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// claims is the JWT payload: the standard registered claims (sub, exp, iat,
// iss) plus the email and role needed for authorization without a DB lookup.
type claims struct {
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
	jwt.RegisteredClaims
}

// Issue creates and signs a token for the given identity, valid for TokenTTL
// from now. Signing algorithm is HS256 (symmetric HMAC-SHA256).
func (s *TokenService) Issue(id Identity) (string, error) {
	now := time.Now()

	c := claims{
		Email: id.Email,
		Role:  id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", id.UserID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// IssueWithDuration creates a token with a custom expiry. Used in tests to
// exercise the expiry path without waiting 7 days.
func (s *TokenService) IssueWithDuration(id Identity, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		Email: id.Email,
		Role:  id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", id.UserID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Verify parses and validates a token string and returns the Identity it
// encodes. It fails on a bad signature, expiry, wrong issuer, or a signing
// algorithm other than HS256 (jwt.WithValidMethods closes the
// algorithm-confusion hole where a "none"-signed token could be accepted).
func (s *TokenService) Verify(tokenStr string) (Identity, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, fmt.Errorf("auth: token expired")
		}
		return Identity{}, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return Identity{}, fmt.Errorf("auth: invalid token claims")
	}

	var userID int64
	if _, err := fmt.Sscanf(c.Subject, "%d", &userID); err != nil || userID <= 0 {
		return Identity{}, fmt.Errorf("auth: token has no valid subject")
	}
	if !c.Role.Valid() {
		return Identity{}, fmt.Errorf("auth: token has unknown role %q", c.Role)
	}

	return Identity{
		UserID: userID,
		Email:  c.Email,
		Role:   c.Role,
	}, nil
}
