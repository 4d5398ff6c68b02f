package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/akshatp/pgdesk/internal/apperror"
	"github.com/akshatp/pgdesk/internal/model"
	"github.com/akshatp/pgdesk/internal/service"
)

// AuthHandler serves signup and login.
type AuthHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authResponse is the shape returned by both signup and login. The token
// goes in the body; clients send it back in the Authorization header.
type authResponse struct {
	Message string     `json:"message"`
	Token   string     `json:"token"`
	Role    model.Role `json:"role"`
	User    publicUser `json:"user"`
}

type publicUser struct {
	ID    int64      `json:"id"`
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
}

func toPublicUser(u *model.User) publicUser {
	return publicUser{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// HandleSignup registers a new account.
//
// HTTP: POST /api/auth/signup
// REQUEST BODY: {"name":"...","email":"...","password":"...","role":"student|owner|admin"}
//
// Responds 201 with a token on success, 400 on bad input, 409 when the
// email is already registered.
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	result, err := h.auth.Signup(r.Context(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{
		Message: "signup successful",
		Token:   result.Token,
		Role:    result.User.Role,
		User:    toPublicUser(result.User),
	})
}

// HandleLogin verifies credentials and issues a fresh token.
//
// HTTP: POST /api/auth/login
// REQUEST BODY: {"email":"...","password":"..."}
//
// All credential failures come back as the same 401 so the endpoint does
// not leak which emails exist.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	result, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		Message: "login successful",
		Token:   result.Token,
		Role:    result.User.Role,
		User:    toPublicUser(result.User),
	})
}
