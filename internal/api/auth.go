package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/ShinobiWonKnobi/LostAndFound-Official/internal/auth"
	"github.com/ShinobiWonKnobi/LostAndFound-Official/internal/store"
)

// AuthHandler handles registration and login.
type AuthHandler struct {
	DB          *sql.DB
	JWTSecret   string
	TokenExpiry time.Duration
}

type credentialsRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token   string `json:"token"`
	IsAdmin bool   `json:"isAdmin"`
}

// Register handles POST /api/register. Accounts are never admins, and an
// email may be registered more than once.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !validateRequest(w, &req) {
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		serverError(w, r, "error registering user", err)
		return
	}

	user, err := store.CreateUser(r.Context(), h.DB, req.Email, hash, false)
	if err != nil {
		serverError(w, r, "error registering user", err)
		return
	}

	slog.Info("user registered", "user_id", user.ID)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusCreated)
	w.Write([]byte("User registered successfully"))
}

// Login handles POST /api/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := store.GetUserByEmail(r.Context(), h.DB, req.Email)
	if err != nil {
		serverError(w, r, "error logging in", err)
		return
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		slog.Warn("login failed", "remote", r.RemoteAddr)
		jsonError(w, http.StatusBadRequest, "Invalid credentials")
		return
	}

	token, err := auth.GenerateToken(h.JWTSecret, user.Email, user.IsAdmin, h.TokenExpiry)
	if err != nil {
		serverError(w, r, "failed to generate token", err)
		return
	}

	slog.Info("user logged in", "user_id", user.ID, "admin", user.IsAdmin)
	jsonResponse(w, http.StatusOK, loginResponse{Token: token, IsAdmin: user.IsAdmin})
}
