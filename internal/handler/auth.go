package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/mwhitlock/todo-backend/internal/domain"
	"github.com/mwhitlock/todo-backend/internal/service"
)

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// HandleRegister processes a JSON registration request.
// POST /api/auth/register
// Request:  {"name":"...","email":"...","password":"..."}
// Response: 201 {"status":"success","token":"..."}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	_, token, err := h.auth.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			writeError(w, http.StatusConflict, "An account with that email already exists.")
			return
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		slog.Error("register user", "error", err)
		writeError(w, http.StatusInternalServerError, "Registration failed, please try again later.")
		return
	}

	writeSuccess(w, http.StatusCreated, map[string]any{"token": token})
}

// HandleLogin processes a JSON login request.
// POST /api/auth/login
// Request:  {"email":"...","password":"..."}
// Response: 200 {"status":"success","token":"..."}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "Invalid credentials.")
			return
		}
		slog.Error("login user", "error", err)
		writeError(w, http.StatusInternalServerError, "Login failed, please try again later.")
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"token": token})
}

// HandleLogout revokes the presented bearer token.
// POST /api/auth/logout (authenticated)
// Response: 200 {"status":"success","message":"..."}
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "Unauthenticated.")
		return
	}

	if err := h.auth.Logout(r.Context(), token); err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			writeError(w, http.StatusUnauthorized, "Unauthenticated.")
			return
		}
		user := UserFromContext(r.Context())
		var userID int64
		if user != nil {
			userID = user.ID
		}
		slog.Error("logout user", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "Logout failed, please try again later.")
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"message": "Logged out successfully."})
}

// HandleMe returns the currently authenticated user.
// GET /api/auth/me (authenticated)
// Response: 200 {"status":"success","user":{...}}
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Unauthenticated.")
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"user": toUserDTO(user)})
}
