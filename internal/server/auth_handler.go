package server

import (
	"net/http"
	"time"

	"github.com/jonathan/hiring-tracker/internal/server/middleware"
	"github.com/jonathan/hiring-tracker/internal/types"
)

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	server       *Server
	userService  *UserService
	jwtService   *JWTService
	cookieSecure bool
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(s *Server, userService *UserService, jwtService *JWTService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		server:       s,
		userService:  userService,
		jwtService:   jwtService,
		cookieSecure: cookieSecure,
	}
}

// Register creates a candidate account and starts a session.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req types.CreateUserRequest
	if !h.server.decode(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		h.server.writeError(w, r, extractValidationErrors(err))
		return
	}

	user, err := h.userService.Register(r.Context(), &req)
	if err != nil {
		h.server.writeError(w, r, err)
		return
	}
	h.startSession(w, r, http.StatusCreated, user)
}

// Login authenticates with email and password and starts a session.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if !h.server.decode(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		h.server.writeError(w, r, extractValidationErrors(err))
		return
	}

	user, err := h.userService.Login(r.Context(), &req)
	if err != nil {
		h.server.writeError(w, r, err)
		return
	}
	h.startSession(w, r, http.StatusOK, user)
}

// Logout clears the session cookie. Bearer tokens simply expire.
func (h *AuthHandler) Logout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.jwtService.CookieName(),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	h.server.jsonResponse(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// Me returns the current user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.GetIdentity(r)
	user, err := h.userService.GetUser(r.Context(), id.UserID)
	if err != nil {
		h.server.writeError(w, r, err)
		return
	}
	h.server.jsonResponse(w, http.StatusOK, user)
}

// UpdatePassword changes the current user's password.
func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.GetIdentity(r)
	var req types.UpdatePasswordRequest
	if !h.server.decode(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		h.server.writeError(w, r, extractValidationErrors(err))
		return
	}

	if err := h.userService.UpdatePassword(r.Context(), id.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		h.server.writeError(w, r, err)
		return
	}
	h.server.jsonResponse(w, http.StatusOK, map[string]string{"message": "Password updated successfully"})
}

// CreateStaff lets an admin create an account with any role.
func (h *AuthHandler) CreateStaff(w http.ResponseWriter, r *http.Request) {
	var req types.CreateStaffRequest
	if !h.server.decode(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		h.server.writeError(w, r, extractValidationErrors(err))
		return
	}

	user, err := h.userService.CreateStaff(r.Context(), &req)
	if err != nil {
		h.server.writeError(w, r, err)
		return
	}
	h.server.jsonResponse(w, http.StatusCreated, user)
}

func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, status int, user *types.User) {
	token, err := h.jwtService.GenerateToken(user.ID, user.Role)
	if err != nil {
		h.server.writeError(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     h.jwtService.CookieName(),
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.jwtService.Expiration().Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	h.server.jsonResponse(w, status, types.LoginResponse{User: user, Token: token})
}
