package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/caio/vmfleet/internal/api/middleware"
	"github.com/caio/vmfleet/internal/domain"
	"github.com/caio/vmfleet/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type LoginURLResponse struct {
	URL   string `json:"url"`
	State string `json:"state"`
}

type CallbackRequest struct {
	Code string `json:"code"`
}

type AuthResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

type UserResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	AvatarURL string `json:"avatarUrl"`
	Role      string `json:"role"`
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
		Role:      u.Role.String(),
	}
}

// LoginURL hands the frontend the Discord authorize URL to redirect to.
func (h *AuthHandler) LoginURL(w http.ResponseWriter, r *http.Request) {
	url, state := h.authService.LoginURL()
	writeJSON(w, http.StatusOK, LoginURLResponse{URL: url, State: state})
}

// Callback completes the OAuth2 flow with the authorization code the
// identity provider redirected back with.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	var req CallbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Code == "" {
		http.Error(w, "Authorization code is required", http.StatusBadRequest)
		return
	}

	result, err := h.authService.LoginWithCode(r.Context(), req.Code)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCode) {
			http.Error(w, "Invalid authorization code", http.StatusUnauthorized)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{
		User:         toUserResponse(result.User),
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
	})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.authService.GetUserByID(r.Context(), userID)
	if err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.authService.Logout(r.Context(), userID); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
