package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/caio/vmfleet/internal/api/middleware"
	"github.com/caio/vmfleet/internal/domain"
	"github.com/caio/vmfleet/internal/service"
	"github.com/go-chi/chi/v5"
)

type UserHandler struct {
	accessService *service.AccessService
}

func NewUserHandler(accessService *service.AccessService) *UserHandler {
	return &UserHandler{accessService: accessService}
}

type UserDetailResponse struct {
	UserResponse
	VMAccess []GrantResponse `json:"vmAccess"`
}

type GrantResponse struct {
	VMID      string    `json:"vmId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type SetRoleRequest struct {
	Role string `json:"role"`
}

type AssignVMRequest struct {
	VMID         string `json:"vmId"`
	DurationDays int    `json:"durationDays"`
}

type ExtendVMRequest struct {
	ExpiresAt time.Time `json:"expiresAt"`
}

func toUserDetailResponse(u *domain.User) UserDetailResponse {
	grants := make([]GrantResponse, 0, len(u.VMAccess))
	for _, g := range u.VMAccess {
		grants = append(grants, GrantResponse{VMID: g.VMID, ExpiresAt: g.ExpiresAt})
	}
	return UserDetailResponse{UserResponse: toUserResponse(u), VMAccess: grants}
}

// List returns every user with their grants. Elevated roles only.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	users, err := h.accessService.ListUsers(r.Context(), actorID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := make([]UserDetailResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, toUserDetailResponse(u))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *UserHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	targetID := chi.URLParam(r, "id")

	var req SetRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.accessService.SetRole(r.Context(), actorID, targetID, domain.Role(req.Role)); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *UserHandler) AssignVM(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	userID := chi.URLParam(r, "id")

	var req AssignVMRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.VMID == "" {
		http.Error(w, "vmId is required", http.StatusBadRequest)
		return
	}

	if err := h.accessService.AssignVM(r.Context(), actorID, req.VMID, userID, req.DurationDays); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *UserHandler) RevokeVM(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	userID := chi.URLParam(r, "id")
	vmID := chi.URLParam(r, "vmId")

	if err := h.accessService.RevokeVM(r.Context(), actorID, vmID, userID); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *UserHandler) ExtendVM(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	userID := chi.URLParam(r, "id")
	vmID := chi.URLParam(r, "vmId")

	var req ExtendVMRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.accessService.ExtendVM(r.Context(), actorID, vmID, userID, req.ExpiresAt); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
