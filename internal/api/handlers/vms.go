package handlers

import (
	"net/http"

	"github.com/caio/vmfleet/internal/api/middleware"
	"github.com/caio/vmfleet/internal/service"
	"github.com/go-chi/chi/v5"
)

type VMHandler struct {
	accessService *service.AccessService
	vmService     *service.VMService
}

func NewVMHandler(accessService *service.AccessService, vmService *service.VMService) *VMHandler {
	return &VMHandler{accessService: accessService, vmService: vmService}
}

// List returns the machines the requester may see: the whole fleet for
// elevated roles, the unexpired-granted subset for clients.
func (h *VMHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	vms, err := h.accessService.VisibleVMs(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, vms)
}

// Power toggles a machine between running and stopped. The call blocks
// for the simulated provider round-trip and returns the final state.
func (h *VMHandler) Power(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	vmID := chi.URLParam(r, "id")

	vm, err := h.vmService.PowerAction(r.Context(), userID, vmID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, vm)
}
