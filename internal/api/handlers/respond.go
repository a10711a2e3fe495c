package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/caio/vmfleet/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR [handlers] failed to encode response: %v", err)
	}
}

// writeDomainError maps the service error taxonomy onto HTTP statuses.
// Unknown errors become a 500 without leaking detail.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrPermissionDenied),
		errors.Is(err, domain.ErrProtectedIdentity),
		errors.Is(err, domain.ErrLastFounder):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrVMNotFound),
		errors.Is(err, domain.ErrGrantNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrInvalidDuration),
		errors.Is(err, domain.ErrPastDate),
		errors.Is(err, domain.ErrInvalidRole):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrVMBusy),
		errors.Is(err, domain.ErrVMUnavailable):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrOperationTimedOut):
		http.Error(w, err.Error(), http.StatusGatewayTimeout)
	default:
		log.Printf("ERROR [handlers] internal error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
