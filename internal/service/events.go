package service

// Event types pushed to connected dashboard clients after a mutation
// lands. Clients treat them as hints to re-fetch; visibility is always
// re-derived from current state, never from the event payload.
const (
	EventVMStatus      = "vm_status"
	EventVMAssigned    = "vm_assigned"
	EventVMRevoked     = "vm_revoked"
	EventGrantExtended = "grant_extended"
	EventRoleChanged   = "role_changed"
)

type Event struct {
	Type   string `json:"type"`
	VMID   string `json:"vmId,omitempty"`
	UserID string `json:"userId,omitempty"`
	Status string `json:"status,omitempty"`
	Role   string `json:"role,omitempty"`
}

// Notifier receives events after successful mutations. The websocket
// hub implements it; services tolerate a nil notifier.
type Notifier interface {
	Notify(ev Event)
}
