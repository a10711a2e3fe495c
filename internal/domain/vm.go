package domain

// VMStatus represents the power state of a virtual machine
type VMStatus string

const (
	VMStatusRunning VMStatus = "running"
	VMStatusStopped VMStatus = "stopped"
	VMStatusError   VMStatus = "error"
)

// IsValid checks if a status is valid
func (s VMStatus) IsValid() bool {
	switch s {
	case VMStatusRunning, VMStatusStopped, VMStatusError:
		return true
	}
	return false
}

// String returns the string representation of the status
func (s VMStatus) String() string {
	return string(s)
}

// Toggled returns the status a power action transitions to. Only
// running and stopped toggle; error has no outgoing transition.
func (s VMStatus) Toggled() (VMStatus, bool) {
	switch s {
	case VMStatusRunning:
		return VMStatusStopped, true
	case VMStatusStopped:
		return VMStatusRunning, true
	}
	return s, false
}

type VirtualMachine struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Status   VMStatus `json:"status"`
	IP       string   `json:"ip"`
	Type     string   `json:"type"`
	Location string   `json:"location"`
	OwnerID  string   `json:"ownerId,omitempty"` // last user assigned, informational
	Pending  bool     `json:"pending"`           // a power action is in flight
}

// AnnotatedVM is a VirtualMachine with its owner's display name resolved
// for presentation. OwnerName is empty when the VM is unassigned or the
// owner is unknown.
type AnnotatedVM struct {
	VirtualMachine
	OwnerName string `json:"ownerName,omitempty"`
}
