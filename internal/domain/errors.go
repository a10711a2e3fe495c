package domain

import "errors"

// Authorization errors
var (
	ErrPermissionDenied  = errors.New("permission denied")
	ErrProtectedIdentity = errors.New("this user's role cannot be changed")
	ErrLastFounder       = errors.New("at least one founder account must remain")
)

// Grant errors
var (
	ErrGrantNotFound   = errors.New("access grant not found")
	ErrInvalidDuration = errors.New("duration must be at least one day")
	ErrPastDate        = errors.New("expiry date must be in the future")
)

// Entity errors
var (
	ErrUserNotFound = errors.New("user not found")
	ErrVMNotFound   = errors.New("virtual machine not found")
	ErrInvalidRole  = errors.New("invalid role")
)

// Power action errors
var (
	ErrVMBusy            = errors.New("a power action is already in flight for this machine")
	ErrVMUnavailable     = errors.New("machine is in error state and cannot be controlled")
	ErrOperationTimedOut = errors.New("power action timed out")
)
