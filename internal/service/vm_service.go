package service

import (
	"context"
	"sync"
	"time"

	"github.com/caio/vmfleet/internal/domain"
	"github.com/caio/vmfleet/internal/policy"
	"github.com/caio/vmfleet/internal/repository"
)

// VMService executes power actions against the fleet. An action is a
// suspend point: the machine is marked pending while the simulated
// provider round-trip runs, a second action against the same machine is
// rejected instead of racing, and an unresolved action beyond the
// timeout bound reverts to the prior status.
type VMService struct {
	userRepo repository.UserRepository
	vmRepo   repository.VMRepository
	clock    Clock
	notifier Notifier

	delay   time.Duration
	timeout time.Duration

	mu       sync.Mutex
	inflight map[string]bool
}

func NewVMService(userRepo repository.UserRepository, vmRepo repository.VMRepository, clock Clock, notifier Notifier, delay, timeout time.Duration) *VMService {
	return &VMService{
		userRepo: userRepo,
		vmRepo:   vmRepo,
		clock:    clock,
		notifier: notifier,
		delay:    delay,
		timeout:  timeout,
		inflight: make(map[string]bool),
	}
}

// PowerAction toggles a machine between running and stopped on behalf
// of actorID. Machines in error state cannot be controlled. Clients may
// only act on machines they currently hold an unexpired grant for.
func (s *VMService) PowerAction(ctx context.Context, actorID, vmID string) (*domain.VirtualMachine, error) {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	vm, err := s.vmRepo.GetByID(ctx, vmID)
	if err != nil {
		return nil, err
	}

	if !policy.IsElevated(actor.Role) && !actor.VMAccess.HasActive(vmID, s.clock.Now()) {
		return nil, domain.ErrPermissionDenied
	}

	next, ok := vm.Status.Toggled()
	if !ok {
		return nil, domain.ErrVMUnavailable
	}

	if err := s.acquire(ctx, vm); err != nil {
		return nil, err
	}

	// Simulated provider round-trip; the pending marker set above is
	// what makes this a safe suspend point.
	if err := s.await(ctx); err != nil {
		s.release(context.WithoutCancel(ctx), vmID)
		return nil, err
	}

	// Re-read before applying: assignment may have changed other
	// fields while the action was in flight.
	current, err := s.vmRepo.GetByID(ctx, vmID)
	if err != nil {
		s.release(context.WithoutCancel(ctx), vmID)
		return nil, err
	}
	current.Status = next
	current.Pending = false
	if err := s.vmRepo.Update(ctx, current); err != nil {
		s.release(context.WithoutCancel(ctx), vmID)
		return nil, err
	}

	s.mu.Lock()
	delete(s.inflight, vmID)
	s.mu.Unlock()

	if s.notifier != nil {
		s.notifier.Notify(Event{Type: EventVMStatus, VMID: vmID, Status: next.String()})
	}
	return current, nil
}

// acquire marks the machine pending, rejecting when an action is
// already in flight.
func (s *VMService) acquire(ctx context.Context, vm *domain.VirtualMachine) error {
	s.mu.Lock()
	if s.inflight[vm.ID] || vm.Pending {
		s.mu.Unlock()
		return domain.ErrVMBusy
	}
	s.inflight[vm.ID] = true
	s.mu.Unlock()

	vm.Pending = true
	if err := s.vmRepo.Update(ctx, vm); err != nil {
		s.mu.Lock()
		delete(s.inflight, vm.ID)
		s.mu.Unlock()
		return err
	}
	return nil
}

// release clears the pending marker without changing status.
func (s *VMService) release(ctx context.Context, vmID string) {
	s.mu.Lock()
	delete(s.inflight, vmID)
	s.mu.Unlock()

	if vm, err := s.vmRepo.GetByID(ctx, vmID); err == nil && vm.Pending {
		vm.Pending = false
		_ = s.vmRepo.Update(ctx, vm)
	}
}

// await blocks for the simulated provider delay, bounded by the
// configured timeout and the request context.
func (s *VMService) await(ctx context.Context) error {
	delay := time.NewTimer(s.delay)
	defer delay.Stop()
	bound := time.NewTimer(s.timeout)
	defer bound.Stop()

	select {
	case <-delay.C:
		return nil
	case <-bound.C:
		return domain.ErrOperationTimedOut
	case <-ctx.Done():
		return domain.ErrOperationTimedOut
	}
}
