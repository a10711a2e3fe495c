package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/caio/vmfleet/internal/domain"
)

type vmRepo struct {
	store *Store
}

func (r *vmRepo) Create(_ context.Context, vm *domain.VirtualMachine) error {
	if strings.TrimSpace(vm.ID) == "" {
		return domain.ErrVMNotFound
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.vms[vm.ID] = *vm
	return nil
}

func (r *vmRepo) GetByID(_ context.Context, id string) (*domain.VirtualMachine, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	vm, ok := r.store.vms[id]
	if !ok {
		return nil, domain.ErrVMNotFound
	}
	return &vm, nil
}

func (r *vmRepo) List(_ context.Context) ([]*domain.VirtualMachine, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	out := make([]*domain.VirtualMachine, 0, len(r.store.vms))
	for _, vm := range r.store.vms {
		cp := vm
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *vmRepo) Update(_ context.Context, vm *domain.VirtualMachine) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.vms[vm.ID]; !ok {
		return domain.ErrVMNotFound
	}
	r.store.vms[vm.ID] = *vm
	return nil
}
