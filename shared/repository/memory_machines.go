package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Erixon159/autemix-app/shared/models"
)

// MemoryMachineRepo is an in-memory MachineRepository used by unit tests
type MemoryMachineRepo struct {
	mu       sync.RWMutex
	machines map[uuid.UUID]models.VendingMachine
}

// NewMemoryMachineRepo creates an empty in-memory machine repository
func NewMemoryMachineRepo() *MemoryMachineRepo {
	return &MemoryMachineRepo{machines: map[uuid.UUID]models.VendingMachine{}}
}

func (r *MemoryMachineRepo) Create(_ context.Context, machine *models.VendingMachine) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if machine.ID == uuid.Nil {
		machine.ID = uuid.New()
	}
	for _, m := range r.machines {
		if m.APIKeyDigest == machine.APIKeyDigest || m.APIKeyLookup == machine.APIKeyLookup {
			return ErrDuplicate
		}
	}
	r.machines[machine.ID] = *machine
	return nil
}

func (r *MemoryMachineRepo) FindByLookup(_ context.Context, lookupDigest string) (*models.VendingMachine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.machines {
		if m.APIKeyLookup == lookupDigest {
			machine := m
			return &machine, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryMachineRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*models.VendingMachine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.machines[id]
	if !ok || m.TenantID != tenantID {
		return nil, ErrNotFound
	}
	return &m, nil
}

func (r *MemoryMachineRepo) UpdateKey(_ context.Context, id uuid.UUID, signedDigest, lookupDigest string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.machines[id]
	if !ok {
		return ErrNotFound
	}
	m.APIKeyDigest = signedDigest
	m.APIKeyLookup = lookupDigest
	m.UpdatedAt = time.Now()
	r.machines[id] = m
	return nil
}

func (r *MemoryMachineRepo) ListByTenant(_ context.Context, tenantID uuid.UUID) ([]models.VendingMachine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var machines []models.VendingMachine
	for _, m := range r.machines {
		if m.TenantID == tenantID {
			machines = append(machines, m)
		}
	}
	sort.Slice(machines, func(i, j int) bool { return machines[i].Name < machines[j].Name })
	return machines, nil
}
