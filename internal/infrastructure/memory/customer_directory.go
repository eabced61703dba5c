package memory

import (
	"context"
	"sync"

	domain "github.com/no0e/Projet2A-Ub-EJR-Eats/internal/domain/customer"
)

// CustomerDirectory is a small in-process profile lookup standing in for the
// accounts subsystem.
type CustomerDirectory struct {
	mu       sync.RWMutex
	profiles map[string]domain.Profile
}

func NewCustomerDirectory() *CustomerDirectory {
	return &CustomerDirectory{
		profiles: make(map[string]domain.Profile),
	}
}

func (d *CustomerDirectory) Register(p domain.Profile) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.profiles[p.Username] = p
}

func (d *CustomerDirectory) FindByUsername(ctx context.Context, username string) (*domain.Profile, error) {
	_ = ctx

	d.mu.RLock()
	defer d.mu.RUnlock()

	p, ok := d.profiles[username]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := p
	return &clone, nil
}
