package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	domain "github.com/no0e/Projet2A-Ub-EJR-Eats/internal/domain/delivery"
)

type DeliveryRepository struct {
	mu         sync.RWMutex
	deliveries map[string]*domain.Delivery
}

func NewDeliveryRepository() *DeliveryRepository {
	return &DeliveryRepository{
		deliveries: make(map[string]*domain.Delivery),
	}
}

func (r *DeliveryRepository) Insert(ctx context.Context, d *domain.Delivery) error {
	_ = ctx
	if d == nil || d.ID == "" {
		return fmt.Errorf("delivery repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.deliveries[d.ID]; exists {
		return fmt.Errorf("delivery repository: duplicate id %s", d.ID)
	}
	r.deliveries[d.ID] = d.Clone()
	return nil
}

func (r *DeliveryRepository) FindByID(ctx context.Context, id string) (*domain.Delivery, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.deliveries[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return d.Clone(), nil
}

func (r *DeliveryRepository) ListUnaccepted(ctx context.Context) ([]*domain.Delivery, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Delivery
	for _, d := range r.deliveries {
		if !d.Accepted {
			out = append(out, d.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// AcceptIfUnaccepted performs the claim as one compare-and-set under the
// write lock: of any number of concurrent callers, exactly one sees the
// delivery unaccepted and wins.
func (r *DeliveryRepository) AcceptIfUnaccepted(ctx context.Context, id, driver string, durationMin int) (bool, error) {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.deliveries[id]
	if !ok {
		return false, domain.ErrNotFound
	}
	if d.Accepted {
		return false, nil
	}
	d.Accepted = true
	d.Driver = driver
	d.DurationMin = durationMin
	return true, nil
}
