package memory

import (
	"context"
	"fmt"
	"sync"

	domain "github.com/no0e/Projet2A-Ub-EJR-Eats/internal/domain/item"
)

// ItemRepository is the in-process inventory store. All reads return clones
// so callers can never mutate shared state behind the lock.
type ItemRepository struct {
	mu    sync.RWMutex
	items map[string]*domain.Item
}

func NewItemRepository() *ItemRepository {
	return &ItemRepository{
		items: make(map[string]*domain.Item),
	}
}

func (r *ItemRepository) Create(ctx context.Context, it *domain.Item) error {
	_ = ctx
	if it == nil || it.ID == "" {
		return fmt.Errorf("item repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[it.ID]; exists {
		return domain.ErrNameTaken
	}
	key := domain.NormalizeName(it.Name)
	for _, existing := range r.items {
		if domain.NormalizeName(existing.Name) == key {
			return domain.ErrNameTaken
		}
	}

	r.items[it.ID] = cloneItem(it)
	return nil
}

func (r *ItemRepository) Update(ctx context.Context, it *domain.Item) error {
	_ = ctx
	if it == nil || it.ID == "" {
		return fmt.Errorf("item repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[it.ID]; !exists {
		return domain.ErrNotFound
	}
	r.items[it.ID] = cloneItem(it)
	return nil
}

func (r *ItemRepository) Delete(ctx context.Context, id string) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[id]; !exists {
		return domain.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *ItemRepository) FindByID(ctx context.Context, id string) (*domain.Item, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	it, ok := r.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneItem(it), nil
}

func (r *ItemRepository) FindByName(ctx context.Context, name string) (*domain.Item, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	key := domain.NormalizeName(name)
	for _, it := range r.items {
		if domain.NormalizeName(it.Name) == key {
			return cloneItem(it), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *ItemRepository) FindAll(ctx context.Context) ([]*domain.Item, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Item, 0, len(r.items))
	for _, it := range r.items {
		out = append(out, cloneItem(it))
	}
	return out, nil
}

func (r *ItemRepository) FindExposed(ctx context.Context) ([]*domain.Item, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Item, 0, len(r.items))
	for _, it := range r.items {
		if it.Exposed {
			out = append(out, cloneItem(it))
		}
	}
	return out, nil
}

// DecrementStock is the atomic read-check-decrement for one item. The check
// and the write happen under one critical section, so concurrent callers can
// never drive stock negative.
func (r *ItemRepository) DecrementStock(ctx context.Context, id string, qty int) (bool, error) {
	_ = ctx
	if qty <= 0 {
		return false, domain.ErrInvalidQuantity
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	it, ok := r.items[id]
	if !ok {
		return false, domain.ErrNotFound
	}
	if it.Stock < qty {
		return false, nil
	}
	it.Stock -= qty
	it.Touch()
	return true, nil
}

// DecrementStocks applies a set of decrements all-or-nothing under a single
// critical section. Used by the checkout store for multi-line orders.
func (r *ItemRepository) DecrementStocks(ctx context.Context, quantities map[string]int) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	for id, qty := range quantities {
		if qty <= 0 {
			return domain.ErrInvalidQuantity
		}
		it, ok := r.items[id]
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
		}
		if it.Stock < qty {
			return fmt.Errorf("%w: %s", domain.ErrInsufficientStock, it.Name)
		}
	}
	for id, qty := range quantities {
		r.items[id].Stock -= qty
		r.items[id].Touch()
	}
	return nil
}

// IncrementStocks restores quantities, compensating a checkout whose order
// write failed after the decrement.
func (r *ItemRepository) IncrementStocks(ctx context.Context, quantities map[string]int) {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	for id, qty := range quantities {
		if it, ok := r.items[id]; ok {
			it.Stock += qty
			it.Touch()
		}
	}
}

func cloneItem(it *domain.Item) *domain.Item {
	if it == nil {
		return nil
	}
	clone := *it
	return &clone
}
