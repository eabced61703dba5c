package memory

import (
	"context"
	"sync"

	domain "github.com/no0e/Projet2A-Ub-EJR-Eats/internal/domain/cart"
)

// CartStore keeps active carts in process memory, one per customer. Carts are
// cloned on the way in and out so two sessions of the same customer get
// last-write-wins without sharing a map.
type CartStore struct {
	mu    sync.RWMutex
	carts map[string]*domain.Cart
}

func NewCartStore() *CartStore {
	return &CartStore{
		carts: make(map[string]*domain.Cart),
	}
}

func (s *CartStore) Get(ctx context.Context, customerName string) (*domain.Cart, error) {
	_ = ctx

	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.carts[customerName]
	if !ok {
		return domain.New(customerName), nil
	}
	return c.Clone(), nil
}

func (s *CartStore) Put(ctx context.Context, c *domain.Cart) error {
	_ = ctx
	if c == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.carts[c.Customer] = c.Clone()
	return nil
}

func (s *CartStore) Clear(ctx context.Context, customerName string) error {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, customerName)
	return nil
}
