package memory

import (
	"context"
	"fmt"

	domain "github.com/no0e/Projet2A-Ub-EJR-Eats/internal/domain/order"
)

// CheckoutStore commits an order against the in-memory stores. The stock
// decrement for all lines happens in one critical section of the item
// repository; if the order write then fails, the decrements are compensated
// so no stock goes missing without an order to show for it.
type CheckoutStore struct {
	items  *ItemRepository
	orders *OrderRepository
}

func NewCheckoutStore(items *ItemRepository, orders *OrderRepository) *CheckoutStore {
	return &CheckoutStore{items: items, orders: orders}
}

func (s *CheckoutStore) CreateOrder(ctx context.Context, o *domain.Order) error {
	quantities := make(map[string]int, len(o.Lines))
	for _, line := range o.Lines {
		quantities[line.ItemID] = line.Quantity
	}

	if err := s.items.DecrementStocks(ctx, quantities); err != nil {
		return err
	}

	if err := s.orders.Insert(ctx, o); err != nil {
		s.items.IncrementStocks(ctx, quantities)
		return fmt.Errorf("checkout: persist order: %w", err)
	}
	return nil
}
