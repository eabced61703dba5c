package order

import (
	"context"

	"github.com/no0e/Projet2A-Ub-EJR-Eats/internal/domain/delivery"
	"github.com/no0e/Projet2A-Ub-EJR-Eats/internal/domain/order"
)

type IDGenerator interface {
	NewID() string
}

// CheckoutStore commits an order. Implementations must persist the order and
// decrement stock for every line as one atomic unit: either all decrements
// succeed and the order exists, or nothing changed. A line whose live stock
// cannot cover its quantity fails the whole call with
// item.ErrInsufficientStock.
type CheckoutStore interface {
	CreateOrder(ctx context.Context, o *order.Order) error
}

// Dispatcher creates the delivery for a freshly validated order.
type Dispatcher interface {
	Create(ctx context.Context, orderIDs, stops []string) (*delivery.Delivery, error)
}
