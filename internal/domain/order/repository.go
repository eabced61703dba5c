package order

import "context"

type Repository interface {
	Insert(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, id string) (*Order, error)
	FindByCustomer(ctx context.Context, customer string) ([]*Order, error)
	// AssignDriver sets the driver on an already persisted order.
	AssignDriver(ctx context.Context, orderID, driver string) error
}
