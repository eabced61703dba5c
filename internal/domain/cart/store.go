package cart

import "context"

// Store keeps at most one active cart per customer. Get never fails for an
// unknown customer; it returns a fresh empty cart so the first add works
// without a separate create step.
type Store interface {
	Get(ctx context.Context, customer string) (*Cart, error)
	Put(ctx context.Context, c *Cart) error
	Clear(ctx context.Context, customer string) error
}
