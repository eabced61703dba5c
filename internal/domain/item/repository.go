package item

import "context"

// Repository is the inventory store port. DecrementStock must be an atomic
// conditional update: it succeeds only when the live stock covers qty, and
// concurrent callers can never drive stock below zero.
type Repository interface {
	Create(ctx context.Context, it *Item) error
	Update(ctx context.Context, it *Item) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Item, error)
	FindByName(ctx context.Context, name string) (*Item, error)
	FindAll(ctx context.Context) ([]*Item, error)
	FindExposed(ctx context.Context) ([]*Item, error)
	DecrementStock(ctx context.Context, id string, qty int) (bool, error)
}
