package delivery

import "context"

type Repository interface {
	Insert(ctx context.Context, d *Delivery) error
	FindByID(ctx context.Context, id string) (*Delivery, error)
	ListUnaccepted(ctx context.Context) ([]*Delivery, error)
	// AcceptIfUnaccepted is the single-winner transition. It atomically sets
	// accepted, driver and duration iff the delivery is still unaccepted, and
	// reports whether this caller won. A false result with a nil error means
	// another driver got there first.
	AcceptIfUnaccepted(ctx context.Context, id, driver string, durationMin int) (bool, error)
}
