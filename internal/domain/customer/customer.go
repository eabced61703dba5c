package customer

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("customer: not found")

// Profile is the slice of account data the core needs: the fallback delivery
// address for checkout. Account CRUD lives outside the core.
type Profile struct {
	Username string
	Address  string
}

// Directory looks up customer profiles. Backed by the accounts subsystem.
type Directory interface {
	FindByUsername(ctx context.Context, username string) (*Profile, error)
}
