package order

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound             = errors.New("order: not found")
	ErrEmptyCart            = errors.New("order: cart is empty")
	ErrAddressUnresolved    = errors.New("order: delivery address could not be resolved")
	ErrConfirmationRequired = errors.New("order: confirmation must be \"yes\"")
)

// Line is one immutable order line: a snapshot of the item name and the
// quantity committed at validation time.
type Line struct {
	ItemID   string
	ItemName string
	Quantity int
}

// Order is a validated cart. Items and address never change after creation;
// Driver is assigned exactly once, when a delivery containing the order is
// accepted.
type Order struct {
	ID        string
	Customer  string
	Driver    string
	Address   string
	Lines     []Line
	Total     int64
	CreatedAt time.Time
}

func New(id, customer, address string, lines []Line, total int64) (*Order, error) {
	if customer == "" {
		return nil, errors.New("order: customer is required")
	}
	if strings.TrimSpace(address) == "" {
		return nil, ErrAddressUnresolved
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	for _, l := range lines {
		if l.Quantity <= 0 {
			return nil, errors.New("order: line quantity must be greater than zero")
		}
	}

	return &Order{
		ID:        id,
		Customer:  customer,
		Address:   strings.TrimSpace(address),
		Lines:     lines,
		Total:     total,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Confirmed reports whether the caller supplied the affirmative token.
func Confirmed(token string) bool {
	return strings.EqualFold(strings.TrimSpace(token), "yes")
}

func (o *Order) Clone() *Order {
	clone := *o
	clone.Lines = make([]Line, len(o.Lines))
	copy(clone.Lines, o.Lines)
	return &clone
}
