package cart

import (
	"errors"
	"sort"

	"github.com/no0e/Projet2A-Ub-EJR-Eats/internal/domain/item"
)

var (
	ErrLineNotFound      = errors.New("cart: item is not in the cart")
	ErrItemAlreadyInCart = errors.New("cart: item is already in the cart")
)

// Cart is a customer's in-progress selection. Lines map a normalized item
// name to the requested quantity; items are weak references resolved against
// live inventory on every operation.
type Cart struct {
	Customer string
	Lines    map[string]int
}

func New(customer string) *Cart {
	return &Cart{
		Customer: customer,
		Lines:    make(map[string]int),
	}
}

func (c *Cart) Has(name string) bool {
	_, ok := c.Lines[item.NormalizeName(name)]
	return ok
}

// AddLine inserts a new line; adding a name already present is a conflict.
func (c *Cart) AddLine(name string, qty int) error {
	key := item.NormalizeName(name)
	if _, ok := c.Lines[key]; ok {
		return ErrItemAlreadyInCart
	}
	c.Lines[key] = qty
	return nil
}

// SetLine replaces a line's quantity; qty == 0 removes the line.
func (c *Cart) SetLine(name string, qty int) error {
	key := item.NormalizeName(name)
	if _, ok := c.Lines[key]; !ok {
		return ErrLineNotFound
	}
	if qty == 0 {
		delete(c.Lines, key)
		return nil
	}
	c.Lines[key] = qty
	return nil
}

func (c *Cart) RemoveLine(name string) error {
	key := item.NormalizeName(name)
	if _, ok := c.Lines[key]; !ok {
		return ErrLineNotFound
	}
	delete(c.Lines, key)
	return nil
}

func (c *Cart) Empty() bool {
	return len(c.Lines) == 0
}

// Names returns the line keys in stable order.
func (c *Cart) Names() []string {
	names := make([]string, 0, len(c.Lines))
	for name := range c.Lines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *Cart) Clone() *Cart {
	clone := New(c.Customer)
	for name, qty := range c.Lines {
		clone.Lines[name] = qty
	}
	return clone
}
