package cart

import (
	"context"
	"fmt"

	domcart "github.com/no0e/Projet2A-Ub-EJR-Eats/internal/domain/cart"
	domitem "github.com/no0e/Projet2A-Ub-EJR-Eats/internal/domain/item"
	"github.com/no0e/Projet2A-Ub-EJR-Eats/internal/pkg/logging"
	"go.uber.org/zap"
)

// Service is the cart manager. Every mutation revalidates quantities against
// live stock of exposed items; the authoritative check still happens at
// checkout, this one only keeps carts from promising more than is currently
// available.
type Service struct {
	carts domcart.Store
	items domitem.Repository
}

func NewService(carts domcart.Store, items domitem.Repository) *Service {
	return &Service{
		carts: carts,
		items: items,
	}
}

type ViewLine struct {
	Name      string
	Quantity  int
	UnitPrice domitem.Price
	Subtotal  domitem.Price
}

// View is a cart priced against the current catalogue, not a snapshot.
type View struct {
	Customer string
	Lines    []ViewLine
	Total    domitem.Price
}

// Add inserts one line per name/quantity pair. Each pair is validated against
// the exposed catalogue and any failure aborts the whole call without
// touching the stored cart.
func (s *Service) Add(ctx context.Context, customerName string, names []string, quantities []int) (*View, error) {
	logger := logging.FromContext(ctx).With(zap.String("component", "cart_service"))

	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no items given", domitem.ErrInvalidQuantity)
	}
	if len(names) != len(quantities) {
		return nil, fmt.Errorf("%w: %d names for %d quantities", domitem.ErrInvalidQuantity, len(names), len(quantities))
	}

	exposed, err := s.exposedByName(ctx)
	if err != nil {
		return nil, err
	}

	c, err := s.carts.Get(ctx, customerName)
	if err != nil {
		return nil, fmt.Errorf("cart: load: %w", err)
	}

	for i, name := range names {
		qty := quantities[i]
		if qty <= 0 {
			return nil, fmt.Errorf("%w: %q", domitem.ErrInvalidQuantity, name)
		}
		it, ok := exposed[domitem.NormalizeName(name)]
		if !ok {
			return nil, fmt.Errorf("%w: %q", domitem.ErrNotFound, name)
		}
		if qty > it.Stock {
			return nil, fmt.Errorf("%w: %q", domitem.ErrInsufficientStock, name)
		}
		if err := c.AddLine(name, qty); err != nil {
			return nil, fmt.Errorf("%w: %q", err, name)
		}
	}

	if err := s.carts.Put(ctx, c); err != nil {
		return nil, fmt.Errorf("cart: store: %w", err)
	}

	logger.Info("cart_items_added",
		zap.String("customer", customerName),
		zap.Int("added", len(names)),
		zap.Int("lines", len(c.Lines)),
	)
	return s.price(c, exposed), nil
}

// Modify replaces a line's quantity; zero removes the line.
func (s *Service) Modify(ctx context.Context, customerName, name string, qty int) (*View, error) {
	logger := logging.FromContext(ctx).With(zap.String("component", "cart_service"))

	if qty < 0 {
		return nil, fmt.Errorf("%w: %d", domitem.ErrInvalidQuantity, qty)
	}

	exposed, err := s.exposedByName(ctx)
	if err != nil {
		return nil, err
	}
	it, ok := exposed[domitem.NormalizeName(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domitem.ErrNotFound, name)
	}
	if qty > it.Stock {
		return nil, fmt.Errorf("%w: %q", domitem.ErrInsufficientStock, name)
	}

	c, err := s.carts.Get(ctx, customerName)
	if err != nil {
		return nil, fmt.Errorf("cart: load: %w", err)
	}
	if err := c.SetLine(name, qty); err != nil {
		return nil, fmt.Errorf("%w: %q", err, name)
	}
	if err := s.carts.Put(ctx, c); err != nil {
		return nil, fmt.Errorf("cart: store: %w", err)
	}

	logger.Info("cart_line_modified",
		zap.String("customer", customerName),
		zap.String("item", name),
		zap.Int("quantity", qty),
	)
	return s.price(c, exposed), nil
}

// Remove drops a line from the cart.
func (s *Service) Remove(ctx context.Context, customerName, name string) (*View, error) {
	logger := logging.FromContext(ctx).With(zap.String("component", "cart_service"))

	c, err := s.carts.Get(ctx, customerName)
	if err != nil {
		return nil, fmt.Errorf("cart: load: %w", err)
	}
	if err := c.RemoveLine(name); err != nil {
		return nil, fmt.Errorf("%w: %q", err, name)
	}
	if err := s.carts.Put(ctx, c); err != nil {
		return nil, fmt.Errorf("cart: store: %w", err)
	}

	logger.Info("cart_line_removed",
		zap.String("customer", customerName),
		zap.String("item", name),
	)

	exposed, err := s.exposedByName(ctx)
	if err != nil {
		return nil, err
	}
	return s.price(c, exposed), nil
}

// View prices the cart against the live catalogue. Viewing has no side
// effects: two consecutive views without a mutation in between report the
// same contents and total.
func (s *Service) View(ctx context.Context, customerName string) (*View, error) {
	c, err := s.carts.Get(ctx, customerName)
	if err != nil {
		return nil, fmt.Errorf("cart: load: %w", err)
	}
	exposed, err := s.exposedByName(ctx)
	if err != nil {
		return nil, err
	}
	return s.price(c, exposed), nil
}

func (s *Service) exposedByName(ctx context.Context) (map[string]*domitem.Item, error) {
	items, err := s.items.FindExposed(ctx)
	if err != nil {
		return nil, fmt.Errorf("cart: list exposed items: %w", err)
	}
	byName := make(map[string]*domitem.Item, len(items))
	for _, it := range items {
		byName[domitem.NormalizeName(it.Name)] = it
	}
	return byName, nil
}

// price builds the customer-facing view. Lines whose item has been hidden or
// removed since they were added no longer resolve and are left out of the
// total rather than priced from stale data.
func (s *Service) price(c *domcart.Cart, exposed map[string]*domitem.Item) *View {
	view := &View{Customer: c.Customer}
	for _, name := range c.Names() {
		it, ok := exposed[name]
		if !ok {
			continue
		}
		qty := c.Lines[name]
		sub := it.Price * domitem.Price(qty)
		view.Lines = append(view.Lines, ViewLine{
			Name:      it.Name,
			Quantity:  qty,
			UnitPrice: it.Price,
			Subtotal:  sub,
		})
		view.Total += sub
	}
	return view
}
