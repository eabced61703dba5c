package order

import (
	"context"
	"errors"
	"fmt"

	domcart "github.com/no0e/Projet2A-Ub-EJR-Eats/internal/domain/cart"
	domcustomer "github.com/no0e/Projet2A-Ub-EJR-Eats/internal/domain/customer"
	domitem "github.com/no0e/Projet2A-Ub-EJR-Eats/internal/domain/item"
	domain "github.com/no0e/Projet2A-Ub-EJR-Eats/internal/domain/order"
	"github.com/no0e/Projet2A-Ub-EJR-Eats/internal/pkg/logging"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

const tracerName = "application/order"

// Service validates carts into orders. The stock check here is the
// authoritative one: the checkout store decrements conditionally, so two
// racing validations of the last unit cannot both succeed.
type Service struct {
	carts      domcart.Store
	items      domitem.Repository
	checkout   CheckoutStore
	orders     domain.Repository
	customers  domcustomer.Directory
	dispatcher Dispatcher
	ids        IDGenerator
	checkouts  *prometheus.CounterVec
}

func NewService(
	carts domcart.Store,
	items domitem.Repository,
	checkout CheckoutStore,
	orders domain.Repository,
	customers domcustomer.Directory,
	dispatcher Dispatcher,
	ids IDGenerator,
	checkouts *prometheus.CounterVec,
) *Service {
	return &Service{
		carts:      carts,
		items:      items,
		checkout:   checkout,
		orders:     orders,
		customers:  customers,
		dispatcher: dispatcher,
		ids:        ids,
		checkouts:  checkouts,
	}
}

type ValidateInput struct {
	Customer string
	Confirm  string
	// Address overrides the customer's profile address when set.
	Address string
}

// Validate turns the customer's active cart into a persisted order,
// atomically decrementing stock per line, then dispatches a delivery for it.
// Clearing the cart is the caller's responsibility.
func (s *Service) Validate(ctx context.Context, input ValidateInput) (_ *domain.Order, err error) {
	logger := logging.FromContext(ctx).With(
		zap.String("component", "order_service"),
		zap.String("customer", input.Customer),
	)

	ctx, span := otel.Tracer(tracerName).Start(ctx, "Order.Validate")
	span.SetAttributes(attribute.String("order.customer", input.Customer))
	outcome := "success"
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
		if s.checkouts != nil {
			s.checkouts.WithLabelValues(outcome).Inc()
		}
	}()

	if input.Customer == "" {
		outcome = "invalid_input"
		return nil, errors.New("order: customer is required")
	}
	if !domain.Confirmed(input.Confirm) {
		outcome = "not_confirmed"
		return nil, domain.ErrConfirmationRequired
	}

	address, err := s.resolveAddress(ctx, input)
	if err != nil {
		outcome = "address_unresolved"
		return nil, err
	}

	c, err := s.carts.Get(ctx, input.Customer)
	if err != nil {
		outcome = "cart_load_failed"
		return nil, fmt.Errorf("order: load cart: %w", err)
	}
	if c.Empty() {
		outcome = "empty_cart"
		return nil, domain.ErrEmptyCart
	}

	lines, total, err := s.resolveLines(ctx, c)
	if err != nil {
		outcome = "line_unresolved"
		return nil, err
	}

	entity, err := domain.New(s.ids.NewID(), input.Customer, address, lines, total)
	if err != nil {
		outcome = "invalid_order"
		return nil, err
	}
	span.SetAttributes(
		attribute.String("order.id", entity.ID),
		attribute.Int("order.lines", len(entity.Lines)),
	)

	if err := ctx.Err(); err != nil {
		outcome = "canceled"
		return nil, err
	}

	if err := s.checkout.CreateOrder(ctx, entity); err != nil {
		if errors.Is(err, domitem.ErrInsufficientStock) {
			outcome = "insufficient_stock"
		} else {
			outcome = "checkout_failed"
		}
		logger.Warn("checkout_rejected", zap.String("order_id", entity.ID), zap.Error(err))
		return nil, err
	}

	if _, err := s.dispatcher.Create(ctx, []string{entity.ID}, []string{entity.Address}); err != nil {
		// Stock is already committed; the order stands and dispatch can be
		// retried by an operator. Surface the failure instead of pretending
		// the whole flow succeeded.
		outcome = "dispatch_failed"
		logger.Error("delivery_dispatch_failed", zap.String("order_id", entity.ID), zap.Error(err))
		return nil, fmt.Errorf("order: dispatch delivery for %s: %w", entity.ID, err)
	}

	logger.Info("order_validated",
		zap.String("order_id", entity.ID),
		zap.Int("lines", len(entity.Lines)),
		zap.Int64("total", entity.Total),
	)
	return entity, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Order, error) {
	if id == "" {
		return nil, domain.ErrNotFound
	}
	return s.orders.FindByID(ctx, id)
}

func (s *Service) ListByCustomer(ctx context.Context, customerName string) ([]*domain.Order, error) {
	return s.orders.FindByCustomer(ctx, customerName)
}

// resolveAddress prefers the explicit address and falls back to the
// customer's profile. Resolution happens before any mutation.
func (s *Service) resolveAddress(ctx context.Context, input ValidateInput) (string, error) {
	if input.Address != "" {
		return input.Address, nil
	}
	profile, err := s.customers.FindByUsername(ctx, input.Customer)
	if err != nil {
		return "", fmt.Errorf("order: resolve address: %w", err)
	}
	if profile.Address == "" {
		return "", domain.ErrAddressUnresolved
	}
	return profile.Address, nil
}

// resolveLines snapshots the cart against the live catalogue. Quantities are
// only pre-checked here; the conditional decrement in the checkout store is
// what actually guards stock.
func (s *Service) resolveLines(ctx context.Context, c *domcart.Cart) ([]domain.Line, int64, error) {
	var (
		lines []domain.Line
		total int64
	)
	for _, name := range c.Names() {
		it, err := s.items.FindByName(ctx, name)
		if err != nil {
			return nil, 0, fmt.Errorf("order: resolve %q: %w", name, err)
		}
		if !it.Exposed {
			return nil, 0, fmt.Errorf("%w: %q", domitem.ErrNotFound, name)
		}
		qty := c.Lines[name]
		lines = append(lines, domain.Line{
			ItemID:   it.ID,
			ItemName: it.Name,
			Quantity: qty,
		})
		total += int64(it.Price) * int64(qty)
	}
	return lines, total, nil
}
