package delivery

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/no0e/Projet2A-Ub-EJR-Eats/internal/domain/delivery"
	domorder "github.com/no0e/Projet2A-Ub-EJR-Eats/internal/domain/order"
	"github.com/no0e/Projet2A-Ub-EJR-Eats/internal/domain/routing"
	"github.com/no0e/Projet2A-Ub-EJR-Eats/internal/pkg/logging"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

const tracerName = "application/delivery"

type IDGenerator interface {
	NewID() string
}

// Service is both the dispatcher (grouping orders into deliveries) and the
// acceptance side (single-winner claim by a driver).
type Service struct {
	deliveries domain.Repository
	orders     domorder.Repository
	planner    routing.Planner
	ids        IDGenerator
	accepts    *prometheus.CounterVec
}

func NewService(
	deliveries domain.Repository,
	orders domorder.Repository,
	planner routing.Planner,
	ids IDGenerator,
	accepts *prometheus.CounterVec,
) *Service {
	return &Service{
		deliveries: deliveries,
		orders:     orders,
		planner:    planner,
		ids:        ids,
		accepts:    accepts,
	}
}

// Create groups orders into an unaccepted delivery. OrderIDs[i] is delivered
// at Stops[i]; the alignment is validated by the entity constructor.
func (s *Service) Create(ctx context.Context, orderIDs, stops []string) (*domain.Delivery, error) {
	logger := logging.FromContext(ctx).With(zap.String("component", "delivery_service"))

	entity, err := domain.New(s.ids.NewID(), orderIDs, stops)
	if err != nil {
		return nil, err
	}
	if err := s.deliveries.Insert(ctx, entity); err != nil {
		return nil, fmt.Errorf("delivery: insert: %w", err)
	}

	logger.Info("delivery_created",
		zap.String("delivery_id", entity.ID),
		zap.Int("orders", len(entity.OrderIDs)),
	)
	return entity, nil
}

// Available is an unaccepted delivery with its route estimate for the
// caller's travel mode.
type Available struct {
	Delivery *domain.Delivery
	Route    routing.Route
}

// ListAvailable returns every unaccepted delivery with computed route
// metrics. A stop that fails to geocode fails the whole listing; the planner
// error is propagated, not swallowed.
func (s *Service) ListAvailable(ctx context.Context, mode routing.Mode) ([]Available, error) {
	deliveries, err := s.deliveries.ListUnaccepted(ctx)
	if err != nil {
		return nil, fmt.Errorf("delivery: list unaccepted: %w", err)
	}

	out := make([]Available, 0, len(deliveries))
	for _, d := range deliveries {
		route, _, err := s.planRoute(ctx, d, mode)
		if err != nil {
			return nil, err
		}
		out = append(out, Available{Delivery: d, Route: route})
	}
	return out, nil
}

type AcceptResult struct {
	Delivery *domain.Delivery
	Route    routing.Route
	MapsLink string
}

// Accept claims an unaccepted delivery for a driver. Exactly one of N
// concurrent callers wins; the rest observe ErrAlreadyAccepted. The route is
// resolved before the conditional update so a geocoding failure leaves the
// delivery untouched in the available pool.
func (s *Service) Accept(ctx context.Context, deliveryID, driver string, mode routing.Mode) (_ *AcceptResult, err error) {
	logger := logging.FromContext(ctx).With(
		zap.String("component", "delivery_service"),
		zap.String("delivery_id", deliveryID),
		zap.String("driver", driver),
	)

	ctx, span := otel.Tracer(tracerName).Start(ctx, "Delivery.Accept")
	span.SetAttributes(
		attribute.String("delivery.id", deliveryID),
		attribute.String("delivery.driver", driver),
	)
	outcome := "success"
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
		if s.accepts != nil {
			s.accepts.WithLabelValues(outcome).Inc()
		}
	}()

	if driver == "" {
		outcome = "invalid_input"
		return nil, errors.New("delivery: driver is required")
	}

	d, err := s.deliveries.FindByID(ctx, deliveryID)
	if err != nil {
		outcome = "not_found"
		return nil, err
	}
	if d.Accepted {
		outcome = "already_accepted"
		return nil, fmt.Errorf("%w: %s", domain.ErrAlreadyAccepted, deliveryID)
	}

	route, coords, err := s.planRoute(ctx, d, mode)
	if err != nil {
		outcome = "route_failed"
		return nil, err
	}

	won, err := s.deliveries.AcceptIfUnaccepted(ctx, deliveryID, driver, route.DurationMin)
	if err != nil {
		outcome = "accept_failed"
		return nil, fmt.Errorf("delivery: accept: %w", err)
	}
	if !won {
		outcome = "already_accepted"
		return nil, fmt.Errorf("%w: %s", domain.ErrAlreadyAccepted, deliveryID)
	}

	for _, orderID := range d.OrderIDs {
		if err := s.orders.AssignDriver(ctx, orderID, driver); err != nil {
			// The claim already committed; a missing order row is an
			// inconsistency worth logging, not a reason to fail the driver.
			logger.Error("order_driver_assignment_failed",
				zap.String("order_id", orderID),
				zap.Error(err),
			)
		}
	}

	link, err := s.planner.MapsLink(coords)
	if err != nil {
		outcome = "link_failed"
		return nil, fmt.Errorf("delivery: maps link: %w", err)
	}

	d.Accepted = true
	d.Driver = driver
	d.DurationMin = route.DurationMin

	logger.Info("delivery_accepted",
		zap.Int("duration_min", route.DurationMin),
		zap.String("mode", string(route.Mode)),
	)
	return &AcceptResult{Delivery: d, Route: route, MapsLink: link}, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Delivery, error) {
	return s.deliveries.FindByID(ctx, id)
}

// planRoute geocodes every stop in order and computes the aggregate route
// from the restaurant for the given mode.
func (s *Service) planRoute(ctx context.Context, d *domain.Delivery, mode routing.Mode) (routing.Route, []routing.Coordinates, error) {
	coords := make([]routing.Coordinates, 0, len(d.Stops))
	for _, stop := range d.Stops {
		c, err := s.planner.Geocode(ctx, stop)
		if err != nil {
			return routing.Route{}, nil, fmt.Errorf("delivery %s: geocode %q: %w", d.ID, stop, err)
		}
		coords = append(coords, c)
	}
	route, err := s.planner.Directions(ctx, coords, mode)
	if err != nil {
		return routing.Route{}, nil, fmt.Errorf("delivery %s: directions: %w", d.ID, err)
	}
	return route, coords, nil
}
