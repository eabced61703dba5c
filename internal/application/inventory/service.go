package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domain "github.com/no0e/Projet2A-Ub-EJR-Eats/internal/domain/item"
	"github.com/no0e/Projet2A-Ub-EJR-Eats/internal/pkg/logging"
	"go.uber.org/zap"
)

type IDGenerator interface {
	NewID() string
}

// Service is the admin inventory surface. Each editable attribute has its own
// method so the set of mutations is closed at compile time.
type Service struct {
	items domain.Repository
	ids   IDGenerator
}

func NewService(items domain.Repository, ids IDGenerator) *Service {
	return &Service{items: items, ids: ids}
}

type CreateInput struct {
	Name     string
	Price    domain.Price
	Category string
	Stock    int
	Exposed  bool
}

func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.Item, error) {
	logger := logging.FromContext(ctx).With(zap.String("component", "inventory_service"))

	category, err := domain.ParseCategory(input.Category)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, input.Name); err != nil {
		return nil, err
	}

	entity, err := domain.New(s.ids.NewID(), input.Name, input.Price, category, input.Stock, input.Exposed)
	if err != nil {
		return nil, err
	}
	if err := s.items.Create(ctx, entity); err != nil {
		return nil, fmt.Errorf("inventory: create %q: %w", input.Name, err)
	}

	logger.Info("item_created",
		zap.String("item_id", entity.ID),
		zap.String("name", entity.Name),
		zap.String("category", string(entity.Category)),
		zap.Int("stock", entity.Stock),
	)
	return entity, nil
}

// Menu lists what customers can currently buy.
func (s *Service) Menu(ctx context.Context) ([]*domain.Item, error) {
	return s.items.FindExposed(ctx)
}

// Storage maps every item name to its stock, hidden items included.
func (s *Service) Storage(ctx context.Context) (map[string]int, error) {
	items, err := s.items.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("inventory: list items: %w", err)
	}
	storage := make(map[string]int, len(items))
	for _, it := range items {
		storage[it.Name] = it.Stock
	}
	return storage, nil
}

func (s *Service) Rename(ctx context.Context, oldName, newName string) (*domain.Item, error) {
	if strings.TrimSpace(newName) == "" {
		return nil, errors.New("inventory: new name is required")
	}
	if err := s.ensureNameFree(ctx, newName); err != nil {
		return nil, err
	}
	return s.update(ctx, oldName, func(it *domain.Item) error {
		it.Name = strings.TrimSpace(newName)
		return nil
	})
}

func (s *Service) SetPrice(ctx context.Context, name string, price domain.Price) (*domain.Item, error) {
	if price < 0 {
		return nil, domain.ErrNegativePrice
	}
	return s.update(ctx, name, func(it *domain.Item) error {
		it.Price = price
		return nil
	})
}

func (s *Service) SetStock(ctx context.Context, name string, stock int) (*domain.Item, error) {
	if stock < 0 {
		return nil, domain.ErrNegativeStock
	}
	return s.update(ctx, name, func(it *domain.Item) error {
		it.Stock = stock
		return nil
	})
}

func (s *Service) SetCategory(ctx context.Context, name, category string) (*domain.Item, error) {
	parsed, err := domain.ParseCategory(category)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, name, func(it *domain.Item) error {
		it.Category = parsed
		return nil
	})
}

// SetExposed toggles customer visibility; hiding an item is the soft removal
// used while historical orders still reference it.
func (s *Service) SetExposed(ctx context.Context, name string, exposed bool) (*domain.Item, error) {
	return s.update(ctx, name, func(it *domain.Item) error {
		it.Exposed = exposed
		return nil
	})
}

func (s *Service) Delete(ctx context.Context, name string) error {
	logger := logging.FromContext(ctx).With(zap.String("component", "inventory_service"))

	it, err := s.items.FindByName(ctx, name)
	if err != nil {
		return err
	}
	if err := s.items.Delete(ctx, it.ID); err != nil {
		return fmt.Errorf("inventory: delete %q: %w", name, err)
	}

	logger.Info("item_deleted", zap.String("item_id", it.ID), zap.String("name", it.Name))
	return nil
}

func (s *Service) update(ctx context.Context, name string, mutate func(*domain.Item) error) (*domain.Item, error) {
	it, err := s.items.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := mutate(it); err != nil {
		return nil, err
	}
	it.Touch()
	if err := s.items.Update(ctx, it); err != nil {
		return nil, fmt.Errorf("inventory: update %q: %w", name, err)
	}
	return it, nil
}

func (s *Service) ensureNameFree(ctx context.Context, name string) error {
	existing, err := s.items.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("inventory: lookup %q: %w", name, err)
	}
	return fmt.Errorf("%w: %q", domain.ErrNameTaken, existing.Name)
}
