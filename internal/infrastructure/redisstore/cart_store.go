package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domain "github.com/no0e/Projet2A-Ub-EJR-Eats/internal/domain/cart"
)

const keyPrefix = "cart:"

// CartStore keeps active carts in Redis so carts survive process restarts
// and multiple API instances see the same cart. Carts expire with the
// session TTL; an expired key is just an empty cart.
type CartStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCartStore(client *redis.Client, ttl time.Duration) *CartStore {
	return &CartStore{client: client, ttl: ttl}
}

func (s *CartStore) Get(ctx context.Context, customerName string) (*domain.Cart, error) {
	payload, err := s.client.Get(ctx, keyPrefix+customerName).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.New(customerName), nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis: get cart: %w", err)
	}

	var lines map[string]int
	if err := json.Unmarshal(payload, &lines); err != nil {
		return nil, fmt.Errorf("redis: decode cart: %w", err)
	}
	c := domain.New(customerName)
	c.Lines = lines
	return c, nil
}

func (s *CartStore) Put(ctx context.Context, c *domain.Cart) error {
	if c == nil {
		return nil
	}
	payload, err := json.Marshal(c.Lines)
	if err != nil {
		return fmt.Errorf("redis: encode cart: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+c.Customer, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set cart: %w", err)
	}
	return nil
}

func (s *CartStore) Clear(ctx context.Context, customerName string) error {
	if err := s.client.Del(ctx, keyPrefix+customerName).Err(); err != nil {
		return fmt.Errorf("redis: clear cart: %w", err)
	}
	return nil
}
