package redisstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/no0e/Projet2A-Ub-EJR-Eats/internal/domain/cart"
)

func newTestStore(t *testing.T) (*CartStore, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCartStore(client, time.Hour), server
}

func TestGetUnknownCustomerReturnsEmptyCart(t *testing.T) {
	store, _ := newTestStore(t)

	c, err := store.Get(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", c.Customer)
	assert.True(t, c.Empty())
}

func TestPutGetRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	c := domain.New("alice")
	require.NoError(t, c.AddLine("Galette", 3))
	require.NoError(t, c.AddLine("Cola", 5))
	require.NoError(t, store.Put(ctx, c))

	loaded, err := store.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"galette": 3, "cola": 5}, loaded.Lines)
}

func TestClear(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	c := domain.New("alice")
	require.NoError(t, c.AddLine("Galette", 1))
	require.NoError(t, store.Put(ctx, c))

	require.NoError(t, store.Clear(ctx, "alice"))

	loaded, err := store.Get(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, loaded.Empty())
}

func TestCartsExpireWithTTL(t *testing.T) {
	store, server := newTestStore(t)
	ctx := context.Background()

	c := domain.New("alice")
	require.NoError(t, c.AddLine("Galette", 1))
	require.NoError(t, store.Put(ctx, c))

	server.FastForward(2 * time.Hour)

	loaded, err := store.Get(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, loaded.Empty(), "an expired cart is just an empty cart")
}

func TestCartsAreIsolatedPerCustomer(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	a := domain.New("alice")
	require.NoError(t, a.AddLine("Galette", 1))
	require.NoError(t, store.Put(ctx, a))

	b, err := store.Get(ctx, "bob")
	require.NoError(t, err)
	assert.True(t, b.Empty())
}
