package order

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domcustomer "github.com/no0e/Projet2A-Ub-EJR-Eats/internal/domain/customer"
	domdelivery "github.com/no0e/Projet2A-Ub-EJR-Eats/internal/domain/delivery"
	domitem "github.com/no0e/Projet2A-Ub-EJR-Eats/internal/domain/item"
	domain "github.com/no0e/Projet2A-Ub-EJR-Eats/internal/domain/order"
	"github.com/no0e/Projet2A-Ub-EJR-Eats/internal/infrastructure/id"
	"github.com/no0e/Projet2A-Ub-EJR-Eats/internal/infrastructure/memory"
)

type stubDispatcher struct {
	mu      sync.Mutex
	created [][2][]string
	fail    error
}

func (d *stubDispatcher) Create(_ context.Context, orderIDs, stops []string) (*domdelivery.Delivery, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fail != nil {
		return nil, d.fail
	}
	d.created = append(d.created, [2][]string{orderIDs, stops})
	return domdelivery.New("d1", orderIDs, stops)
}

type fixture struct {
	svc        *Service
	items      *memory.ItemRepository
	orders     *memory.OrderRepository
	carts      *memory.CartStore
	dispatcher *stubDispatcher
	directory  *memory.CustomerDirectory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	items := memory.NewItemRepository()
	orders := memory.NewOrderRepository()
	carts := memory.NewCartStore()
	dispatcher := &stubDispatcher{}
	directory := memory.NewCustomerDirectory()
	directory.Register(domcustomer.Profile{Username: "alice", Address: "13 Main St."})

	galette, err := domitem.New("i-galette", "Galette", 320, domitem.CategoryMainCourse, 10, true)
	require.NoError(t, err)
	cola, err := domitem.New("i-cola", "Cola", 200, domitem.CategoryDrink, 50, true)
	require.NoError(t, err)
	require.NoError(t, items.Create(context.Background(), galette))
	require.NoError(t, items.Create(context.Background(), cola))

	svc := NewService(
		carts, items, memory.NewCheckoutStore(items, orders), orders,
		directory, dispatcher, id.NewUUIDGenerator(), nil,
	)
	return &fixture{
		svc:        svc,
		items:      items,
		orders:     orders,
		carts:      carts,
		dispatcher: dispatcher,
		directory:  directory,
	}
}

func (f *fixture) fillCart(t *testing.T, customerName string, lines map[string]int) {
	t.Helper()
	ctx := context.Background()
	c, err := f.carts.Get(ctx, customerName)
	require.NoError(t, err)
	for name, qty := range lines {
		require.NoError(t, c.AddLine(name, qty))
	}
	require.NoError(t, f.carts.Put(ctx, c))
}

func TestValidateRequiresConfirmation(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t, "alice", map[string]int{"galette": 1})

	for _, token := range []string{"", "no", "y", "oui"} {
		_, err := f.svc.Validate(context.Background(), ValidateInput{Customer: "alice", Confirm: token})
		assert.ErrorIs(t, err, domain.ErrConfirmationRequired, token)
	}

	// Token matching is case-insensitive.
	_, err := f.svc.Validate(context.Background(), ValidateInput{Customer: "alice", Confirm: "YES"})
	assert.NoError(t, err)
}

func TestValidateCreatesOrderAndDecrementsStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fillCart(t, "alice", map[string]int{"galette": 3, "cola": 5})

	created, err := f.svc.Validate(ctx, ValidateInput{Customer: "alice", Confirm: "yes"})
	require.NoError(t, err)

	assert.Equal(t, "13 Main St.", created.Address, "falls back to the profile address")
	assert.Equal(t, int64(3*320+5*200), created.Total)
	assert.Empty(t, created.Driver)

	galette, err := f.items.FindByName(ctx, "galette")
	require.NoError(t, err)
	assert.Equal(t, 7, galette.Stock)

	persisted, err := f.orders.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Len(t, persisted.Lines, 2)

	require.Len(t, f.dispatcher.created, 1)
	assert.Equal(t, []string{created.ID}, f.dispatcher.created[0][0])
	assert.Equal(t, []string{"13 Main St."}, f.dispatcher.created[0][1])
}

func TestValidateExplicitAddressWins(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t, "alice", map[string]int{"cola": 1})

	created, err := f.svc.Validate(context.Background(), ValidateInput{
		Customer: "alice",
		Confirm:  "yes",
		Address:  "2 Side Ave.",
	})
	require.NoError(t, err)
	assert.Equal(t, "2 Side Ave.", created.Address)
}

func TestValidateUnknownCustomerAddress(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t, "bob", map[string]int{"cola": 1})

	_, err := f.svc.Validate(context.Background(), ValidateInput{Customer: "bob", Confirm: "yes"})
	assert.ErrorIs(t, err, domcustomer.ErrNotFound)

	// Address resolution failed before any mutation.
	it, ferr := f.items.FindByName(context.Background(), "cola")
	require.NoError(t, ferr)
	assert.Equal(t, 50, it.Stock)
}

func TestValidateEmptyCart(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Validate(context.Background(), ValidateInput{Customer: "alice", Confirm: "yes"})
	assert.ErrorIs(t, err, domain.ErrEmptyCart)
}

func TestValidateInsufficientStockIsAtomic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	// Cola is fine, galette asks for more than the 10 in stock: the whole
	// order must be rejected with neither line applied and no order row.
	f.fillCart(t, "alice", map[string]int{"cola": 2, "galette": 11})

	_, err := f.svc.Validate(ctx, ValidateInput{Customer: "alice", Confirm: "yes"})
	assert.ErrorIs(t, err, domitem.ErrInsufficientStock)

	galette, err := f.items.FindByName(ctx, "galette")
	require.NoError(t, err)
	cola, err := f.items.FindByName(ctx, "cola")
	require.NoError(t, err)
	assert.Equal(t, 10, galette.Stock)
	assert.Equal(t, 50, cola.Stock)

	orders, err := f.orders.FindByCustomer(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, orders, "no dangling order after a failed checkout")

	assert.Empty(t, f.dispatcher.created)
}

func TestValidateDispatchFailureSurfaces(t *testing.T) {
	f := newFixture(t)
	f.dispatcher.fail = fmt.Errorf("dispatch backend down")
	f.fillCart(t, "alice", map[string]int{"cola": 1})

	_, err := f.svc.Validate(context.Background(), ValidateInput{Customer: "alice", Confirm: "yes"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dispatch")
}

func TestConcurrentValidationNeverOversells(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Stock 10, 8 customers each ordering 3: exactly 3 can win, 1 unit left.
	const (
		callers    = 8
		perCall    = 3
		stock      = 10
		expectWins = stock / perCall
	)

	customers := make([]string, callers)
	for i := range customers {
		customers[i] = fmt.Sprintf("customer-%d", i)
		f.directory.Register(domcustomer.Profile{Username: customers[i], Address: "13 Main St."})
		f.fillCart(t, customers[i], map[string]int{"galette": perCall})
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		failures  []error
	)
	for _, customerName := range customers {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			_, err := f.svc.Validate(ctx, ValidateInput{Customer: name, Confirm: "yes"})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, err)
			} else {
				successes++
			}
		}(customerName)
	}
	wg.Wait()

	assert.Equal(t, expectWins, successes)
	for _, err := range failures {
		assert.ErrorIs(t, err, domitem.ErrInsufficientStock)
	}

	galette, err := f.items.FindByName(ctx, "galette")
	require.NoError(t, err)
	assert.Equal(t, stock-expectWins*perCall, galette.Stock)
	assert.GreaterOrEqual(t, galette.Stock, 0, "stock must never go negative")
}
