package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domcart "github.com/no0e/Projet2A-Ub-EJR-Eats/internal/domain/cart"
	domitem "github.com/no0e/Projet2A-Ub-EJR-Eats/internal/domain/item"
	"github.com/no0e/Projet2A-Ub-EJR-Eats/internal/infrastructure/memory"
)

func seedItems(t *testing.T) *memory.ItemRepository {
	t.Helper()
	repo := memory.NewItemRepository()

	galette, err := domitem.New("i-galette", "Galette", 320, domitem.CategoryMainCourse, 102, true)
	require.NoError(t, err)
	cola, err := domitem.New("i-cola", "Cola", 200, domitem.CategoryDrink, 50, true)
	require.NoError(t, err)
	secret, err := domitem.New("i-secret", "Secret Pie", 500, domitem.CategoryDessert, 10, false)
	require.NoError(t, err)

	for _, it := range []*domitem.Item{galette, cola, secret} {
		require.NoError(t, repo.Create(context.Background(), it))
	}
	return repo
}

func newCartService(t *testing.T) (*Service, *memory.ItemRepository) {
	t.Helper()
	items := seedItems(t)
	return NewService(memory.NewCartStore(), items), items
}

func TestAddPricesCartAgainstCatalogue(t *testing.T) {
	svc, _ := newCartService(t)
	ctx := context.Background()

	view, err := svc.Add(ctx, "alice", []string{"Galette", "cola"}, []int{3, 5})
	require.NoError(t, err)

	// 3*320 + 5*200 = 1960 minor units = 19.60
	assert.Equal(t, domitem.Price(1960), view.Total)
	assert.Equal(t, "19.60", view.Total.Major())
	assert.Len(t, view.Lines, 2)
}

func TestAddRejectsUnknownOrHiddenItems(t *testing.T) {
	svc, _ := newCartService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "alice", []string{"pizza"}, []int{1})
	assert.ErrorIs(t, err, domitem.ErrNotFound)

	// Unexposed items are invisible to customers.
	_, err = svc.Add(ctx, "alice", []string{"Secret Pie"}, []int{1})
	assert.ErrorIs(t, err, domitem.ErrNotFound)
}

func TestAddRejectsQuantityAboveStock(t *testing.T) {
	svc, items := newCartService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "alice", []string{"Galette"}, []int{120})
	assert.ErrorIs(t, err, domitem.ErrInsufficientStock)
	assert.Contains(t, err.Error(), "exceeds available stock")

	it, err := items.FindByName(ctx, "galette")
	require.NoError(t, err)
	assert.Equal(t, 102, it.Stock, "a rejected add must not touch stock")
}

func TestAddFailureLeavesCartUntouched(t *testing.T) {
	svc, _ := newCartService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "alice", []string{"Galette"}, []int{2})
	require.NoError(t, err)

	// Second call pairs one valid item with one unknown; nothing may apply.
	_, err = svc.Add(ctx, "alice", []string{"Cola", "pizza"}, []int{1, 1})
	require.Error(t, err)

	view, err := svc.View(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, "Galette", view.Lines[0].Name)
}

func TestAddDuplicateLineIsConflict(t *testing.T) {
	svc, _ := newCartService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "alice", []string{"Galette"}, []int{2})
	require.NoError(t, err)

	_, err = svc.Add(ctx, "alice", []string{"galette"}, []int{1})
	assert.ErrorIs(t, err, domcart.ErrItemAlreadyInCart)
}

func TestModify(t *testing.T) {
	svc, _ := newCartService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "alice", []string{"Galette"}, []int{2})
	require.NoError(t, err)

	view, err := svc.Modify(ctx, "alice", "Galette", 4)
	require.NoError(t, err)
	assert.Equal(t, domitem.Price(4*320), view.Total)

	_, err = svc.Modify(ctx, "alice", "Galette", 103)
	assert.ErrorIs(t, err, domitem.ErrInsufficientStock)

	_, err = svc.Modify(ctx, "alice", "Cola", 1)
	assert.ErrorIs(t, err, domcart.ErrLineNotFound)

	// Zero removes the line.
	view, err = svc.Modify(ctx, "alice", "Galette", 0)
	require.NoError(t, err)
	assert.Empty(t, view.Lines)
}

func TestRemove(t *testing.T) {
	svc, _ := newCartService(t)
	ctx := context.Background()

	_, err := svc.Remove(ctx, "alice", "Galette")
	assert.ErrorIs(t, err, domcart.ErrLineNotFound)

	_, err = svc.Add(ctx, "alice", []string{"Galette"}, []int{1})
	require.NoError(t, err)

	view, err := svc.Remove(ctx, "alice", "galette")
	require.NoError(t, err)
	assert.Empty(t, view.Lines)
}

func TestViewIsIdempotent(t *testing.T) {
	svc, _ := newCartService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "alice", []string{"Galette", "Cola"}, []int{3, 5})
	require.NoError(t, err)

	first, err := svc.View(ctx, "alice")
	require.NoError(t, err)
	second, err := svc.View(ctx, "alice")
	require.NoError(t, err)

	assert.Equal(t, first.Total, second.Total)
	assert.Equal(t, first.Lines, second.Lines)
}

func TestCartsAreIsolatedPerCustomer(t *testing.T) {
	svc, _ := newCartService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "alice", []string{"Galette"}, []int{1})
	require.NoError(t, err)

	view, err := svc.View(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, view.Lines)
	assert.Equal(t, domitem.Price(0), view.Total)
}
