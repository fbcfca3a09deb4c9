package cart

import (
	"context"
	"testing"

	"github.com/angelmondragon/storefront-backend/internal/stock"
	"github.com/angelmondragon/storefront-backend/pkg/db/dbtest"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type conflictCounter struct{ n int }

func (c *conflictCounter) StockConflict() { c.n++ }

func newTestService(t *testing.T) (Service, *conflictCounter, *cartFixture) {
	t.Helper()
	client := dbtest.New(t)
	counter := &conflictCounter{}
	svc, err := NewService(NewRepository(client.DB()), client, counter)
	require.NoError(t, err)

	shopA := dbtest.Seller(t, client, "Shop A")
	shopB := dbtest.Seller(t, client, "Shop B")
	fx := &cartFixture{
		buyer: uuid.New(),
		tea:   dbtest.Product(t, client, shopA, "Tea", 10000, 5),
		cup:   dbtest.Product(t, client, shopA, "Cup", 25000, 2),
		rice:  dbtest.Product(t, client, shopB, "Rice", 120000, 100),
	}
	fx.shopA, fx.shopB = shopA.ID, shopB.ID
	return svc, counter, fx
}

type cartFixture struct {
	buyer        uuid.UUID
	shopA, shopB uuid.UUID
	tea, cup     models.Product
	rice         models.Product
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(nil, nil, nil)
	require.Error(t, err)
}

func TestAddMergesIntoExistingLine(t *testing.T) {
	svc, _, fx := newTestService(t)
	ctx := context.Background()

	first, err := svc.Add(ctx, fx.buyer, AddItemInput{ProductID: fx.tea.ID, Quantity: 2})
	require.NoError(t, err)
	second, err := svc.Add(ctx, fx.buyer, AddItemInput{ProductID: fx.tea.ID, Quantity: 1})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 3, second.Quantity)
	assert.Equal(t, "Shop A", second.Seller.Name)
}

func TestAddBeyondStockIsConflict(t *testing.T) {
	svc, counter, fx := newTestService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, fx.buyer, AddItemInput{ProductID: fx.cup.ID, Quantity: 3})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStockConflict), "got %v", err)
	conflict, ok := stock.ConflictFrom(err)
	require.True(t, ok)
	assert.Equal(t, 2, conflict.MaxQuantity)
	assert.Equal(t, 1, counter.n)

	groups, err := svc.Get(ctx, fx.buyer)
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestAddUnknownProduct(t *testing.T) {
	svc, _, fx := newTestService(t)
	_, err := svc.Add(context.Background(), fx.buyer, AddItemInput{ProductID: uuid.New(), Quantity: 1})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestAddRejectsNonPositiveQuantity(t *testing.T) {
	svc, _, fx := newTestService(t)
	_, err := svc.Add(context.Background(), fx.buyer, AddItemInput{ProductID: fx.tea.ID, Quantity: 0})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestGetGroupsBySeller(t *testing.T) {
	svc, _, fx := newTestService(t)
	ctx := context.Background()

	for _, in := range []AddItemInput{
		{ProductID: fx.tea.ID, Quantity: 1},
		{ProductID: fx.rice.ID, Quantity: 2},
		{ProductID: fx.cup.ID, Quantity: 1},
	} {
		_, err := svc.Add(ctx, fx.buyer, in)
		require.NoError(t, err)
	}

	groups, err := svc.Get(ctx, fx.buyer)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, fx.shopA, groups[0].Seller.ID)
	assert.Len(t, groups[0].Items, 2)
	assert.Equal(t, fx.shopB, groups[1].Seller.ID)
	assert.Equal(t, int64(240000), groups[1].Subtotal())
}

func TestUpdateQuantity(t *testing.T) {
	svc, counter, fx := newTestService(t)
	ctx := context.Background()

	line, err := svc.Add(ctx, fx.buyer, AddItemInput{ProductID: fx.tea.ID, Quantity: 1})
	require.NoError(t, err)

	updated, err := svc.UpdateQuantity(ctx, fx.buyer, line.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Quantity)

	_, err = svc.UpdateQuantity(ctx, fx.buyer, line.ID, 6)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStockConflict))
	assert.Equal(t, 1, counter.n)

	_, err = svc.UpdateQuantity(ctx, fx.buyer, line.ID, 0)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.UpdateQuantity(ctx, uuid.New(), line.ID, 2)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "other buyers cannot touch the line")
}

func TestRemove(t *testing.T) {
	svc, _, fx := newTestService(t)
	ctx := context.Background()

	line, err := svc.Add(ctx, fx.buyer, AddItemInput{ProductID: fx.tea.ID, Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, svc.Remove(ctx, fx.buyer, line.ID))
	err = svc.Remove(ctx, fx.buyer, line.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestRestrict(t *testing.T) {
	svc, _, fx := newTestService(t)
	ctx := context.Background()

	tea, err := svc.Add(ctx, fx.buyer, AddItemInput{ProductID: fx.tea.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = svc.Add(ctx, fx.buyer, AddItemInput{ProductID: fx.cup.ID, Quantity: 1})
	require.NoError(t, err)
	rice, err := svc.Add(ctx, fx.buyer, AddItemInput{ProductID: fx.rice.ID, Quantity: 1})
	require.NoError(t, err)

	groups, err := svc.Restrict(ctx, fx.buyer, []uuid.UUID{rice.ID, tea.ID, uuid.New()})
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Len(t, groups[0].Items, 1)
	assert.Equal(t, tea.ID, groups[0].Items[0].ID)

	_, err = svc.Restrict(ctx, fx.buyer, nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.Restrict(ctx, fx.buyer, []uuid.UUID{uuid.New()})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
