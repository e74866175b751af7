package wishlist

import (
	"context"
	"testing"

	"github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/internal/users"
	"github.com/angelmondragon/storefront-backend/pkg/db/dbtest"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Users:    users.NewRepository(conn),
		Products: products.NewRepository(conn),
	})
	require.NoError(t, err)
	return svc
}

func itemIDs(view *View) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(view.Items))
	for _, item := range view.Items {
		ids = append(ids, item.ID)
	}
	return ids
}

func TestWishlistAddIsIdempotent(t *testing.T) {
	conn := dbtest.Open(t)
	svc := newTestService(t, conn)
	ctx := context.Background()
	user := dbtest.MustCreateUser(t, conn)
	product := dbtest.MustCreateProduct(t, conn)

	first, err := svc.Add(ctx, user.ID, product.ID)
	require.NoError(t, err)
	second, err := svc.Add(ctx, user.ID, product.ID)
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{product.ID}, itemIDs(first))
	assert.Equal(t, []uuid.UUID{product.ID}, itemIDs(second))
	assert.Equal(t, 1, second.Count)

	stored, err := users.NewRepository(conn).FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Wishlist, 1)
	assert.Equal(t, user.Version+1, stored.Version, "second add must not write")
}

func TestWishlistToggleAndOrder(t *testing.T) {
	conn := dbtest.Open(t)
	svc := newTestService(t, conn)
	ctx := context.Background()
	user := dbtest.MustCreateUser(t, conn)
	a := dbtest.MustCreateProduct(t, conn)
	b := dbtest.MustCreateProduct(t, conn)
	c := dbtest.MustCreateProduct(t, conn)

	for _, p := range []uuid.UUID{a.ID, b.ID, c.ID} {
		_, err := svc.Add(ctx, user.ID, p)
		require.NoError(t, err)
	}

	view, err := svc.Remove(ctx, user.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a.ID, c.ID}, itemIDs(view))

	view, err = svc.Remove(ctx, user.ID, b.ID)
	require.NoError(t, err, "removing an absent product succeeds")
	assert.Equal(t, []uuid.UUID{a.ID, c.ID}, itemIDs(view))

	view, err = svc.Add(ctx, user.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a.ID, c.ID, b.ID}, itemIDs(view))
}

func TestWishlistAddRejectsUnknownOrInactive(t *testing.T) {
	conn := dbtest.Open(t)
	svc := newTestService(t, conn)
	ctx := context.Background()
	user := dbtest.MustCreateUser(t, conn)
	inactive := dbtest.MustCreateProduct(t, conn, dbtest.Inactive())

	_, err := svc.Add(ctx, user.ID, uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = svc.Add(ctx, user.ID, inactive.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = svc.List(ctx, uuid.Nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}

func TestWishlistListSkipsDeletedProducts(t *testing.T) {
	conn := dbtest.Open(t)
	svc := newTestService(t, conn)
	ctx := context.Background()
	user := dbtest.MustCreateUser(t, conn)
	kept := dbtest.MustCreateProduct(t, conn)
	gone := dbtest.MustCreateProduct(t, conn)

	_, err := svc.Add(ctx, user.ID, gone.ID)
	require.NoError(t, err)
	_, err = svc.Add(ctx, user.ID, kept.ID)
	require.NoError(t, err)
	require.NoError(t, conn.Delete(gone).Error)

	view, err := svc.List(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{kept.ID}, itemIDs(view))
}

func TestWishlistMoveToCart(t *testing.T) {
	conn := dbtest.Open(t)
	svc := newTestService(t, conn)
	ctx := context.Background()
	user := dbtest.MustCreateUser(t, conn)
	product := dbtest.MustCreateProduct(t, conn)

	_, err := svc.Add(ctx, user.ID, product.ID)
	require.NoError(t, err)

	result, err := svc.MoveToCart(ctx, user.ID, product.ID)
	require.NoError(t, err)
	assert.Empty(t, result.Wishlist.Items)
	require.Len(t, result.Cart.Items, 1)
	assert.Equal(t, product.ID, result.Cart.Items[0].ProductID)
	assert.Equal(t, 1, result.Cart.Items[0].Quantity)

	stored, err := users.NewRepository(conn).FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Version+2, stored.Version, "move is one write after the add")

	_, err = svc.MoveToCart(ctx, user.ID, product.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestWishlistMoveToCartRespectsStock(t *testing.T) {
	conn := dbtest.Open(t)
	svc := newTestService(t, conn)
	ctx := context.Background()
	user := dbtest.MustCreateUser(t, conn)
	product := dbtest.MustCreateProduct(t, conn, dbtest.WithStock(0))

	_, err := svc.Add(ctx, user.ID, product.ID)
	require.NoError(t, err)

	_, err = svc.MoveToCart(ctx, user.ID, product.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	view, err := svc.List(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, view.Items, 1, "failed move keeps the wishlist entry")
}
