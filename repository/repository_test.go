package repository

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/goliatone/go-storefront"
)

type fixedCustomer string

func (c fixedCustomer) GetUserEmail(context.Context) string { return string(c) + "@example.com" }
func (c fixedCustomer) GetUserID(context.Context) string    { return string(c) }

func setupManager(t *testing.T, customer storefront.CustomerResolver) (*Manager, *bun.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := sql.Open(sqliteshim.ShimName, dsn)
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	bunDB := bun.NewDB(db, sqlitedialect.New())
	t.Cleanup(func() {
		_ = bunDB.Close()
	})

	m := NewRepositoryManager(bunDB, customer)
	require.NoError(t, m.Validate())
	require.NoError(t, m.CreateSchema(context.Background()))
	return m, bunDB
}

func createProduct(t *testing.T, m *Manager, title, price string) *ProductModel {
	t.Helper()
	p, err := m.Products().Create(context.Background(), &ProductModel{
		Title:    title,
		ImageURL: "https://cdn.example/" + title + ".png",
		Price:    decimal.RequireFromString(price),
	})
	require.NoError(t, err)
	return p
}

func TestProductRepositoryCreateAndGet(t *testing.T) {
	m, _ := setupManager(t, nil)
	ctx := context.Background()

	created := createProduct(t, m, "Shirt", "19.99")
	require.NotEqual(t, uuid.Nil, created.ID)

	found, err := m.Products().GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Shirt", found.Title)
	assert.True(t, decimal.RequireFromString("19.99").Equal(found.Price))

	_, err = m.Products().GetByID(ctx, uuid.New())
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestCartRepositoryGetCartProducts(t *testing.T) {
	m, _ := setupManager(t, fixedCustomer("user-7"))
	ctx := context.Background()

	shirt := createProduct(t, m, "Shirt", "19.99")
	hat := createProduct(t, m, "Hat", "5.50")

	require.NoError(t, m.Carts().Add(ctx, "user-7", shirt.ID, 1))
	require.NoError(t, m.Carts().Add(ctx, "user-7", shirt.ID, 1))
	require.NoError(t, m.Carts().Add(ctx, "other", hat.ID, 3))

	products, err := m.Carts().GetCartProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)

	assert.Equal(t, shirt.ID.String(), products[0].ProductID)
	assert.Equal(t, "Shirt", products[0].Title)
	assert.Equal(t, "https://cdn.example/Shirt.png", products[0].ImageURL)
	assert.Equal(t, "19.99", products[0].Price.StringFixed(2))
	assert.Equal(t, int64(2), products[0].Quantity)
}

func TestCartRepositoryResolvesUserFromClaims(t *testing.T) {
	m, _ := setupManager(t, nil)
	hat := createProduct(t, m, "Hat", "5.50")
	require.NoError(t, m.Carts().Add(context.Background(), "user-9", hat.ID, 1))

	_, err := m.Carts().GetCartProducts(context.Background())
	require.Error(t, err)
	assert.True(t, storefront.HasTextCode(err, storefront.TextCodeIdentityMissing))

	claims := &storefront.Claims{}
	claims.Subject = "user-9"
	ctx := storefront.WithClaimsContext(context.Background(), claims)

	products, err := m.Carts().GetCartProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Hat", products[0].Title)
}

func TestCartRepositoryAddValidatesQuantity(t *testing.T) {
	m, _ := setupManager(t, nil)
	err := m.Carts().Add(context.Background(), "user-1", uuid.New(), 0)
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestCartRepositoryRemove(t *testing.T) {
	m, _ := setupManager(t, fixedCustomer("user-1"))
	ctx := context.Background()
	hat := createProduct(t, m, "Hat", "5.50")

	require.NoError(t, m.Carts().Add(ctx, "user-1", hat.ID, 1))
	require.NoError(t, m.Carts().Remove(ctx, "user-1", hat.ID))

	products, err := m.Carts().GetCartProducts(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestOrderRepositoryPlaceOrder(t *testing.T) {
	m, _ := setupManager(t, fixedCustomer("user-7"))
	ctx := context.Background()

	orderDate := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	m.Orders().now = func() time.Time { return orderDate }

	shirt := createProduct(t, m, "Shirt", "19.99")
	hat := createProduct(t, m, "Hat", "5.50")
	require.NoError(t, m.Carts().Add(ctx, "user-7", shirt.ID, 2))
	require.NoError(t, m.Carts().Add(ctx, "user-7", hat.ID, 1))

	require.NoError(t, m.Orders().PlaceOrder(ctx, "user-7"))

	products, err := m.Carts().GetCartProducts(ctx)
	require.NoError(t, err)
	assert.Empty(t, products, "cart is cleared")

	orders, err := m.Orders().FindByUserID(ctx, "user-7")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "45.48", orders[0].TotalPrice.StringFixed(2))
	assert.True(t, orderDate.Equal(orders[0].OrderDate))
	require.Len(t, orders[0].Items, 2)

	byProduct := map[uuid.UUID]*OrderItemModel{}
	for _, item := range orders[0].Items {
		byProduct[item.ProductID] = item
	}
	assert.Equal(t, int64(2), byProduct[shirt.ID].Quantity)
	assert.Equal(t, "39.98", byProduct[shirt.ID].TotalPrice.StringFixed(2))
	assert.Equal(t, "5.50", byProduct[hat.ID].TotalPrice.StringFixed(2))
}

func TestOrderRepositoryPlaceOrderEmptyCart(t *testing.T) {
	m, _ := setupManager(t, nil)

	err := m.Orders().PlaceOrder(context.Background(), "nobody")
	require.Error(t, err)
	assert.True(t, storefront.HasTextCode(err, storefront.TextCodeEmptyCart))

	err = m.Orders().PlaceOrder(context.Background(), "")
	require.Error(t, err)
	assert.True(t, storefront.HasTextCode(err, storefront.TextCodeIdentityMissing))
}

func TestManagerRunInTxCancelled(t *testing.T) {
	m, _ := setupManager(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.RunInTx(ctx, nil, func(context.Context, bun.Tx) error {
		t.Fatal("should not run")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}
