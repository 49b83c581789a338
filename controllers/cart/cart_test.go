package cartControllers

import (
	"testing"

	"github.com/natrenakres/prostore/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps the in-memory database shared and serializes
	// concurrent transactions.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Review{},
	))
	return db
}

func createProduct(t *testing.T, db *gorm.DB, name string, price float64, stock int) models.Product {
	t.Helper()
	product := models.Product{
		Name:     name,
		Slug:     name,
		Category: "test",
		Price:    price,
		Stock:    stock,
	}
	require.NoError(t, db.Create(&product).Error)
	return product
}

func TestAddToCartComputesTotals(t *testing.T) {
	db := newTestDB(t)
	p := createProduct(t, db, "widget", 25.50, 10)

	cart, err := AddToCart(db, "user-1", p.ID, 2)
	require.NoError(t, err)

	assert.InDelta(t, 51.00, cart.ItemsPrice, 1e-9)
	assert.InDelta(t, 10.00, cart.ShippingPrice, 1e-9)
	assert.InDelta(t, 7.65, cart.TaxPrice, 1e-9)
	assert.InDelta(t, 68.65, cart.TotalPrice, 1e-9)
	assert.InDelta(t, cart.ItemsPrice+cart.ShippingPrice+cart.TaxPrice, cart.TotalPrice, 1e-9)
}

func TestAddToCartFreeShippingOverThreshold(t *testing.T) {
	db := newTestDB(t)
	p := createProduct(t, db, "pricey", 60, 10)

	cart, err := AddToCart(db, "user-1", p.ID, 2)
	require.NoError(t, err)

	assert.InDelta(t, 120.00, cart.ItemsPrice, 1e-9)
	assert.InDelta(t, 0.00, cart.ShippingPrice, 1e-9)
	assert.InDelta(t, cart.ItemsPrice+cart.ShippingPrice+cart.TaxPrice, cart.TotalPrice, 1e-9)
}

func TestAddToCartMergesByProduct(t *testing.T) {
	db := newTestDB(t)
	p := createProduct(t, db, "widget", 10, 10)

	_, err := AddToCart(db, "user-1", p.ID, 1)
	require.NoError(t, err)
	cart, err := AddToCart(db, "user-1", p.ID, 2)
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
}

func TestAddToCartOutOfStockLeavesCartUnchanged(t *testing.T) {
	db := newTestDB(t)
	p := createProduct(t, db, "scarce", 10, 3)

	before, err := AddToCart(db, "user-1", p.ID, 2)
	require.NoError(t, err)

	_, err = AddToCart(db, "user-1", p.ID, 2)
	assert.ErrorIs(t, err, ErrOutOfStock)

	after, err := GetCart(db, "user-1")
	require.NoError(t, err)
	require.Len(t, after.Items, 1)
	assert.Equal(t, 2, after.Items[0].Quantity)
	assert.InDelta(t, before.TotalPrice, after.TotalPrice, 1e-9)
}

func TestAddToCartUnknownProduct(t *testing.T) {
	db := newTestDB(t)

	_, err := AddToCart(db, "user-1", 999, 1)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestAddToCartInvalidQuantity(t *testing.T) {
	db := newTestDB(t)
	p := createProduct(t, db, "widget", 10, 10)

	_, err := AddToCart(db, "user-1", p.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestRemoveFromCartDecrementsAndDropsLine(t *testing.T) {
	db := newTestDB(t)
	p := createProduct(t, db, "widget", 10, 10)

	_, err := AddToCart(db, "user-1", p.ID, 2)
	require.NoError(t, err)

	cart, err := RemoveFromCart(db, "user-1", p.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 1, cart.Items[0].Quantity)
	assert.InDelta(t, cart.ItemsPrice+cart.ShippingPrice+cart.TaxPrice, cart.TotalPrice, 1e-9)

	cart, err = RemoveFromCart(db, "user-1", p.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.InDelta(t, 0.0, cart.ItemsPrice, 1e-9)
	assert.InDelta(t, 0.0, cart.ShippingPrice, 1e-9)
	assert.InDelta(t, 0.0, cart.TaxPrice, 1e-9)
	assert.InDelta(t, 0.0, cart.TotalPrice, 1e-9)
}

func TestRemoveFromCartMissingItem(t *testing.T) {
	db := newTestDB(t)
	p := createProduct(t, db, "widget", 10, 10)

	_, err := RemoveFromCart(db, "user-1", p.ID)
	assert.ErrorIs(t, err, ErrItemNotFound)
}
