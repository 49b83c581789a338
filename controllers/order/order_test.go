package orderControllers

import (
	"sync"
	"testing"

	cartControllers "github.com/natrenakres/prostore/controllers/cart"
	"github.com/natrenakres/prostore/models"
	"github.com/natrenakres/prostore/payment"
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

func createUser(t *testing.T, db *gorm.DB, id string, withAddress bool, paymentMethod string) models.User {
	t.Helper()
	user := models.User{
		ID:            id,
		Email:         id + "@example.com",
		Password:      "hash",
		Name:          "Test User",
		Role:          "user",
		PaymentMethod: paymentMethod,
	}
	if withAddress {
		user.Address = models.Address{
			FullName:   "Test User",
			Street:     "1 Main St",
			City:       "Springfield",
			PostalCode: "12345",
			Country:    "US",
		}
	}
	require.NoError(t, db.Create(&user).Error)
	return user
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

// checkoutReady seeds a user with address and payment method plus a cart
// holding qty of a fresh product, and returns both.
func checkoutReady(t *testing.T, db *gorm.DB, userID string, price float64, stock, qty int) (models.User, models.Product) {
	t.Helper()
	user := createUser(t, db, userID, true, payment.MethodPayPal)
	product := createProduct(t, db, "widget-"+userID, price, stock)
	_, err := cartControllers.AddToCart(db, user.ID, product.ID, qty)
	require.NoError(t, err)
	return user, product
}

type fakeProvider struct {
	createID string
	capture  payment.Capture
	captures int
	err      error
}

func (f *fakeProvider) CreateIntent(orderRef string, amount float64) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.createID, nil
}

func (f *fakeProvider) CaptureIntent(externalID string) (payment.Capture, error) {
	f.captures++
	if f.err != nil {
		return payment.Capture{}, f.err
	}
	return f.capture, nil
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	db := newTestDB(t)
	createUser(t, db, "user-1", true, payment.MethodPayPal)

	result, err := PlaceOrder(db, "user-1")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "/cart", result.RedirectTo)

	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestPlaceOrderNoAddress(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db, "user-1", false, payment.MethodPayPal)
	product := createProduct(t, db, "widget", 10, 5)
	_, err := cartControllers.AddToCart(db, user.ID, product.ID, 1)
	require.NoError(t, err)

	result, err := PlaceOrder(db, user.ID)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "/shipping-address", result.RedirectTo)
}

func TestPlaceOrderNoPaymentMethod(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db, "user-1", true, "")
	product := createProduct(t, db, "widget", 10, 5)
	_, err := cartControllers.AddToCart(db, user.ID, product.ID, 1)
	require.NoError(t, err)

	result, err := PlaceOrder(db, user.ID)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "/payment-method", result.RedirectTo)
}

func TestPlaceOrderUnknownUser(t *testing.T) {
	db := newTestDB(t)

	_, err := PlaceOrder(db, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestPlaceOrderSnapshotsCartAndClearsIt(t *testing.T) {
	db := newTestDB(t)
	user, product := checkoutReady(t, db, "user-1", 25.50, 10, 2)

	cartBefore, err := cartControllers.GetCart(db, user.ID)
	require.NoError(t, err)

	result, err := PlaceOrder(db, user.ID)
	require.NoError(t, err)
	require.True(t, result.Success)
	require.NotEmpty(t, result.OrderRef)
	assert.Equal(t, "/order/"+result.OrderRef, result.RedirectTo)

	var order models.Order
	require.NoError(t, db.Preload("Items").Where("order_ref = ?", result.OrderRef).First(&order).Error)

	require.Len(t, order.Items, 1)
	assert.Equal(t, product.ID, order.Items[0].ProductID)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.InDelta(t, 25.50, order.Items[0].Price, 1e-9)
	assert.InDelta(t, cartBefore.ItemsPrice, order.ItemsPrice, 1e-9)
	assert.InDelta(t, cartBefore.TotalPrice, order.TotalPrice, 1e-9)
	assert.Equal(t, payment.MethodPayPal, order.PaymentMethod)
	assert.Equal(t, user.Address, order.ShippingAddress)
	assert.False(t, order.IsPaid)

	// Cart is emptied atomically with order creation
	cartAfter, err := cartControllers.GetCart(db, user.ID)
	require.NoError(t, err)
	assert.Empty(t, cartAfter.Items)
	assert.InDelta(t, 0.0, cartAfter.ItemsPrice, 1e-9)
	assert.InDelta(t, 0.0, cartAfter.TotalPrice, 1e-9)

	// Stock is untouched until payment capture
	var fresh models.Product
	require.NoError(t, db.First(&fresh, product.ID).Error)
	assert.Equal(t, 10, fresh.Stock)
}

func TestUpdateOrderToPaidDecrementsStockOnce(t *testing.T) {
	db := newTestDB(t)
	_, product := checkoutReady(t, db, "user-1", 10, 10, 3)

	result, err := PlaceOrder(db, "user-1")
	require.NoError(t, err)
	require.True(t, result.Success)

	paid := models.PaymentResult{ProviderID: "TX-1", Status: "COMPLETED", PayerEmail: "buyer@example.com", AmountPaid: 44.5}
	require.NoError(t, UpdateOrderToPaid(db, result.OrderRef, paid))

	var order models.Order
	require.NoError(t, db.Where("order_ref = ?", result.OrderRef).First(&order).Error)
	assert.True(t, order.IsPaid)
	require.NotNil(t, order.PaidAt)
	assert.Equal(t, "TX-1", order.PaymentResult.ProviderID)
	assert.Equal(t, "buyer@example.com", order.PaymentResult.PayerEmail)

	var fresh models.Product
	require.NoError(t, db.First(&fresh, product.ID).Error)
	assert.Equal(t, 7, fresh.Stock)

	// Second capture is rejected and stock stays put
	err = UpdateOrderToPaid(db, result.OrderRef, paid)
	assert.ErrorIs(t, err, ErrAlreadyPaid)

	require.NoError(t, db.First(&fresh, product.ID).Error)
	assert.Equal(t, 7, fresh.Stock)
}

func TestUpdateOrderToPaidUnknownOrder(t *testing.T) {
	db := newTestDB(t)

	err := UpdateOrderToPaid(db, "missing", models.PaymentResult{})
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestConcurrentCaptureOnlyOneWins(t *testing.T) {
	db := newTestDB(t)
	_, product := checkoutReady(t, db, "user-1", 10, 10, 2)

	result, err := PlaceOrder(db, "user-1")
	require.NoError(t, err)
	require.True(t, result.Success)

	const attempts = 4
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = UpdateOrderToPaid(db, result.OrderRef, models.PaymentResult{ProviderID: "TX-1", Status: "COMPLETED"})
		}(i)
	}
	wg.Wait()

	var wins, losses int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		default:
			assert.ErrorIs(t, err, ErrAlreadyPaid)
			losses++
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, attempts-1, losses)

	var fresh models.Product
	require.NoError(t, db.First(&fresh, product.ID).Error)
	assert.Equal(t, 8, fresh.Stock)
}

func TestMarkDeliveredRequiresPayment(t *testing.T) {
	db := newTestDB(t)
	checkoutReady(t, db, "user-1", 10, 10, 1)

	result, err := PlaceOrder(db, "user-1")
	require.NoError(t, err)

	err = MarkDelivered(db, result.OrderRef)
	assert.ErrorIs(t, err, ErrNotPaid)

	require.NoError(t, UpdateOrderToPaid(db, result.OrderRef, models.PaymentResult{ProviderID: "TX-1"}))
	require.NoError(t, MarkDelivered(db, result.OrderRef))

	var order models.Order
	require.NoError(t, db.Where("order_ref = ?", result.OrderRef).First(&order).Error)
	assert.True(t, order.IsDelivered)
	require.NotNil(t, order.DeliveredAt)

	err = MarkDelivered(db, result.OrderRef)
	assert.ErrorIs(t, err, ErrAlreadyDelivered)
}

func TestCreateProviderOrderStoresIntentID(t *testing.T) {
	db := newTestDB(t)
	checkoutReady(t, db, "user-1", 10, 10, 1)

	result, err := PlaceOrder(db, "user-1")
	require.NoError(t, err)

	provider := &fakeProvider{createID: "PAYPAL-1"}
	externalID, err := CreateProviderOrder(db, provider, result.OrderRef)
	require.NoError(t, err)
	assert.Equal(t, "PAYPAL-1", externalID)

	var order models.Order
	require.NoError(t, db.Where("order_ref = ?", result.OrderRef).First(&order).Error)
	assert.Equal(t, "PAYPAL-1", order.PaymentResult.ProviderID)
	assert.False(t, order.IsPaid)
}

func TestReconcilePayPalPayment(t *testing.T) {
	db := newTestDB(t)
	_, product := checkoutReady(t, db, "user-1", 10, 10, 1)

	result, err := PlaceOrder(db, "user-1")
	require.NoError(t, err)

	provider := &fakeProvider{
		createID: "PAYPAL-1",
		capture: payment.Capture{
			ID:         "PAYPAL-1",
			Status:     payment.PayPalStatusCompleted,
			Completed:  true,
			PayerEmail: "buyer@example.com",
			Amount:     21.5,
		},
	}
	_, err = CreateProviderOrder(db, provider, result.OrderRef)
	require.NoError(t, err)

	require.NoError(t, ReconcilePayPalPayment(db, provider, result.OrderRef, "PAYPAL-1"))

	var order models.Order
	require.NoError(t, db.Where("order_ref = ?", result.OrderRef).First(&order).Error)
	assert.True(t, order.IsPaid)
	assert.Equal(t, "buyer@example.com", order.PaymentResult.PayerEmail)

	var fresh models.Product
	require.NoError(t, db.First(&fresh, product.ID).Error)
	assert.Equal(t, 9, fresh.Stock)
}

func TestReconcilePayPalPaymentMismatchedTransaction(t *testing.T) {
	db := newTestDB(t)
	checkoutReady(t, db, "user-1", 10, 10, 1)

	result, err := PlaceOrder(db, "user-1")
	require.NoError(t, err)

	provider := &fakeProvider{
		createID: "PAYPAL-1",
		capture:  payment.Capture{ID: "OTHER", Status: payment.PayPalStatusCompleted, Completed: true},
	}
	_, err = CreateProviderOrder(db, provider, result.OrderRef)
	require.NoError(t, err)

	err = ReconcilePayPalPayment(db, provider, result.OrderRef, "OTHER")
	assert.ErrorIs(t, err, ErrPaymentMismatch)

	var order models.Order
	require.NoError(t, db.Where("order_ref = ?", result.OrderRef).First(&order).Error)
	assert.False(t, order.IsPaid)
}

func TestReconcilePayPalPaymentIncomplete(t *testing.T) {
	db := newTestDB(t)
	checkoutReady(t, db, "user-1", 10, 10, 1)

	result, err := PlaceOrder(db, "user-1")
	require.NoError(t, err)

	provider := &fakeProvider{
		createID: "PAYPAL-1",
		capture:  payment.Capture{ID: "PAYPAL-1", Status: "PENDING", Completed: false},
	}
	_, err = CreateProviderOrder(db, provider, result.OrderRef)
	require.NoError(t, err)

	err = ReconcilePayPalPayment(db, provider, result.OrderRef, "PAYPAL-1")
	assert.ErrorIs(t, err, ErrPaymentMismatch)
}

func TestReconcileCardPaymentChecksMetadata(t *testing.T) {
	db := newTestDB(t)
	_, product := checkoutReady(t, db, "user-1", 10, 10, 1)

	result, err := PlaceOrder(db, "user-1")
	require.NoError(t, err)

	wrong := &fakeProvider{
		capture: payment.Capture{ID: "pi_1", Status: payment.StripeStatusSucceeded, Completed: true, OrderRef: "other-order"},
	}
	err = ReconcileCardPayment(db, wrong, result.OrderRef, "pi_1")
	assert.ErrorIs(t, err, ErrPaymentMismatch)

	right := &fakeProvider{
		capture: payment.Capture{ID: "pi_1", Status: payment.StripeStatusSucceeded, Completed: true, OrderRef: result.OrderRef, Amount: 21.5},
	}
	require.NoError(t, ReconcileCardPayment(db, right, result.OrderRef, "pi_1"))

	var order models.Order
	require.NoError(t, db.Where("order_ref = ?", result.OrderRef).First(&order).Error)
	assert.True(t, order.IsPaid)

	var fresh models.Product
	require.NoError(t, db.First(&fresh, product.ID).Error)
	assert.Equal(t, 9, fresh.Stock)
}
