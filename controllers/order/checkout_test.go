package orderControllers_test

import (
	"testing"

	cartControllers "github.com/pzepeda90/proyecto-final-cafeteria-sub000/controllers/cart"
	orderControllers "github.com/pzepeda90/proyecto-final-cafeteria-sub000/controllers/order"
	"github.com/pzepeda90/proyecto-final-cafeteria-sub000/models"
	"github.com/pzepeda90/proyecto-final-cafeteria-sub000/pricing"
	"github.com/pzepeda90/proyecto-final-cafeteria-sub000/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func productStock(t *testing.T, db *gorm.DB, id uint) int {
	t.Helper()
	var product models.Product
	require.NoError(t, db.First(&product, "id = ?", id).Error)
	return product.Stock
}

func cartLineCount(t *testing.T, db *gorm.DB, cartID uint) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.CartItem{}).Where("cart_id = ?", cartID).Count(&count).Error)
	return count
}

func TestCheckoutHappyPath(t *testing.T) {
	db := testutil.OpenTestDB(t)
	user := testutil.SeedUser(t, db, models.RoleCustomer)
	address := testutil.SeedAddress(t, db, user.ID, false)
	method := testutil.SeedPaymentMethod(t, db)
	coffee := testutil.SeedProduct(t, db, "Americano", 1000, 5)
	cake := testutil.SeedProduct(t, db, "Carrot Cake", 2000, 4)

	cart, err := cartControllers.GetOrCreateCart(db, user.ID)
	require.NoError(t, err)
	require.NoError(t, cartControllers.AddItem(db, cart.CartID, coffee.ID, 3))
	require.NoError(t, cartControllers.AddItem(db, cart.CartID, cake.ID, 1))

	order, err := orderControllers.CreateFromCart(db, user.ID, orderControllers.CheckoutRequest{
		PaymentMethodID: method.ID,
		AddressID:       &address.ID,
		Notes:           "sin azúcar",
	})
	require.NoError(t, err)

	// Conservation: sum of line quantity x captured unit price == subtotal,
	// and total == subtotal + tax - discount.
	var lineSum float64
	for _, item := range order.Items {
		lineSum += item.UnitPrice * float64(item.Quantity)
	}
	assert.InDelta(t, lineSum, order.Subtotal, 1e-9)
	assert.InDelta(t, 5000, order.Subtotal, 1e-9)
	assert.InDelta(t, order.Subtotal+order.Tax-order.Discount, order.Total, 1e-9)
	assert.InDelta(t, pricing.Total(5000, 0), order.Total, 1e-9)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.DeliveryHomeDelivery, order.DeliveryType)
	require.NotNil(t, order.AddressID)
	assert.Equal(t, address.ID, *order.AddressID)

	// Stock committed, cart consumed, initial history written.
	assert.Equal(t, 2, productStock(t, db, coffee.ID))
	assert.Equal(t, 3, productStock(t, db, cake.ID))
	assert.EqualValues(t, 0, cartLineCount(t, db, cart.CartID))

	var history []models.OrderStatusHistory
	require.NoError(t, db.Where("order_id = ?", order.ID).Find(&history).Error)
	require.Len(t, history, 1)
	assert.Equal(t, models.OrderStatusPending, history[0].Status)
	assert.Equal(t, user.ID, history[0].ActorID)
}

func TestCheckoutCapturesPriceAtCreation(t *testing.T) {
	db := testutil.OpenTestDB(t)
	user := testutil.SeedUser(t, db, models.RoleCustomer)
	testutil.SeedAddress(t, db, user.ID, true)
	method := testutil.SeedPaymentMethod(t, db)
	coffee := testutil.SeedProduct(t, db, "Flat White", 2400, 10)

	cart, err := cartControllers.GetOrCreateCart(db, user.ID)
	require.NoError(t, err)
	require.NoError(t, cartControllers.AddItem(db, cart.CartID, coffee.ID, 1))

	order, err := orderControllers.CreateFromCart(db, user.ID, orderControllers.CheckoutRequest{
		PaymentMethodID: method.ID,
	})
	require.NoError(t, err)

	// A later catalog price edit must not change the historical order line.
	require.NoError(t, db.Model(&models.Product{}).
		Where("id = ?", coffee.ID).Update("price", 9999).Error)

	var item models.OrderItem
	require.NoError(t, db.First(&item, "order_id = ?", order.ID).Error)
	assert.InDelta(t, 2400, item.UnitPrice, 1e-9)
}

func TestCheckoutInsufficientStockIsAllOrNothing(t *testing.T) {
	db := testutil.OpenTestDB(t)
	user := testutil.SeedUser(t, db, models.RoleCustomer)
	testutil.SeedAddress(t, db, user.ID, true)
	method := testutil.SeedPaymentMethod(t, db)
	productA := testutil.SeedProduct(t, db, "Product A", 1000, 5)
	productB := testutil.SeedProduct(t, db, "Product B", 2000, 1)

	cart, err := cartControllers.GetOrCreateCart(db, user.ID)
	require.NoError(t, err)
	require.NoError(t, cartControllers.AddItem(db, cart.CartID, productA.ID, 3))
	require.NoError(t, cartControllers.AddItem(db, cart.CartID, productB.ID, 2))

	_, err = orderControllers.CreateFromCart(db, user.ID, orderControllers.CheckoutRequest{
		PaymentMethodID: method.ID,
	})
	var stockErr *models.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, productB.ID, stockErr.ProductID)
	assert.Equal(t, 1, stockErr.Available)

	// Nothing committed: both stocks untouched, cart unmodified, no order rows.
	assert.Equal(t, 5, productStock(t, db, productA.ID))
	assert.Equal(t, 1, productStock(t, db, productB.ID))
	assert.EqualValues(t, 2, cartLineCount(t, db, cart.CartID))

	var orderCount int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orderCount).Error)
	assert.EqualValues(t, 0, orderCount)
	var historyCount int64
	require.NoError(t, db.Model(&models.OrderStatusHistory{}).Count(&historyCount).Error)
	assert.EqualValues(t, 0, historyCount)
}

func TestCheckoutEmptyCart(t *testing.T) {
	db := testutil.OpenTestDB(t)
	user := testutil.SeedUser(t, db, models.RoleCustomer)
	testutil.SeedAddress(t, db, user.ID, true)
	method := testutil.SeedPaymentMethod(t, db)

	_, err := cartControllers.GetOrCreateCart(db, user.ID)
	require.NoError(t, err)

	_, err = orderControllers.CreateFromCart(db, user.ID, orderControllers.CheckoutRequest{
		PaymentMethodID: method.ID,
	})
	assert.ErrorIs(t, err, models.ErrCartEmpty)
}

func TestCheckoutAddressResolution(t *testing.T) {
	db := testutil.OpenTestDB(t)
	method := testutil.SeedPaymentMethod(t, db)
	coffee := testutil.SeedProduct(t, db, "Ristretto", 1400, 10)

	seedCartWithLine := func(t *testing.T, userID string) {
		cart, err := cartControllers.GetOrCreateCart(db, userID)
		require.NoError(t, err)
		require.NoError(t, cartControllers.AddItem(db, cart.CartID, coffee.ID, 1))
	}

	t.Run("falls back to principal address", func(t *testing.T) {
		user := testutil.SeedUser(t, db, models.RoleCustomer)
		testutil.SeedAddress(t, db, user.ID, false)
		principal := testutil.SeedAddress(t, db, user.ID, true)
		seedCartWithLine(t, user.ID)

		order, err := orderControllers.CreateFromCart(db, user.ID, orderControllers.CheckoutRequest{
			PaymentMethodID: method.ID,
		})
		require.NoError(t, err)
		require.NotNil(t, order.AddressID)
		assert.Equal(t, principal.ID, *order.AddressID)
	})

	t.Run("no address at all", func(t *testing.T) {
		user := testutil.SeedUser(t, db, models.RoleCustomer)
		seedCartWithLine(t, user.ID)

		_, err := orderControllers.CreateFromCart(db, user.ID, orderControllers.CheckoutRequest{
			PaymentMethodID: method.ID,
		})
		assert.ErrorIs(t, err, models.ErrMissingAddress)
	})

	t.Run("someone else's address", func(t *testing.T) {
		user := testutil.SeedUser(t, db, models.RoleCustomer)
		other := testutil.SeedUser(t, db, models.RoleCustomer)
		foreign := testutil.SeedAddress(t, db, other.ID, true)
		seedCartWithLine(t, user.ID)

		_, err := orderControllers.CreateFromCart(db, user.ID, orderControllers.CheckoutRequest{
			PaymentMethodID: method.ID,
			AddressID:       &foreign.ID,
		})
		assert.ErrorIs(t, err, models.ErrInvalidAddress)
	})
}

func TestCheckoutUnknownPaymentMethod(t *testing.T) {
	db := testutil.OpenTestDB(t)
	user := testutil.SeedUser(t, db, models.RoleCustomer)
	testutil.SeedAddress(t, db, user.ID, true)
	coffee := testutil.SeedProduct(t, db, "Macchiato", 1900, 10)

	cart, err := cartControllers.GetOrCreateCart(db, user.ID)
	require.NoError(t, err)
	require.NoError(t, cartControllers.AddItem(db, cart.CartID, coffee.ID, 1))

	_, err = orderControllers.CreateFromCart(db, user.ID, orderControllers.CheckoutRequest{
		PaymentMethodID: 424242,
	})
	assert.ErrorIs(t, err, models.ErrInvalidPayment)
}

func TestCheckoutDoubleSubmitCreatesOneOrder(t *testing.T) {
	db := testutil.OpenTestDB(t)
	user := testutil.SeedUser(t, db, models.RoleCustomer)
	testutil.SeedAddress(t, db, user.ID, true)
	method := testutil.SeedPaymentMethod(t, db)
	latte := testutil.SeedProduct(t, db, "Latte", 1200, 5)

	cart, err := cartControllers.GetOrCreateCart(db, user.ID)
	require.NoError(t, err)
	require.NoError(t, cartControllers.AddItem(db, cart.CartID, latte.ID, 2))

	req := orderControllers.CheckoutRequest{PaymentMethodID: method.ID}
	first, err := orderControllers.CreateFromCart(db, user.ID, req)
	require.NoError(t, err)
	require.NotZero(t, first.ID)

	// A repeated submission finds the cart already consumed; it must not
	// reserve stock again or produce a second order.
	_, err = orderControllers.CreateFromCart(db, user.ID, req)
	require.ErrorIs(t, err, models.ErrCartEmpty)

	var orders int64
	require.NoError(t, db.Model(&models.Order{}).Where("user_id = ?", user.ID).Count(&orders).Error)
	assert.EqualValues(t, 1, orders)
	assert.Equal(t, 3, productStock(t, db, latte.ID))
}
