package orderControllers_test

import (
	"testing"

	orderControllers "github.com/pzepeda90/proyecto-final-cafeteria-sub000/controllers/order"
	"github.com/pzepeda90/proyecto-final-cafeteria-sub000/models"
	"github.com/pzepeda90/proyecto-final-cafeteria-sub000/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectOrderHappyPath(t *testing.T) {
	db := testutil.OpenTestDB(t)
	staff := testutil.SeedUser(t, db, models.RoleStaff)
	method := testutil.SeedPaymentMethod(t, db)
	productX := testutil.SeedProduct(t, db, "Product X", 500, 10)
	productY := testutil.SeedProduct(t, db, "Product Y", 1500, 4)

	order, problems, err := orderControllers.CreateDirect(db, staff.ID, orderControllers.DirectOrderRequest{
		PaymentMethodID: method.ID,
		DeliveryType:    "takeaway",
		Items: []orderControllers.DirectOrderItem{
			{ProductID: productX.ID, Quantity: 2, UnitPrice: 500},
			{ProductID: productY.ID, Quantity: 1, UnitPrice: 1500},
		},
	})
	require.NoError(t, err)
	require.Empty(t, problems)

	assert.InDelta(t, 2500, order.Subtotal, 1e-9)
	assert.InDelta(t, order.Subtotal+order.Tax-order.Discount, order.Total, 1e-9)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.DeliveryTakeaway, order.DeliveryType)
	require.NotNil(t, order.StaffID)
	assert.Equal(t, staff.ID, *order.StaffID)
	assert.Equal(t, staff.ID, order.UserID) // walk-in sale without a customer reference

	assert.Equal(t, 8, productStock(t, db, productX.ID))
	assert.Equal(t, 3, productStock(t, db, productY.ID))

	var history []models.OrderStatusHistory
	require.NoError(t, db.Where("order_id = ?", order.ID).Find(&history).Error)
	require.Len(t, history, 1)
	assert.Equal(t, staff.ID, history[0].ActorID)
}

func TestDirectOrderUsesTillPrices(t *testing.T) {
	db := testutil.OpenTestDB(t)
	staff := testutil.SeedUser(t, db, models.RoleStaff)
	method := testutil.SeedPaymentMethod(t, db)
	// Catalog says 1000; the till rings it up discounted at 800.
	product := testutil.SeedProduct(t, db, "Day-old Pastry", 1000, 5)

	order, problems, err := orderControllers.CreateDirect(db, staff.ID, orderControllers.DirectOrderRequest{
		PaymentMethodID: method.ID,
		DeliveryType:    "in_store",
		Items: []orderControllers.DirectOrderItem{
			{ProductID: product.ID, Quantity: 1, UnitPrice: 800},
		},
	})
	require.NoError(t, err)
	require.Empty(t, problems)
	require.Len(t, order.Items, 1)
	assert.InDelta(t, 800, order.Items[0].UnitPrice, 1e-9)
	assert.InDelta(t, 800, order.Subtotal, 1e-9)
}

func TestDirectOrderReportsAllProblemsUpFront(t *testing.T) {
	db := testutil.OpenTestDB(t)
	staff := testutil.SeedUser(t, db, models.RoleStaff)
	method := testutil.SeedPaymentMethod(t, db)
	scarce := testutil.SeedProduct(t, db, "Last Slice", 2000, 1)
	fine := testutil.SeedProduct(t, db, "House Blend", 1200, 50)

	_, problems, err := orderControllers.CreateDirect(db, staff.ID, orderControllers.DirectOrderRequest{
		PaymentMethodID: method.ID,
		DeliveryType:    "dine_in",
		Items: []orderControllers.DirectOrderItem{
			{ProductID: scarce.ID, Quantity: 3, UnitPrice: 2000},
			{ProductID: 9999, Quantity: 1, UnitPrice: 100},
			{ProductID: fine.ID, Quantity: 2, UnitPrice: 1200},
		},
	})
	require.NoError(t, err)
	require.Len(t, problems, 2)

	byProduct := map[uint]orderControllers.LineProblem{}
	for _, p := range problems {
		byProduct[p.ProductID] = p
	}
	require.Contains(t, byProduct, scarce.ID)
	assert.Equal(t, "insufficient_stock", byProduct[scarce.ID].Reason)
	require.NotNil(t, byProduct[scarce.ID].AvailableStock)
	assert.Equal(t, 1, *byProduct[scarce.ID].AvailableStock)
	require.Contains(t, byProduct, uint(9999))
	assert.Equal(t, "product_not_found", byProduct[uint(9999)].Reason)

	// No reservation committed for the valid lines either.
	assert.Equal(t, 1, productStock(t, db, scarce.ID))
	assert.Equal(t, 50, productStock(t, db, fine.ID))
	var orderCount int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orderCount).Error)
	assert.EqualValues(t, 0, orderCount)
}

func TestDirectOrderRejectsBadInput(t *testing.T) {
	db := testutil.OpenTestDB(t)
	staff := testutil.SeedUser(t, db, models.RoleStaff)
	method := testutil.SeedPaymentMethod(t, db)
	product := testutil.SeedProduct(t, db, "Espresso", 1500, 10)

	t.Run("no items", func(t *testing.T) {
		_, _, err := orderControllers.CreateDirect(db, staff.ID, orderControllers.DirectOrderRequest{
			PaymentMethodID: method.ID,
			DeliveryType:    "in_store",
		})
		assert.Error(t, err)
	})

	t.Run("bad delivery type", func(t *testing.T) {
		_, _, err := orderControllers.CreateDirect(db, staff.ID, orderControllers.DirectOrderRequest{
			PaymentMethodID: method.ID,
			DeliveryType:    "drone",
			Items: []orderControllers.DirectOrderItem{
				{ProductID: product.ID, Quantity: 1, UnitPrice: 1500},
			},
		})
		assert.Error(t, err)
	})

	t.Run("negative discount", func(t *testing.T) {
		_, _, err := orderControllers.CreateDirect(db, staff.ID, orderControllers.DirectOrderRequest{
			PaymentMethodID: method.ID,
			DeliveryType:    "in_store",
			Discount:        -100,
			Items: []orderControllers.DirectOrderItem{
				{ProductID: product.ID, Quantity: 1, UnitPrice: 1500},
			},
		})
		assert.Error(t, err)
	})
}

func TestDirectOrderDiscountKeepsTotalInvariant(t *testing.T) {
	db := testutil.OpenTestDB(t)
	staff := testutil.SeedUser(t, db, models.RoleStaff)
	method := testutil.SeedPaymentMethod(t, db)
	product := testutil.SeedProduct(t, db, "Combo", 4000, 10)

	order, problems, err := orderControllers.CreateDirect(db, staff.ID, orderControllers.DirectOrderRequest{
		PaymentMethodID: method.ID,
		DeliveryType:    "in_store",
		Discount:        500,
		Items: []orderControllers.DirectOrderItem{
			{ProductID: product.ID, Quantity: 1, UnitPrice: 4000},
		},
	})
	require.NoError(t, err)
	require.Empty(t, problems)
	assert.InDelta(t, 500, order.Discount, 1e-9)
	assert.InDelta(t, order.Subtotal+order.Tax-order.Discount, order.Total, 1e-9)
}
