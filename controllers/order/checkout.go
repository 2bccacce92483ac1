package orderControllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pzepeda90/proyecto-final-cafeteria-sub000/models"
	"github.com/pzepeda90/proyecto-final-cafeteria-sub000/pricing"
	"github.com/pzepeda90/proyecto-final-cafeteria-sub000/stock"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CheckoutRequest struct {
	PaymentMethodID uint   `json:"payment_method_id" binding:"required"`
	AddressID       *uint  `json:"address_id"`
	Notes           string `json:"notes"`
}

// Generate unique order reference, e.g. 20250908130500-<uuid4>
func generateOrderRef() string {
	return time.Now().Format("20060102150405") + "-" + uuid.NewString()
}

// resolveAddress picks the delivery address for a checkout: the given address
// if it belongs to the user, otherwise the user's principal address.
func resolveAddress(db *gorm.DB, userID string, addressID *uint) (uint, error) {
	var address models.Address
	if addressID != nil {
		if err := db.First(&address, "id = ?", *addressID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, models.ErrInvalidAddress
			}
			return 0, err
		}
		if address.UserID != userID {
			return 0, models.ErrInvalidAddress
		}
		return address.ID, nil
	}
	err := db.Where("user_id = ? AND is_principal = ?", userID, true).First(&address).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, models.ErrMissingAddress
		}
		return 0, err
	}
	return address.ID, nil
}

func validatePaymentMethod(db *gorm.DB, id uint) error {
	var method models.PaymentMethod
	if err := db.First(&method, "id = ? AND active = ?", id, true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ErrInvalidPayment
		}
		return err
	}
	return nil
}

// CreateFromCart converts the user's cart into an order. The cart read, price
// snapshotting, stock reservation, order/item/history persistence and cart
// clearing all run in one transaction: either the whole checkout commits or
// none of it does. Locking the cart row serializes concurrent submissions for
// the same user; the loser re-reads an already-consumed cart.
func CreateFromCart(db *gorm.DB, userID string, req CheckoutRequest) (models.Order, error) {
	if err := validatePaymentMethod(db, req.PaymentMethodID); err != nil {
		return models.Order{}, err
	}
	addressID, err := resolveAddress(db, userID, req.AddressID)
	if err != nil {
		return models.Order{}, err
	}

	var order models.Order
	err = db.Transaction(func(tx *gorm.DB) error {
		var cart models.Cart
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("Items").
			Where("user_id = ?", userID).
			First(&cart).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrCartEmpty
			}
			return err
		}
		if len(cart.Items) == 0 {
			return models.ErrCartEmpty
		}

		var subtotal float64
		var orderItems []models.OrderItem

		for _, item := range cart.Items {
			var product models.Product
			if err := tx.First(&product, "id = ?", item.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return &models.ProductNotFoundError{ProductID: item.ProductID}
				}
				return err
			}

			// Reservation is the authoritative check; it fails fast on the
			// first line the ledger cannot satisfy and rolls everything back.
			if err := stock.ReserveAndDecrement(tx, product.ID, item.Quantity); err != nil {
				return err
			}

			// Freeze the current catalog price into the order line.
			subtotal += product.Price * float64(item.Quantity)
			orderItems = append(orderItems, models.OrderItem{
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    item.Quantity,
				UnitPrice:   product.Price,
			})
		}

		order = models.Order{
			OrderRef:        generateOrderRef(),
			UserID:          userID,
			AddressID:       &addressID,
			PaymentMethodID: req.PaymentMethodID,
			DeliveryType:    models.DeliveryHomeDelivery,
			Items:           orderItems,
			Subtotal:        subtotal,
			Tax:             pricing.Tax(subtotal),
			Discount:        0,
			Total:           pricing.Total(subtotal, 0),
			Notes:           req.Notes,
			Status:          models.OrderStatusPending,
			CreatedAt:       time.Now(),
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		history := models.OrderStatusHistory{
			OrderID:   order.ID,
			Status:    models.OrderStatusPending,
			ActorID:   userID,
			CreatedAt: time.Now(),
		}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}

		// Checkout consumes exactly the lines it ordered. A line added from
		// another device while this transaction ran stays in the cart; if any
		// ordered line is already gone the checkout rolls back.
		lineIDs := make([]uint, 0, len(cart.Items))
		for _, item := range cart.Items {
			lineIDs = append(lineIDs, item.ID)
		}
		res := tx.Where("id IN ?", lineIDs).Delete(&models.CartItem{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != int64(len(lineIDs)) {
			return models.ErrCartConflict
		}
		return tx.Model(&models.Cart{}).Where("cart_id = ?", cart.CartID).
			Update("updated_at", time.Now()).Error
	})
	if err != nil {
		return models.Order{}, err
	}
	return order, nil
}

// POST /user/orders
func CheckoutHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")

		var req CheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		order, err := CreateFromCart(db, userID, req)
		if err != nil {
			respondOrderCreationError(c, err)
			return
		}
		c.JSON(http.StatusCreated, order)
	}
}

// respondOrderCreationError maps order-creation failures onto client errors
// with actionable payloads; anything unexpected is a generic server error.
func respondOrderCreationError(c *gin.Context, err error) {
	var stockErr *models.InsufficientStockError
	var notFoundErr *models.ProductNotFoundError
	var unavailableErr *models.ProductUnavailableError

	switch {
	case errors.Is(err, models.ErrCartEmpty),
		errors.Is(err, models.ErrMissingAddress),
		errors.Is(err, models.ErrInvalidAddress),
		errors.Is(err, models.ErrInvalidPayment):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrCartConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &stockErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":           stockErr.Error(),
			"product_id":      stockErr.ProductID,
			"available_stock": stockErr.Available,
		})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      notFoundErr.Error(),
			"product_id": notFoundErr.ProductID,
		})
	case errors.As(err, &unavailableErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      unavailableErr.Error(),
			"product_id": unavailableErr.ProductID,
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
	}
}
