package orderControllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pzepeda90/proyecto-final-cafeteria-sub000/models"
	"github.com/pzepeda90/proyecto-final-cafeteria-sub000/pricing"
	"github.com/pzepeda90/proyecto-final-cafeteria-sub000/stock"
	"gorm.io/gorm"
)

type DirectOrderItem struct {
	ProductID uint    `json:"product_id" binding:"required"`
	Quantity  int     `json:"quantity" binding:"required,min=1"`
	UnitPrice float64 `json:"unit_price" binding:"required,gt=0"`
}

type DirectOrderRequest struct {
	PaymentMethodID uint              `json:"payment_method_id" binding:"required"`
	CustomerID      string            `json:"customer_id"`
	AddressID       *uint             `json:"address_id"`
	DeliveryType    string            `json:"delivery_type" binding:"required"`
	Notes           string            `json:"notes"`
	Discount        float64           `json:"discount"`
	Items           []DirectOrderItem `json:"items" binding:"required,min=1,dive"`
}

// LineProblem reports one invalid requested line. The point-of-sale path
// validates every line before reserving anything, so the operator sees the
// complete set of problems in a single response.
type LineProblem struct {
	ProductID      uint   `json:"product_id"`
	Reason         string `json:"reason"`
	AvailableStock *int   `json:"available_stock,omitempty"`
}

var (
	errInvalidDeliveryType = errors.New("invalid delivery type")
	errNegativeDiscount    = errors.New("discount cannot be negative")
	errNoItems             = errors.New("order must contain at least one item")
)

func mapDeliveryType(s string) (models.DeliveryType, error) {
	switch models.DeliveryType(s) {
	case models.DeliveryInStore, models.DeliveryHomeDelivery,
		models.DeliveryTakeaway, models.DeliveryDineIn:
		return models.DeliveryType(s), nil
	default:
		return "", errInvalidDeliveryType
	}
}

// validateDirectLines checks every requested line against the catalog without
// reserving anything. Returns the full list of problems found.
func validateDirectLines(db *gorm.DB, items []DirectOrderItem) []LineProblem {
	var problems []LineProblem
	for _, line := range items {
		err := stock.CheckAvailability(db, line.ProductID, line.Quantity)
		if err == nil {
			continue
		}

		var stockErr *models.InsufficientStockError
		var notFoundErr *models.ProductNotFoundError
		var unavailableErr *models.ProductUnavailableError
		switch {
		case errors.As(err, &stockErr):
			available := stockErr.Available
			problems = append(problems, LineProblem{
				ProductID:      stockErr.ProductID,
				Reason:         "insufficient_stock",
				AvailableStock: &available,
			})
		case errors.As(err, &notFoundErr):
			problems = append(problems, LineProblem{
				ProductID: notFoundErr.ProductID,
				Reason:    "product_not_found",
			})
		case errors.As(err, &unavailableErr):
			problems = append(problems, LineProblem{
				ProductID: unavailableErr.ProductID,
				Reason:    "product_unavailable",
			})
		default:
			problems = append(problems, LineProblem{
				ProductID: line.ProductID,
				Reason:    "lookup_failed",
			})
		}
	}
	return problems
}

// CreateDirect creates an order at the point of sale without a pre-existing
// cart. The terminal is the price authority: requested unit prices are stored
// as-is, but every product must exist, be sellable and have enough stock.
// Validation runs over all lines first; reservation and persistence happen in
// one transaction afterwards, so a race lost between the two steps still rolls
// the whole order back.
func CreateDirect(db *gorm.DB, staffID string, req DirectOrderRequest) (models.Order, []LineProblem, error) {
	if len(req.Items) == 0 {
		return models.Order{}, nil, errNoItems
	}
	deliveryType, err := mapDeliveryType(req.DeliveryType)
	if err != nil {
		return models.Order{}, nil, err
	}
	if req.Discount < 0 {
		return models.Order{}, nil, errNegativeDiscount
	}
	if err := validatePaymentMethod(db, req.PaymentMethodID); err != nil {
		return models.Order{}, nil, err
	}

	// Walk-in customers are recorded under the staff member's id unless the
	// terminal supplies a customer reference.
	ownerID := req.CustomerID
	if ownerID == "" {
		ownerID = staffID
	}

	if problems := validateDirectLines(db, req.Items); len(problems) > 0 {
		return models.Order{}, problems, nil
	}

	var order models.Order
	err = db.Transaction(func(tx *gorm.DB) error {
		var subtotal float64
		var orderItems []models.OrderItem

		for _, line := range req.Items {
			if err := stock.ReserveAndDecrement(tx, line.ProductID, line.Quantity); err != nil {
				return err
			}
			var product models.Product
			if err := tx.First(&product, "id = ?", line.ProductID).Error; err != nil {
				return err
			}
			subtotal += line.UnitPrice * float64(line.Quantity)
			orderItems = append(orderItems, models.OrderItem{
				ProductID:   line.ProductID,
				ProductName: product.Name,
				Quantity:    line.Quantity,
				UnitPrice:   line.UnitPrice,
			})
		}

		order = models.Order{
			OrderRef:        generateOrderRef(),
			UserID:          ownerID,
			StaffID:         &staffID,
			AddressID:       req.AddressID,
			PaymentMethodID: req.PaymentMethodID,
			DeliveryType:    deliveryType,
			Items:           orderItems,
			Subtotal:        subtotal,
			Tax:             pricing.Tax(subtotal),
			Discount:        req.Discount,
			Total:           pricing.Total(subtotal, req.Discount),
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
			ActorID:   staffID,
			CreatedAt: time.Now(),
		}
		return tx.Create(&history).Error
	})
	if err != nil {
		return models.Order{}, nil, err
	}
	return order, nil, nil
}

// POST /orders/direct
func DirectOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		staffID := c.GetString("user_id")

		var req DirectOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		order, problems, err := CreateDirect(db, staffID, req)
		if len(problems) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":    "One or more requested products cannot be sold",
				"problems": problems,
			})
			return
		}
		if err != nil {
			if errors.Is(err, errInvalidDeliveryType) || errors.Is(err, errNegativeDiscount) || errors.Is(err, errNoItems) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			respondOrderCreationError(c, err)
			return
		}
		c.JSON(http.StatusCreated, order)
	}
}
