package orderControllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pzepeda90/proyecto-final-cafeteria-sub000/models"
	"github.com/pzepeda90/proyecto-final-cafeteria-sub000/stock"
	"gorm.io/gorm"
)

type UpdateOrderStatusRequest struct {
	Status  string `json:"status" binding:"required"`
	Comment string `json:"comment"`
}

// Map string to OrderStatus
func mapOrderStatus(status string) (models.OrderStatus, error) {
	switch strings.ToLower(status) {
	case string(models.OrderStatusPending):
		return models.OrderStatusPending, nil
	case string(models.OrderStatusConfirmed):
		return models.OrderStatusConfirmed, nil
	case string(models.OrderStatusInPreparation):
		return models.OrderStatusInPreparation, nil
	case string(models.OrderStatusReady):
		return models.OrderStatusReady, nil
	case string(models.OrderStatusDelivered):
		return models.OrderStatusDelivered, nil
	case string(models.OrderStatusCancelled):
		return models.OrderStatusCancelled, nil
	default:
		return "", errors.New("invalid order status")
	}
}

// actorMayTransition enforces who can move an order. Staff and admins handle
// any order; a customer may only cancel their own order while it is pending.
func actorMayTransition(order models.Order, actorID string, role models.Role, newStatus models.OrderStatus) bool {
	if role == models.RoleStaff || role == models.RoleAdmin {
		return true
	}
	return order.UserID == actorID &&
		newStatus == models.OrderStatusCancelled &&
		order.Status == models.OrderStatusPending
}

// Transition moves an order to newStatus after validating the transition
// table, and appends the history entry in the same transaction as the status
// write. Cancelling returns the order's reserved stock to the catalog.
func Transition(db *gorm.DB, orderID string, actorID string, role models.Role, newStatus models.OrderStatus, comment string) (models.Order, error) {
	var order models.Order
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := byIDOrRef(tx.Preload("Items"), orderID).
			First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrOrderNotFound
			}
			return err
		}

		if !actorMayTransition(order, actorID, role, newStatus) {
			return models.ErrForbidden
		}
		if !models.CanTransition(order.Status, newStatus) {
			return &models.IllegalTransitionError{From: order.Status, To: newStatus}
		}

		if newStatus == models.OrderStatusCancelled {
			// A cancelled order releases its reservation. Lines whose product
			// has been delisted since the sale have nothing to restore.
			for _, item := range order.Items {
				err := stock.Restore(tx, item.ProductID, item.Quantity)
				var notFoundErr *models.ProductNotFoundError
				if err != nil && !errors.As(err, &notFoundErr) {
					return err
				}
			}
		}

		if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).
			Update("status", newStatus).Error; err != nil {
			return err
		}
		order.Status = newStatus

		history := models.OrderStatusHistory{
			OrderID:   order.ID,
			Status:    newStatus,
			ActorID:   actorID,
			Comment:   comment,
			CreatedAt: time.Now(),
		}
		return tx.Create(&history).Error
	})
	if err != nil {
		return models.Order{}, err
	}
	return order, nil
}

// PUT /orders/:orderID/status (customers reach it too, for cancelling)
func UpdateOrderStatusHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID := c.Param("orderID")
		if orderID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "orderID is required"})
			return
		}
		actorID := c.GetString("user_id")
		role := models.Role(c.GetString("role"))

		var req UpdateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		newStatus, err := mapOrderStatus(req.Status)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		order, err := Transition(db, orderID, actorID, role, newStatus, req.Comment)
		if err != nil {
			var illegalErr *models.IllegalTransitionError
			switch {
			case errors.Is(err, models.ErrOrderNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			case errors.Is(err, models.ErrForbidden):
				c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			case errors.As(err, &illegalErr):
				c.JSON(http.StatusBadRequest, gin.H{
					"error": illegalErr.Error(),
					"from":  illegalErr.From,
					"to":    illegalErr.To,
				})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update order status"})
			}
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// GET /orders/:orderID/history
func GetOrderHistoryHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID := c.Param("orderID")
		if orderID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "orderID is required"})
			return
		}

		var order models.Order
		if err := byIDOrRef(db, orderID).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		var history []models.OrderStatusHistory
		if err := db.Where("order_id = ?", order.ID).
			Order("created_at ASC, id ASC").
			Find(&history).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, history)
	}
}
