// Package stock is the only place allowed to check and mutate product stock.
package stock

import (
	"errors"

	"github.com/pzepeda90/proyecto-final-cafeteria-sub000/models"
	"gorm.io/gorm"
)

// CheckAvailability reads the current catalog row and reports whether quantity
// units of the product could be sold right now. This is a soft check: the
// answer may be stale by the time an order is placed, so order creation always
// goes through ReserveAndDecrement as well.
func CheckAvailability(db *gorm.DB, productID uint, quantity int) error {
	var product models.Product
	if err := db.First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.ProductNotFoundError{ProductID: productID}
		}
		return err
	}
	if !product.Available {
		return &models.ProductUnavailableError{ProductID: product.ID, Name: product.Name}
	}
	if quantity > product.Stock {
		return &models.InsufficientStockError{
			ProductID: product.ID,
			Name:      product.Name,
			Requested: quantity,
			Available: product.Stock,
		}
	}
	return nil
}

// ReserveAndDecrement atomically verifies quantity <= current stock and
// decrements it, as a single conditional UPDATE. Concurrent reservations on
// the same product serialize on the row, so stock can never go negative.
// On failure the returned InsufficientStockError carries the stock that was
// available at the time of the attempt.
func ReserveAndDecrement(db *gorm.DB, productID uint, quantity int) error {
	result := db.Model(&models.Product{}).
		Where("id = ? AND available = ? AND stock >= ?", productID, true, quantity).
		Update("stock", gorm.Expr("stock - ?", quantity))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	// The conditional update matched nothing: re-read to report why.
	var product models.Product
	if err := db.First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.ProductNotFoundError{ProductID: productID}
		}
		return err
	}
	if !product.Available {
		return &models.ProductUnavailableError{ProductID: product.ID, Name: product.Name}
	}
	return &models.InsufficientStockError{
		ProductID: product.ID,
		Name:      product.Name,
		Requested: quantity,
		Available: product.Stock,
	}
}

// Restore returns quantity units to a product's stock. Used when a cancelled
// order releases its reservation.
func Restore(db *gorm.DB, productID uint, quantity int) error {
	result := db.Model(&models.Product{}).
		Where("id = ?", productID).
		Update("stock", gorm.Expr("stock + ?", quantity))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return &models.ProductNotFoundError{ProductID: productID}
	}
	return nil
}
