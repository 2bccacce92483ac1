// Package reaper deletes carts abandoned past a configurable age.
package reaper

import (
	"log"
	"time"

	"github.com/pzepeda90/proyecto-final-cafeteria-sub000/models"
	"gorm.io/gorm"
)

const (
	DefaultMaxAge   = 30 * 24 * time.Hour
	DefaultInterval = 12 * time.Hour
)

// Sweep deletes every cart whose last modification is older than maxAge and
// that holds no lines. Carts still holding items are never reaped, so user
// selections are not destroyed silently. Returns the number of carts deleted.
func Sweep(db *gorm.DB, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge)
	result := db.Where(
		"updated_at < ? AND cart_id NOT IN (?)",
		cutoff,
		db.Model(&models.CartItem{}).Select("cart_id"),
	).Delete(&models.Cart{})
	return result.RowsAffected, result.Error
}

// Run sweeps on a fixed interval until stop is closed. Failures are logged and
// swallowed: this is a maintenance job, it must never surface into request
// handling or hold locks that block checkout.
func Run(db *gorm.DB, interval, maxAge time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			deleted, err := Sweep(db, maxAge)
			if err != nil {
				log.Printf("cart reaper: sweep failed: %v", err)
				continue
			}
			if deleted > 0 {
				log.Printf("cart reaper: deleted %d abandoned cart(s)", deleted)
			}
		case <-stop:
			return
		}
	}
}
