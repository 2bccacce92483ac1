package models

import "time"

type Cart struct {
	CartID    uint       `gorm:"primaryKey;autoIncrement" json:"cart_id"`
	UserID    string     `gorm:"uniqueIndex;not null" json:"user_id"` // one cart per user
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CartItem holds only the product reference and quantity. Name and price are
// joined with the current catalog row when the cart is read; prices are not
// frozen until checkout.
type CartItem struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID    uint      `gorm:"uniqueIndex:idx_cart_product;not null" json:"cart_id"`
	ProductID uint      `gorm:"uniqueIndex:idx_cart_product;not null" json:"product_id"`
	Quantity  int       `gorm:"not null" json:"quantity"` // always >= 1; zero means removal
	AddedAt   time.Time `json:"added_at"`
}
