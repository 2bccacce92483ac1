package models

import "time"

type OrderStatus string
type DeliveryType string

const (
	// Order lifecycle, in forward order
	OrderStatusPending       OrderStatus = "pending"        // Order created, awaiting confirmation
	OrderStatusConfirmed     OrderStatus = "confirmed"      // Accepted by staff
	OrderStatusInPreparation OrderStatus = "in_preparation" // Kitchen / barista working on it
	OrderStatusReady         OrderStatus = "ready"          // Ready for pickup or dispatch
	OrderStatusDelivered     OrderStatus = "delivered"      // Handed over to the customer (terminal)
	OrderStatusCancelled     OrderStatus = "cancelled"      // Cancelled before delivery (terminal)

	// Delivery types
	DeliveryInStore      DeliveryType = "in_store"
	DeliveryHomeDelivery DeliveryType = "home_delivery"
	DeliveryTakeaway     DeliveryType = "takeaway"
	DeliveryDineIn       DeliveryType = "dine_in"
)

// orderTransitions is the legal next-status set for each status. Terminal
// statuses have no entries: nothing leaves delivered or cancelled.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:       {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:     {OrderStatusInPreparation, OrderStatusCancelled},
	OrderStatusInPreparation: {OrderStatusReady, OrderStatusCancelled},
	OrderStatusReady:         {OrderStatusDelivered, OrderStatusCancelled},
}

// CanTransition reports whether an order currently in `from` may move to `to`.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed from a status.
func IsTerminal(s OrderStatus) bool {
	return len(orderTransitions[s]) == 0
}

type Order struct {
	ID              uint                 `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderRef        string               `gorm:"uniqueIndex;not null" json:"order_ref"`
	UserID          string               `gorm:"index;not null" json:"user_id"`
	User            User                 `gorm:"foreignKey:UserID" json:"-"`
	StaffID         *string              `json:"staff_id,omitempty"` // set on point-of-sale orders
	AddressID       *uint                `json:"address_id,omitempty"`
	PaymentMethodID uint                 `gorm:"not null" json:"payment_method_id"`
	DeliveryType    DeliveryType         `gorm:"not null" json:"delivery_type"`
	Items           []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Subtotal        float64              `json:"subtotal"`
	Tax             float64              `json:"tax"`
	Discount        float64              `json:"discount"`
	Total           float64              `json:"total"` // subtotal + tax - discount, fixed at creation
	Notes           string               `json:"notes"`
	Status          OrderStatus          `gorm:"not null" json:"status"`
	History         []OrderStatusHistory `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt       time.Time            `json:"created_at"`
}

// OrderItem captures the unit price at order-creation time. Later catalog
// price edits must not change historical orders.
type OrderItem struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID     uint    `gorm:"index;not null" json:"order_id"`
	ProductID   uint    `gorm:"not null" json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `gorm:"not null" json:"quantity"`
	UnitPrice   float64 `gorm:"not null" json:"unit_price"`
}

// OrderStatusHistory is append-only: one row at order creation and one per
// transition. Rows are never updated or deleted.
type OrderStatusHistory struct {
	ID        uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   uint        `gorm:"index;not null" json:"order_id"`
	Status    OrderStatus `gorm:"not null" json:"status"`
	ActorID   string      `gorm:"not null" json:"actor_id"`
	Comment   string      `json:"comment"`
	CreatedAt time.Time   `json:"created_at"`
}

type PaymentMethod struct {
	ID     uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name   string `gorm:"unique;not null" json:"name"`
	Active bool   `gorm:"default:true" json:"active"`
}
