package models

import "time"

type Role string

const (
	RoleCustomer Role = "customer"
	RoleStaff    Role = "staff"
	RoleAdmin    Role = "admin"
)

type User struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"unique;not null" json:"email"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Role      Role      `gorm:"not null;default:customer" json:"role"`
	Addresses []Address `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"addresses"`
	Cart      Cart      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Orders    []Order   `gorm:"foreignKey:UserID" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Address is a delivery address owned by a user. At most one address per user
// is flagged as principal; checkout falls back to it when no address id is given.
type Address struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      string    `gorm:"index;not null" json:"user_id"`
	Street      string    `gorm:"not null" json:"street"`
	City        string    `json:"city"`
	PostalCode  string    `json:"postal_code"`
	IsPrincipal bool      `gorm:"default:false" json:"is_principal"`
	CreatedAt   time.Time `json:"created_at"`
}
