package models

import (
	"errors"
	"fmt"
)

// Business-rule errors. Handlers map these to client-error responses; anything
// else coming out of the database layer is reported as a generic failure.
var (
	ErrCartNotFound   = errors.New("cart not found")
	ErrCartEmpty      = errors.New("cart is empty")
	ErrCartConflict   = errors.New("cart was modified by a concurrent request")
	ErrOrderNotFound  = errors.New("order not found")
	ErrMissingAddress = errors.New("no delivery address: none given and no principal address on file")
	ErrInvalidAddress = errors.New("address does not belong to this user")
	ErrInvalidPayment = errors.New("unknown payment method")
	ErrForbidden      = errors.New("actor is not allowed to modify this order")
)

// ProductNotFoundError names the offending product id.
type ProductNotFoundError struct {
	ProductID uint
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %d not found", e.ProductID)
}

// ProductUnavailableError means the product exists but is not marked sellable.
type ProductUnavailableError struct {
	ProductID uint
	Name      string
}

func (e *ProductUnavailableError) Error() string {
	return fmt.Sprintf("product %q is not available for sale", e.Name)
}

// InsufficientStockError carries the current available quantity so callers can
// report how much stock remains.
type InsufficientStockError struct {
	ProductID uint
	Name      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %q: requested %d, available %d",
		e.Name, e.Requested, e.Available)
}

// IllegalTransitionError rejects a status change the lifecycle does not allow.
type IllegalTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal order status transition: %s -> %s", e.From, e.To)
}
