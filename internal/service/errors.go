package service

import (
	"errors"
	"fmt"
)

// Validation errors. Handlers surface these verbatim with 400.
var (
	ErrEmptyOrder           = errors.New("order must contain at least one item")
	ErrInvalidOrderType     = errors.New("orderType must be table or takeaway")
	ErrMissingDestination   = errors.New("destination is required for table orders")
	ErrInvalidQuantity      = errors.New("quantity must be > 0")
	ErrMissingItemName      = errors.New("item name is required")
	ErrMenuItemNotFound     = errors.New("menu item not found")
	ErrInvalidStatus        = errors.New("status must be pending, ready or completed")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrInvalidAmount        = errors.New("amount must be a positive amount with at most 2 decimal places")
	ErrInvalidDiscount      = errors.New("discount must be a non-negative amount with at most 2 decimal places")
	ErrInvalidStock         = errors.New("stock must be a non-negative integer")
	ErrEmptyStockUpdate     = errors.New("updates must contain at least one item")
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderNotOpen      = errors.New("order is not open")
	ErrOrderClosed       = fmt.Errorf("order is already completed: %w", ErrOrderNotOpen)
	ErrInsufficientStock = errors.New("insufficient stock")
)

// InsufficientStockError names the first line that could not be reserved.
type InsufficientStockError struct {
	Item      string
	Available int32
	Requested int32
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: only %d available", e.Item, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
