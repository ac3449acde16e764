package models

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCart is returned when checkout is attempted with no items.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrInsufficientFunds is returned when the balance does not cover the total.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInvalidQuantity is returned when a non-positive quantity is added to a cart.
	ErrInvalidQuantity = errors.New("quantity must be positive")
	// ErrInvalidProduct is returned when product attributes are out of range.
	ErrInvalidProduct = errors.New("invalid product")
	// ErrInvalidCustomer is returned when customer attributes are out of range.
	ErrInvalidCustomer = errors.New("invalid customer")
	// ErrProductNotFound is returned when a catalog lookup misses.
	ErrProductNotFound = errors.New("product not found")
)

// StockShortageError reports that a product cannot cover the requested quantity.
type StockShortageError struct {
	Product   string
	Requested int
	Available int
}

// Error names the product and the shortfall.
func (e *StockShortageError) Error() string {
	return fmt.Sprintf("not enough stock for %s: requested %d, available %d", e.Product, e.Requested, e.Available)
}

// ExpiredProductError names the first expired product found in a cart.
type ExpiredProductError struct {
	Product string
}

// Error names the expired product.
func (e *ExpiredProductError) Error() string {
	return fmt.Sprintf("%s is expired", e.Product)
}

// Rejection reasons exposed to callers.
const (
	ReasonEmptyCart         = "empty_cart"
	ReasonExpiredProduct    = "expired_product"
	ReasonInsufficientFunds = "insufficient_funds"
	ReasonStockShortage     = "stock_shortage"
	ReasonInvalidQuantity   = "invalid_quantity"
	ReasonProductNotFound   = "product_not_found"
	ReasonUnknown           = "unknown"
)

// Reason maps a business error to its stable reason code.
func Reason(err error) string {
	var (
		shortage *StockShortageError
		expired  *ExpiredProductError
	)
	switch {
	case errors.Is(err, ErrEmptyCart):
		return ReasonEmptyCart
	case errors.As(err, &expired):
		return ReasonExpiredProduct
	case errors.Is(err, ErrInsufficientFunds):
		return ReasonInsufficientFunds
	case errors.As(err, &shortage):
		return ReasonStockShortage
	case errors.Is(err, ErrInvalidQuantity):
		return ReasonInvalidQuantity
	case errors.Is(err, ErrProductNotFound):
		return ReasonProductNotFound
	default:
		return ReasonUnknown
	}
}
