package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem pairs a catalog product with the quantity requested.
type CartItem struct {
	Product  *Product
	Quantity int
}

// LineTotal is unit price times requested quantity.
func (i CartItem) LineTotal() decimal.Decimal {
	return i.Product.Price().Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is an ordered list of items for one checkout. It is not safe for
// concurrent use; the session owning it serializes access.
type Cart struct {
	ID        string
	CreatedAt time.Time
	items     []CartItem
}

// NewCart starts an empty cart.
func NewCart() *Cart {
	return &Cart{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}
}

// Add appends an item if the product currently has the quantity on hand.
// Nothing is reserved: stock is only consumed by checkout.
func (c *Cart) Add(product *Product, quantity int) error {
	if product == nil {
		return fmt.Errorf("%w: nil product", ErrInvalidProduct)
	}
	if quantity <= 0 {
		return fmt.Errorf("%w: got %d for %s", ErrInvalidQuantity, quantity, product.Name())
	}
	if !product.IsAvailable(quantity) {
		return &StockShortageError{Product: product.Name(), Requested: quantity, Available: product.Quantity()}
	}

	c.items = append(c.items, CartItem{Product: product, Quantity: quantity})
	return nil
}

// IsEmpty reports whether nothing has been added.
func (c *Cart) IsEmpty() bool { return len(c.items) == 0 }

// Items returns the items in insertion order.
func (c *Cart) Items() []CartItem {
	out := make([]CartItem, len(c.items))
	copy(out, c.items)
	return out
}

// Subtotal sums the line totals; zero for an empty cart.
func (c *Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range c.items {
		sum = sum.Add(item.LineTotal())
	}
	return sum
}

// ShipmentUnits expands shippable items into one unit per physical item,
// in cart order.
func (c *Cart) ShipmentUnits() []ShipmentUnit {
	var units []ShipmentUnit
	for _, item := range c.items {
		unit, ok := item.Product.ShipmentUnit()
		if !ok {
			continue
		}
		for j := 0; j < item.Quantity; j++ {
			units = append(units, unit)
		}
	}
	return units
}
