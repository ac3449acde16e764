package models

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Perishability tells whether a product expires and when.
type Perishability struct {
	perishable bool
	expiresAt  time.Time
}

// NeverExpires is the perishability of goods with no expiry instant.
func NeverExpires() Perishability {
	return Perishability{}
}

// ExpiresOn is the perishability of goods that expire once the given instant has passed.
func ExpiresOn(t time.Time) Perishability {
	return Perishability{perishable: true, expiresAt: t}
}

// Perishable reports whether an expiry instant applies.
func (p Perishability) Perishable() bool { return p.perishable }

// ExpiresAt returns the expiry instant and whether one is set.
func (p Perishability) ExpiresAt() (time.Time, bool) {
	return p.expiresAt, p.perishable
}

// Shippability tells whether a product is a physical good and what one unit weighs.
type Shippability struct {
	shippable bool
	weightKg  float64
}

// NotShippable is the shippability of intangible goods (vouchers, scratch cards...).
func NotShippable() Shippability {
	return Shippability{}
}

// Shippable is the shippability of physical goods weighing weightKg per unit.
func Shippable(weightKg float64) Shippability {
	return Shippability{shippable: true, weightKg: weightKg}
}

// Shippable reports whether the product needs shipping.
func (s Shippability) Shippable() bool { return s.shippable }

// WeightKg returns the per-unit weight and whether the product is shippable.
func (s Shippability) WeightKg() (float64, bool) {
	return s.weightKg, s.shippable
}

// ProductKind enumerates the four combinations of perishability and shippability.
type ProductKind int

const (
	KindDurableDigital ProductKind = iota
	KindDurableShippable
	KindPerishableDigital
	KindPerishableShippable
)

// String returns the snake_case name used in JSON views.
func (k ProductKind) String() string {
	switch k {
	case KindDurableDigital:
		return "durable_digital"
	case KindDurableShippable:
		return "durable_shippable"
	case KindPerishableDigital:
		return "perishable_digital"
	case KindPerishableShippable:
		return "perishable_shippable"
	default:
		return fmt.Sprintf("ProductKind(%d)", int(k))
	}
}

// Product is a catalog entry. It is always shared by pointer: carts and the
// checkout reference the catalog's instance so stock changes are visible everywhere.
type Product struct {
	name          string
	price         decimal.Decimal
	perishability Perishability
	shippability  Shippability

	mu       sync.RWMutex
	quantity int
}

// NewProduct validates the attributes and builds a product.
func NewProduct(name string, price decimal.Decimal, quantity int, perishability Perishability, shippability Shippability) (*Product, error) {
	switch {
	case name == "":
		return nil, fmt.Errorf("%w: name must not be empty", ErrInvalidProduct)
	case price.IsNegative():
		return nil, fmt.Errorf("%w: %s has negative price %s", ErrInvalidProduct, name, price)
	case quantity < 0:
		return nil, fmt.Errorf("%w: %s has negative quantity %d", ErrInvalidProduct, name, quantity)
	case shippability.shippable && !validWeight(shippability.weightKg):
		return nil, fmt.Errorf("%w: %s is shippable but weighs %.3fkg", ErrInvalidProduct, name, shippability.weightKg)
	}

	return &Product{
		name:          name,
		price:         price,
		quantity:      quantity,
		perishability: perishability,
		shippability:  shippability,
	}, nil
}

func validWeight(kg float64) bool {
	return kg > 0 && !math.IsInf(kg, 0)
}

// Name returns the catalog name.
func (p *Product) Name() string { return p.name }

// Price returns the unit price.
func (p *Product) Price() decimal.Decimal { return p.price }

// Perishability returns the expiry trait.
func (p *Product) Perishability() Perishability { return p.perishability }

// Shippability returns the shipping trait.
func (p *Product) Shippability() Shippability { return p.shippability }

// Kind classifies the product by its two traits.
func (p *Product) Kind() ProductKind {
	switch {
	case p.perishability.perishable && p.shippability.shippable:
		return KindPerishableShippable
	case p.perishability.perishable:
		return KindPerishableDigital
	case p.shippability.shippable:
		return KindDurableShippable
	default:
		return KindDurableDigital
	}
}

// Quantity returns the current quantity on hand.
func (p *Product) Quantity() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.quantity
}

// IsAvailable reports whether requested units are on hand.
func (p *Product) IsAvailable(requested int) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return requested <= p.quantity
}

// ReduceStock removes amount units from stock. Callers confirm availability first;
// asking for more than is on hand is a bug and panics.
func (p *Product) ReduceStock(amount int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if amount < 0 || amount > p.quantity {
		panic(fmt.Sprintf("models: reduce stock of %q by %d with %d on hand", p.name, amount, p.quantity))
	}
	p.quantity -= amount
}

// IsExpired evaluates expiry against the current wall clock on every call.
func (p *Product) IsExpired() bool {
	return p.IsExpiredAt(time.Now())
}

// IsExpiredAt reports whether the product is past its expiry instant at t.
func (p *Product) IsExpiredAt(t time.Time) bool {
	if !p.perishability.perishable {
		return false
	}
	return t.After(p.perishability.expiresAt)
}

// ShipmentUnit returns the per-unit shipping view when the product is shippable.
func (p *Product) ShipmentUnit() (ShipmentUnit, bool) {
	if !p.shippability.shippable {
		return ShipmentUnit{}, false
	}
	return ShipmentUnit{Name: p.name, WeightKg: p.shippability.weightKg}, true
}
