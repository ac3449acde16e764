package models

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

// Customer is the shopper paying for a checkout.
type Customer struct {
	Name string

	mu      sync.RWMutex
	balance decimal.Decimal
}

// NewCustomer builds a customer with a non-negative opening balance.
func NewCustomer(name string, balance decimal.Decimal) (*Customer, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name must not be empty", ErrInvalidCustomer)
	}
	if balance.IsNegative() {
		return nil, fmt.Errorf("%w: %s has negative balance %s", ErrInvalidCustomer, name, balance)
	}
	return &Customer{Name: name, balance: balance}, nil
}

// Balance returns the remaining balance.
func (c *Customer) Balance() decimal.Decimal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.balance
}

// CanAfford reports whether the balance covers amount.
func (c *Customer) CanAfford(amount decimal.Decimal) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.balance.GreaterThanOrEqual(amount)
}

// Pay debits amount. Paying more than the balance is a bug and panics.
func (c *Customer) Pay(amount decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if amount.IsNegative() || amount.GreaterThan(c.balance) {
		panic(fmt.Sprintf("models: debit %s from %s with balance %s", amount, c.Name, c.balance))
	}
	c.balance = c.balance.Sub(amount)
}
