package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/storefront/internal/catalog"
	"github.com/mamadbah2/storefront/internal/domain/models"
)

// Checkouter settles a cart for a customer.
type Checkouter interface {
	Checkout(ctx context.Context, customer *models.Customer, cart *models.Cart) (*models.Receipt, error)
}

// CartView is a read-only snapshot of the current cart.
type CartView struct {
	ID       string
	Items    []models.CartItem
	Subtotal decimal.Decimal
}

// Session is the single shopping session: one customer, one catalog and the
// cart currently being filled.
type Session struct {
	catalog  *catalog.Catalog
	customer *models.Customer
	checkout Checkouter
	logger   *zap.Logger

	mu   sync.Mutex
	cart *models.Cart
}

// New starts a session with an empty cart.
func New(cat *catalog.Catalog, customer *models.Customer, checkout Checkouter, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		catalog:  cat,
		customer: customer,
		checkout: checkout,
		logger:   logger,
		cart:     models.NewCart(),
	}
}

// Catalog returns the products on sale.
func (s *Session) Catalog() *catalog.Catalog { return s.catalog }

// Customer returns the shopper of the session.
func (s *Session) Customer() *models.Customer { return s.customer }

// AddToCart looks the product up and adds it to the current cart. A stock
// shortage leaves the cart as it was.
func (s *Session) AddToCart(name string, quantity int) error {
	product, err := s.catalog.Lookup(name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.cart.Add(product, quantity); err != nil {
		s.logger.Info("item not added", zap.String("product", name), zap.Int("quantity", quantity), zap.Error(err))
		return fmt.Errorf("add %s to cart: %w", name, err)
	}

	s.logger.Debug("item added", zap.String("cart_id", s.cart.ID), zap.String("product", name), zap.Int("quantity", quantity))
	return nil
}

// Cart returns a snapshot of the current cart.
func (s *Session) Cart() CartView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return CartView{ID: s.cart.ID, Items: s.cart.Items(), Subtotal: s.cart.Subtotal()}
}

// Checkout consumes the current cart. Whatever the outcome, a fresh cart is
// started afterwards.
func (s *Session) Checkout(ctx context.Context) (*models.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.cart
	s.cart = models.NewCart()

	return s.checkout.Checkout(ctx, s.customer, cart)
}
