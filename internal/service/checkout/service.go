package checkout

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mamadbah2/storefront/internal/domain/models"
	"github.com/mamadbah2/storefront/internal/service/shipping"
)

// publishTimeout bounds how long the sinks may take with one receipt.
const publishTimeout = 30 * time.Second

// DefaultShippingFee is charged once per checkout that contains physical goods.
var DefaultShippingFee = decimal.NewFromInt(30)

// ReceiptSink receives every committed receipt (archive, ledger, webhook...).
type ReceiptSink interface {
	SaveReceipt(ctx context.Context, receipt models.Receipt) error
}

// Options tunes the checkout pipeline.
type Options struct {
	// ShippingFee is the flat fee applied when anything needs shipping.
	ShippingFee decimal.Decimal
	// VerifyStock re-checks stock for the whole cart before committing. When
	// false, stock is only checked when items are added.
	VerifyStock bool
}

// Service runs the checkout pipeline. Checkouts are serialized so that the
// balance debit and stock decrements of one call are never interleaved with another.
type Service struct {
	opts   Options
	sinks  []ReceiptSink
	logger *zap.Logger
	now    func() time.Time

	mu sync.Mutex
}

// NewService wires a checkout service.
func NewService(opts Options, logger *zap.Logger, sinks ...ReceiptSink) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.ShippingFee.IsNegative() {
		opts.ShippingFee = decimal.Zero
	}
	return &Service{
		opts:   opts,
		sinks:  sinks,
		logger: logger,
		now:    time.Now,
	}
}

// ShippingFee returns the configured flat fee.
func (s *Service) ShippingFee() decimal.Decimal { return s.opts.ShippingFee }

// Checkout validates the cart and, when every gate passes, debits the customer,
// consumes stock and returns the receipt. A rejected checkout changes nothing.
func (s *Service) Checkout(ctx context.Context, customer *models.Customer, cart *models.Cart) (*models.Receipt, error) {
	receipt, err := s.settle(customer, cart)
	if err != nil {
		s.logger.Info("checkout rejected",
			zap.String("customer", customer.Name),
			zap.String("cart_id", cart.ID),
			zap.String("reason", models.Reason(err)),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("checkout completed",
		zap.String("receipt_id", receipt.ID),
		zap.String("customer", receipt.Customer),
		zap.String("total", receipt.Total.String()),
		zap.String("balance", receipt.Balance.String()))

	// The receipt is committed; a caller giving up must not keep it from the sinks.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	s.publish(pubCtx, *receipt)
	return receipt, nil
}

func (s *Service) settle(customer *models.Customer, cart *models.Cart) (*models.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	log := s.logger.With(zap.String("cart_id", cart.ID))

	log.Debug("checkout state", zap.String("state", "validating_empty"))
	if cart.IsEmpty() {
		return nil, models.ErrEmptyCart
	}

	items := cart.Items()

	log.Debug("checkout state", zap.String("state", "validating_expiry"))
	for _, item := range items {
		if item.Product.IsExpiredAt(now) {
			return nil, &models.ExpiredProductError{Product: item.Product.Name()}
		}
	}

	if s.opts.VerifyStock {
		log.Debug("checkout state", zap.String("state", "validating_stock"))
		if err := verifyStock(items); err != nil {
			return nil, err
		}
	}

	log.Debug("checkout state", zap.String("state", "computing_totals"))
	subtotal := cart.Subtotal()
	units := cart.ShipmentUnits()
	fee := decimal.Zero
	if len(units) > 0 {
		fee = s.opts.ShippingFee
	}
	total := subtotal.Add(fee)

	log.Debug("checkout state", zap.String("state", "validating_funds"))
	if !customer.CanAfford(total) {
		return nil, fmt.Errorf("%w: total %s exceeds balance %s", models.ErrInsufficientFunds, total, customer.Balance())
	}

	log.Debug("checkout state", zap.String("state", "committing"))
	receipt := &models.Receipt{
		ID:          uuid.NewString(),
		CartID:      cart.ID,
		Customer:    customer.Name,
		Subtotal:    subtotal,
		ShippingFee: fee,
		Total:       total,
		CreatedAt:   now.UTC(),
	}
	if report, ok := shipping.BuildReport(units); ok {
		receipt.Shipment = &report
	}

	customer.Pay(total)
	for _, item := range items {
		item.Product.ReduceStock(item.Quantity)
	}

	receipt.Lines = make([]models.ReceiptLine, 0, len(items))
	for _, item := range items {
		receipt.Lines = append(receipt.Lines, models.ReceiptLine{
			Quantity:  item.Quantity,
			Name:      item.Product.Name(),
			LineTotal: item.LineTotal(),
		})
	}
	receipt.Balance = customer.Balance()

	return receipt, nil
}

// verifyStock sums requests per product so several adds of the same product
// cannot overdraw it.
func verifyStock(items []models.CartItem) error {
	requested := make(map[*models.Product]int, len(items))
	for _, item := range items {
		requested[item.Product] += item.Quantity
		if !item.Product.IsAvailable(requested[item.Product]) {
			return &models.StockShortageError{
				Product:   item.Product.Name(),
				Requested: requested[item.Product],
				Available: item.Product.Quantity(),
			}
		}
	}
	return nil
}

// publish fans the receipt out to every sink and waits for all of them.
func (s *Service) publish(ctx context.Context, receipt models.Receipt) {
	var g errgroup.Group
	for _, sink := range s.sinks {
		sink := sink
		g.Go(func() error {
			if err := sink.SaveReceipt(ctx, receipt); err != nil {
				s.logger.Error("failed to publish receipt",
					zap.String("receipt_id", receipt.ID),
					zap.String("sink", fmt.Sprintf("%T", sink)),
					zap.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()
}
