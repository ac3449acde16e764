package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mamadbah2/storefront/internal/domain/models"
)

var checkoutTime = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

type recordingSink struct {
	mu       sync.Mutex
	receipts []models.Receipt
	err      error
}

func (s *recordingSink) SaveReceipt(_ context.Context, receipt models.Receipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.receipts = append(s.receipts, receipt)
	return s.err
}

func newTestService(verifyStock bool, sinks ...ReceiptSink) *Service {
	svc := NewService(Options{ShippingFee: DefaultShippingFee, VerifyStock: verifyStock}, nil, sinks...)
	svc.now = func() time.Time { return checkoutTime }
	return svc
}

func product(t *testing.T, name string, price int64, qty int, p models.Perishability, s models.Shippability) *models.Product {
	t.Helper()
	prod, err := models.NewProduct(name, decimal.NewFromInt(price), qty, p, s)
	require.NoError(t, err)
	return prod
}

func customer(t *testing.T, balance int64) *models.Customer {
	t.Helper()
	c, err := models.NewCustomer("Sondos", decimal.NewFromInt(balance))
	require.NoError(t, err)
	return c
}

func assertAmount(t *testing.T, want int64, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.NewFromInt(want).Equal(got), "want %d, got %s", want, got)
}

func TestCheckout_DigitalItemOnly(t *testing.T) {
	card := product(t, "Mobile scratch card", 50, 10, models.NeverExpires(), models.NotShippable())
	cart := models.NewCart()
	require.NoError(t, cart.Add(card, 1))
	c := customer(t, 1000)

	receipt, err := newTestService(true).Checkout(context.Background(), c, cart)

	require.NoError(t, err)
	assertAmount(t, 50, receipt.Subtotal)
	assertAmount(t, 0, receipt.ShippingFee)
	assertAmount(t, 50, receipt.Total)
	assertAmount(t, 950, receipt.Balance)
	assertAmount(t, 950, c.Balance())
	assert.Nil(t, receipt.Shipment)
	assert.Equal(t, 9, card.Quantity())
	require.Len(t, receipt.Lines, 1)
	assert.Equal(t, 1, receipt.Lines[0].Quantity)
	assert.Equal(t, "Mobile scratch card", receipt.Lines[0].Name)
	assertAmount(t, 50, receipt.Lines[0].LineTotal)
	assert.NotEmpty(t, receipt.ID)
	assert.Equal(t, cart.ID, receipt.CartID)
	assert.True(t, checkoutTime.Equal(receipt.CreatedAt))
}

func TestCheckout_ExpiredProduct(t *testing.T) {
	fresh := product(t, "Biscuits 700g", 150, 3, models.ExpiresOn(checkoutTime.AddDate(0, 1, 0)), models.Shippable(0.9))
	stale := product(t, "Cheese 200g", 100, 5, models.ExpiresOn(checkoutTime.Add(-time.Hour)), models.Shippable(0.2))
	staleToo := product(t, "Milk", 20, 5, models.ExpiresOn(checkoutTime.Add(-time.Hour)), models.NotShippable())
	cart := models.NewCart()
	require.NoError(t, cart.Add(fresh, 1))
	require.NoError(t, cart.Add(stale, 2))
	require.NoError(t, cart.Add(staleToo, 1))
	c := customer(t, 1000)

	receipt, err := newTestService(true).Checkout(context.Background(), c, cart)

	assert.Nil(t, receipt)
	var expired *models.ExpiredProductError
	require.True(t, errors.As(err, &expired))
	assert.Equal(t, "Cheese 200g", expired.Product, "first offender in cart order")
	assertAmount(t, 1000, c.Balance())
	assert.Equal(t, 3, fresh.Quantity())
	assert.Equal(t, 5, stale.Quantity())
	assert.Equal(t, 5, staleToo.Quantity())
}

func TestCheckout_InsufficientFundsCountsShipping(t *testing.T) {
	tv := product(t, "TV", 500, 2, models.NeverExpires(), models.Shippable(10))
	cart := models.NewCart()
	require.NoError(t, cart.Add(tv, 1))
	c := customer(t, 510)

	receipt, err := newTestService(true).Checkout(context.Background(), c, cart)

	assert.Nil(t, receipt)
	assert.ErrorIs(t, err, models.ErrInsufficientFunds)
	assertAmount(t, 510, c.Balance())
	assert.Equal(t, 2, tv.Quantity())
}

func TestCheckout_ExactBalanceIsEnough(t *testing.T) {
	tv := product(t, "TV", 500, 2, models.NeverExpires(), models.Shippable(10))
	cart := models.NewCart()
	require.NoError(t, cart.Add(tv, 1))
	c := customer(t, 530)

	receipt, err := newTestService(true).Checkout(context.Background(), c, cart)

	require.NoError(t, err)
	assertAmount(t, 0, receipt.Balance)
	assertAmount(t, 30, receipt.ShippingFee)
}

func TestCheckout_ShipmentReport(t *testing.T) {
	tv := product(t, "TV", 300, 5, models.NeverExpires(), models.Shippable(10))
	radio := product(t, "Radio", 40, 5, models.NeverExpires(), models.Shippable(2))
	cart := models.NewCart()
	require.NoError(t, cart.Add(tv, 1))
	require.NoError(t, cart.Add(radio, 1))
	require.NoError(t, cart.Add(tv, 1))
	c := customer(t, 10000)

	receipt, err := newTestService(true).Checkout(context.Background(), c, cart)

	require.NoError(t, err)
	require.NotNil(t, receipt.Shipment)
	assert.Equal(t, []models.ShipmentLine{{Name: "TV", Count: 2}, {Name: "Radio", Count: 1}}, receipt.Shipment.Lines)
	assert.InDelta(t, 22.0, receipt.Shipment.TotalWeightKg, 1e-9)
	assertAmount(t, 30, receipt.ShippingFee)
	assertAmount(t, 670, receipt.Total)
	assert.Equal(t, 3, tv.Quantity())
	assert.Equal(t, 4, radio.Quantity())
	assert.Len(t, receipt.Lines, 3)
}

func TestCheckout_FlatFeeIgnoresWeightAndCount(t *testing.T) {
	cheese := product(t, "Cheese 200g", 100, 5, models.NeverExpires(), models.Shippable(0.2))
	tv := product(t, "TV", 300, 2, models.NeverExpires(), models.Shippable(10))
	cart := models.NewCart()
	require.NoError(t, cart.Add(cheese, 5))
	require.NoError(t, cart.Add(tv, 2))

	receipt, err := newTestService(true).Checkout(context.Background(), customer(t, 5000), cart)

	require.NoError(t, err)
	assertAmount(t, 30, receipt.ShippingFee)
	assertAmount(t, 1130, receipt.Total)
}

func TestCheckout_EmptyCart(t *testing.T) {
	tv := product(t, "TV", 300, 2, models.NeverExpires(), models.Shippable(10))
	cart := models.NewCart()
	require.Error(t, cart.Add(tv, 5))
	c := customer(t, 1000)

	receipt, err := newTestService(true).Checkout(context.Background(), c, cart)

	assert.Nil(t, receipt)
	assert.ErrorIs(t, err, models.ErrEmptyCart)
	assertAmount(t, 1000, c.Balance())
	assert.Equal(t, 2, tv.Quantity())
}

func TestCheckout_VerifyStockCatchesOvercommit(t *testing.T) {
	tv := product(t, "TV", 300, 2, models.NeverExpires(), models.Shippable(10))
	card := product(t, "Mobile scratch card", 50, 10, models.NeverExpires(), models.NotShippable())
	cart := models.NewCart()
	require.NoError(t, cart.Add(card, 1))
	require.NoError(t, cart.Add(tv, 2))
	require.NoError(t, cart.Add(tv, 1))
	c := customer(t, 10000)

	receipt, err := newTestService(true).Checkout(context.Background(), c, cart)

	assert.Nil(t, receipt)
	var shortage *models.StockShortageError
	require.True(t, errors.As(err, &shortage))
	assert.Equal(t, "TV", shortage.Product)
	assert.Equal(t, 3, shortage.Requested)
	assert.Equal(t, 2, shortage.Available)
	assertAmount(t, 10000, c.Balance())
	assert.Equal(t, 2, tv.Quantity())
	assert.Equal(t, 10, card.Quantity())
}

func TestCheckout_VerifyStockCatchesStockSoldElsewhere(t *testing.T) {
	tv := product(t, "TV", 300, 2, models.NeverExpires(), models.Shippable(10))
	cart := models.NewCart()
	require.NoError(t, cart.Add(tv, 2))
	tv.ReduceStock(1)

	_, err := newTestService(true).Checkout(context.Background(), customer(t, 10000), cart)

	assert.Equal(t, models.ReasonStockShortage, models.Reason(err))
	assert.Equal(t, 1, tv.Quantity())
}

func TestCheckout_WithoutStockVerificationOvercommitIsABug(t *testing.T) {
	tv := product(t, "TV", 300, 2, models.NeverExpires(), models.Shippable(10))
	cart := models.NewCart()
	require.NoError(t, cart.Add(tv, 2))
	require.NoError(t, cart.Add(tv, 1))

	svc := newTestService(false)
	assert.Panics(t, func() {
		_, _ = svc.Checkout(context.Background(), customer(t, 10000), cart)
	})
}

func TestCheckout_PublishesToSinks(t *testing.T) {
	card := product(t, "Mobile scratch card", 50, 10, models.NeverExpires(), models.NotShippable())
	cart := models.NewCart()
	require.NoError(t, cart.Add(card, 2))

	first := &recordingSink{}
	second := &recordingSink{}
	receipt, err := newTestService(true, first, second).Checkout(context.Background(), customer(t, 1000), cart)

	require.NoError(t, err)
	require.Len(t, first.receipts, 1)
	require.Len(t, second.receipts, 1)
	assert.Equal(t, receipt.ID, first.receipts[0].ID)
}

func TestCheckout_SinkFailureIsLoggedNotReturned(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	failing := &recordingSink{err: errors.New("mongo down")}
	svc := NewService(Options{ShippingFee: DefaultShippingFee, VerifyStock: true}, zap.New(core), failing)

	card := product(t, "Mobile scratch card", 50, 10, models.NeverExpires(), models.NotShippable())
	cart := models.NewCart()
	require.NoError(t, cart.Add(card, 1))
	c := customer(t, 1000)

	receipt, err := svc.Checkout(context.Background(), c, cart)

	require.NoError(t, err)
	assert.NotNil(t, receipt)
	assertAmount(t, 950, c.Balance())
	assert.Equal(t, 1, logs.FilterMessage("failed to publish receipt").Len())
	assert.Equal(t, 1, logs.FilterMessage("checkout completed").Len())
}

func TestCheckout_RejectionDoesNotPublish(t *testing.T) {
	sink := &recordingSink{}
	_, err := newTestService(true, sink).Checkout(context.Background(), customer(t, 1000), models.NewCart())

	assert.ErrorIs(t, err, models.ErrEmptyCart)
	assert.Empty(t, sink.receipts)
}

func TestCheckout_ConcurrentCheckoutsNeverOverdrawStock(t *testing.T) {
	tv := product(t, "TV", 10, 5, models.NeverExpires(), models.Shippable(10))
	svc := newTestService(true)
	c := customer(t, 1_000_000)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 20; i++ {
		cart := models.NewCart()
		require.NoError(t, cart.Add(tv, 1))
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Checkout(context.Background(), c, cart); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, succeeded)
	assert.Equal(t, 0, tv.Quantity())
}

func TestNewService_NegativeFeeClampedToZero(t *testing.T) {
	svc := NewService(Options{ShippingFee: decimal.NewFromInt(-5)}, nil)
	assert.True(t, svc.ShippingFee().IsZero())
}

type contextSink struct {
	mu     sync.Mutex
	ctxErr error
	called bool
}

func (s *contextSink) SaveReceipt(ctx context.Context, _ models.Receipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.called = true
	s.ctxErr = ctx.Err()
	return s.ctxErr
}

func TestCheckout_SinksOutliveCancelledCaller(t *testing.T) {
	card := product(t, "Mobile scratch card", 50, 10, models.NeverExpires(), models.NotShippable())
	cart := models.NewCart()
	require.NoError(t, cart.Add(card, 1))
	sink := &contextSink{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	receipt, err := newTestService(true, sink).Checkout(ctx, customer(t, 1000), cart)

	require.NoError(t, err)
	require.NotNil(t, receipt)
	assert.True(t, sink.called)
	assert.NoError(t, sink.ctxErr)
}
