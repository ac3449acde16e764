package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/storefront/internal/domain/models"
	"github.com/mamadbah2/storefront/internal/presentation"
	"github.com/mamadbah2/storefront/internal/service/reporting"
	"github.com/mamadbah2/storefront/internal/service/session"
)

// ReceiptLister exposes the receipts archived by the running process.
type ReceiptLister interface {
	List() []models.Receipt
}

// SalesReporter summarizes the sales ledger.
type SalesReporter interface {
	SalesSummary(ctx context.Context, start, end time.Time) (reporting.SalesSummary, error)
}

// StorefrontHandler serves the catalog, cart and checkout of the session.
type StorefrontHandler struct {
	session  *session.Session
	receipts ReceiptLister
	reports  SalesReporter
	logger   *zap.Logger
	now      func() time.Time
}

// NewStorefrontHandler constructs the HTTP handler adapter. reports may be nil
// when no sales ledger is configured.
func NewStorefrontHandler(sess *session.Session, receipts ReceiptLister, reports SalesReporter, logger *zap.Logger) *StorefrontHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StorefrontHandler{session: sess, receipts: receipts, reports: reports, logger: logger, now: time.Now}
}

const dateLayout = "2006-01-02"

type productView struct {
	Name      string          `json:"name"`
	Kind      string          `json:"kind"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	ExpiresAt *time.Time      `json:"expires_at,omitempty"`
	WeightKg  *float64        `json:"weight_kg,omitempty"`
	Expired   bool            `json:"expired"`
}

type cartItemView struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type addItemRequest struct {
	Name     string `json:"name" binding:"required"`
	Quantity int    `json:"quantity" binding:"required"`
}

// ListCatalog returns every product with its traits and current stock.
func (h *StorefrontHandler) ListCatalog(c *gin.Context) {
	now := h.now()
	products := h.session.Catalog().All()

	views := make([]productView, 0, len(products))
	for _, p := range products {
		view := productView{
			Name:     p.Name(),
			Kind:     p.Kind().String(),
			Price:    p.Price(),
			Quantity: p.Quantity(),
			Expired:  p.IsExpiredAt(now),
		}
		if at, ok := p.Perishability().ExpiresAt(); ok {
			view.ExpiresAt = &at
		}
		if w, ok := p.Shippability().WeightKg(); ok {
			view.WeightKg = &w
		}
		views = append(views, view)
	}

	c.JSON(http.StatusOK, gin.H{"products": views})
}

// GetCart returns the current cart.
func (h *StorefrontHandler) GetCart(c *gin.Context) {
	cart := h.session.Cart()

	items := make([]cartItemView, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, cartItemView{
			Name:      item.Product.Name(),
			Quantity:  item.Quantity,
			UnitPrice: item.Product.Price(),
			LineTotal: item.LineTotal(),
		})
	}

	c.JSON(http.StatusOK, gin.H{"id": cart.ID, "items": items, "subtotal": cart.Subtotal})
}

// AddItem adds a catalog product to the current cart.
func (h *StorefrontHandler) AddItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid add item payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.session.AddToCart(req.Name, req.Quantity); err != nil {
		var shortage *models.StockShortageError
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, models.ErrProductNotFound):
			status = http.StatusNotFound
		case errors.Is(err, models.ErrInvalidQuantity):
			status = http.StatusBadRequest
		case errors.As(err, &shortage):
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"reason": models.Reason(err), "error": presentation.Rejection(err)})
		return
	}

	c.Status(http.StatusCreated)
}

// Checkout settles the current cart. With ?format=text the rendered receipt is returned.
func (h *StorefrontHandler) Checkout(c *gin.Context) {
	receipt, err := h.session.Checkout(c.Request.Context())
	if err != nil {
		status := http.StatusUnprocessableEntity
		if models.Reason(err) == models.ReasonUnknown {
			h.logger.Error("checkout failed", zap.Error(err))
			status = http.StatusInternalServerError
		}
		c.JSON(status, gin.H{"reason": models.Reason(err), "error": presentation.Rejection(err)})
		return
	}

	if c.Query("format") == "text" {
		c.String(http.StatusOK, presentation.Receipt(*receipt))
		return
	}

	c.JSON(http.StatusOK, receipt)
}

// GetCustomer returns the shopper and remaining balance.
func (h *StorefrontHandler) GetCustomer(c *gin.Context) {
	customer := h.session.Customer()
	c.JSON(http.StatusOK, gin.H{"name": customer.Name, "balance": customer.Balance()})
}

// ListReceipts returns the receipts issued since startup.
func (h *StorefrontHandler) ListReceipts(c *gin.Context) {
	receipts := h.receipts.List()
	if receipts == nil {
		receipts = []models.Receipt{}
	}
	c.JSON(http.StatusOK, gin.H{"receipts": receipts})
}

// SalesReport summarizes the ledger between ?from and ?to (2006-01-02, inclusive).
// Without parameters the last seven days are reported.
func (h *StorefrontHandler) SalesReport(c *gin.Context) {
	if h.reports == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "sales ledger is not configured"})
		return
	}

	end := h.now()
	start := end.AddDate(0, 0, -7)

	if from := c.Query("from"); from != "" {
		t, err := time.Parse(dateLayout, from)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from must use YYYY-MM-DD"})
			return
		}
		start = t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse(dateLayout, to)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "to must use YYYY-MM-DD"})
			return
		}
		end = t.Add(24*time.Hour - time.Nanosecond)
	}

	summary, err := h.reports.SalesSummary(c.Request.Context(), start, end)
	if err != nil {
		h.logger.Error("failed building sales report", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to read sales ledger"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary, "text": summary.String()})
}
