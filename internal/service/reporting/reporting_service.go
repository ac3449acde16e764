package reporting

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	repo "github.com/mamadbah2/storefront/internal/repository/sheets"
)

const dateLayout = "2006-01-02"

// SalesSummary aggregates the ledger over a period.
type SalesSummary struct {
	From      time.Time       `json:"from"`
	To        time.Time       `json:"to"`
	Checkouts int             `json:"checkouts"`
	Units     int             `json:"units"`
	Revenue   decimal.Decimal `json:"revenue"`
	Shipping  decimal.Decimal `json:"shipping"`
}

// String renders the one-line summary shown by the report endpoint.
func (s SalesSummary) String() string {
	if s.Checkouts == 0 {
		return fmt.Sprintf("Sales (%s-%s): no checkouts yet.", s.From.Format(dateLayout), s.To.Format(dateLayout))
	}
	return fmt.Sprintf("Sales (%s-%s): %d checkouts, %d units, revenue %s incl. shipping %s.",
		s.From.Format(dateLayout), s.To.Format(dateLayout), s.Checkouts, s.Units, s.Revenue.StringFixed(2), s.Shipping.StringFixed(2))
}

// Service exposes lightweight analytics over the sales ledger.
type Service struct {
	repo        repo.RowReader
	ledgerRange string
	logger      *zap.Logger
}

// NewService wires a new reporting service instance.
func NewService(repository repo.RowReader, ledgerRange string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repository, ledgerRange: ledgerRange, logger: logger}
}

// SalesSummary sums the ledger rows dated within [start, end].
func (s *Service) SalesSummary(ctx context.Context, start, end time.Time) (SalesSummary, error) {
	rows, err := s.repo.ReadRange(ctx, s.ledgerRange)
	if err != nil {
		return SalesSummary{}, fmt.Errorf("load ledger range: %w", err)
	}

	summary := SalesSummary{From: start, To: end, Revenue: decimal.Zero, Shipping: decimal.Zero}

	for _, row := range rows {
		if len(row) < 7 {
			continue
		}

		dateValue, err := parseDate(row[0])
		if err != nil {
			s.logger.Debug("skip ledger row with invalid date", zap.Any("value", row[0]), zap.Error(err))
			continue
		}
		if dateValue.Before(start) || dateValue.After(end) {
			continue
		}

		units, err := parseInt(row[3])
		if err != nil {
			s.logger.Debug("skip ledger row with invalid units", zap.Any("value", row[3]), zap.Error(err))
			continue
		}

		shipping, err := parseDecimal(row[5])
		if err != nil {
			s.logger.Debug("skip ledger row with invalid shipping", zap.Any("value", row[5]), zap.Error(err))
			continue
		}

		total, err := parseDecimal(row[6])
		if err != nil {
			s.logger.Debug("skip ledger row with invalid total", zap.Any("value", row[6]), zap.Error(err))
			continue
		}

		summary.Checkouts++
		summary.Units += units
		summary.Shipping = summary.Shipping.Add(shipping)
		summary.Revenue = summary.Revenue.Add(total)
	}

	return summary, nil
}

// Sheets cells come back as strings or float64 depending on the column format.
func parseDate(value interface{}) (time.Time, error) {
	str, err := cast.ToStringE(value)
	if err != nil {
		return time.Time{}, err
	}
	if str == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if t, err := time.Parse(repo.DateLayout, str); err == nil {
		return t, nil
	}
	if len(str) > 10 {
		str = str[:10]
	}
	return time.Parse(dateLayout, str)
}

func parseInt(value interface{}) (int, error) {
	if str, ok := value.(string); ok && str == "" {
		return 0, fmt.Errorf("empty numeric value")
	}
	return cast.ToIntE(value)
}

func parseDecimal(value interface{}) (decimal.Decimal, error) {
	str, err := cast.ToStringE(value)
	if err != nil {
		return decimal.Zero, err
	}
	if str == "" {
		return decimal.Zero, fmt.Errorf("empty numeric value")
	}
	return decimal.NewFromString(str)
}
