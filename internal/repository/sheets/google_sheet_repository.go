package sheets

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/storefront/internal/config"
	"github.com/mamadbah2/storefront/internal/domain/models"
)

// DateLayout is the timestamp format of the ledger date column.
const DateLayout = "2006-01-02 15:04:05"

var errEmptyRange = errors.New("sheet range must not be empty")

// RowWriter appends rows to a spreadsheet range.
type RowWriter interface {
	WriteRow(ctx context.Context, sheetRange string, values []interface{}) error
}

// RowReader fetches rows from a spreadsheet range.
type RowReader interface {
	ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error)
}

// GoogleSheetRepository reads and appends rows of one spreadsheet through the Sheets v4 API.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetRepository builds a Google Sheets backed repository instance.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*GoogleSheetRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetRepository{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// WriteRow appends values as a new row below the table found in sheetRange.
// Values are stored RAW so ledger rows read back exactly as written.
func (r *GoogleSheetRepository) WriteRow(ctx context.Context, sheetRange string, values []interface{}) error {
	if sheetRange == "" {
		return errEmptyRange
	}

	resp, err := r.service.Spreadsheets.Values.
		Append(r.spreadsheetID, sheetRange, &sheetsapi.ValueRange{MajorDimension: "ROWS", Values: [][]interface{}{values}}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append row to %s: %w", sheetRange, err)
	}

	if resp.Updates != nil {
		r.logger.Debug("ledger row appended",
			zap.String("range", resp.Updates.UpdatedRange),
			zap.Int64("cells", resp.Updates.UpdatedCells))
	}
	return nil
}

// ReadRange returns the unformatted cell values of sheetRange, row by row.
// Numeric cells come back as float64, text cells as string.
func (r *GoogleSheetRepository) ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error) {
	if sheetRange == "" {
		return nil, errEmptyRange
	}

	resp, err := r.service.Spreadsheets.Values.
		Get(r.spreadsheetID, sheetRange).
		ValueRenderOption("UNFORMATTED_VALUE").
		MajorDimension("ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("read range %s: %w", sheetRange, err)
	}

	return resp.Values, nil
}

// LedgerRepository records one sales ledger row per receipt.
type LedgerRepository struct {
	writer     RowWriter
	sheetRange string
}

// NewLedgerRepository writes ledger rows into sheetRange through writer.
func NewLedgerRepository(writer RowWriter, sheetRange string) *LedgerRepository {
	return &LedgerRepository{writer: writer, sheetRange: sheetRange}
}

// SaveReceipt appends the receipt summary to the ledger.
func (r *LedgerRepository) SaveReceipt(ctx context.Context, receipt models.Receipt) error {
	if err := r.writer.WriteRow(ctx, r.sheetRange, LedgerRow(receipt)); err != nil {
		return fmt.Errorf("record receipt %s in ledger: %w", receipt.ID, err)
	}
	return nil
}

// LedgerRow lays a receipt out as: date, receipt id, customer, units, subtotal,
// shipping, total, remaining balance.
func LedgerRow(receipt models.Receipt) []interface{} {
	var units int
	for _, line := range receipt.Lines {
		units += line.Quantity
	}

	return []interface{}{
		receipt.CreatedAt.Format(DateLayout),
		receipt.ID,
		receipt.Customer,
		units,
		receipt.Subtotal.String(),
		receipt.ShippingFee.String(),
		receipt.Total.String(),
		receipt.Balance.String(),
	}
}
