package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Checkout  CheckoutConfig
	Customer  CustomerConfig
	Catalog   CatalogConfig
	Scheduler SchedulerConfig
	MongoDB   MongoDBConfig
	Sheets    SheetsConfig
	Webhook   WebhookConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// LogConfig selects the minimum log level. A non-empty File also writes a
// rotated log file.
type LogConfig struct {
	Level string
	File  string
}

// CheckoutConfig holds the pricing and validation knobs of the checkout.
type CheckoutConfig struct {
	ShippingFee decimal.Decimal
	VerifyStock bool
}

// CustomerConfig describes the shopper of the session.
type CustomerConfig struct {
	Name    string
	Balance decimal.Decimal
}

// CatalogConfig points at a CSV seed. An empty File means the built-in catalog.
type CatalogConfig struct {
	File string
}

// SchedulerConfig holds the catalog sweep schedule.
type SchedulerConfig struct {
	ExpirySweepCron string
	Timezone        string
}

// MongoDBConfig holds settings for the receipt archive. An empty URI disables it.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// SheetsConfig contains configuration for the Google Sheets sales ledger.
// The ledger is disabled unless both credentials and spreadsheet are set.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
	LedgerRange     string
}

// WebhookConfig points at an endpoint receiving every receipt. An empty URL disables it.
type WebhookConfig struct {
	URL   string
	Token string
}

// Enabled reports whether the ledger has everything it needs.
func (c SheetsConfig) Enabled() bool {
	return c.CredentialsPath != "" && c.SpreadsheetID != ""
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// A missing .env is fine when everything comes from the environment.
		_ = godotenv.Load()
	}

	fee, err := decimal.NewFromString(getenvWithDefault("SHIPPING_FLAT_FEE", "30"))
	if err != nil {
		return nil, fmt.Errorf("SHIPPING_FLAT_FEE: %w", err)
	}

	balance, err := decimal.NewFromString(getenvWithDefault("CUSTOMER_BALANCE", "1000"))
	if err != nil {
		return nil, fmt.Errorf("CUSTOMER_BALANCE: %w", err)
	}

	verifyStock, err := strconv.ParseBool(getenvWithDefault("STRICT_STOCK_CHECK", "true"))
	if err != nil {
		return nil, fmt.Errorf("STRICT_STOCK_CHECK: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Log: LogConfig{
			Level: getenvWithDefault("LOG_LEVEL", "info"),
			File:  os.Getenv("LOG_FILE"),
		},
		Checkout: CheckoutConfig{
			ShippingFee: fee,
			VerifyStock: verifyStock,
		},
		Customer: CustomerConfig{
			Name:    getenvWithDefault("CUSTOMER_NAME", "Sondos"),
			Balance: balance,
		},
		Catalog: CatalogConfig{
			File: os.Getenv("CATALOG_FILE"),
		},
		Scheduler: SchedulerConfig{
			ExpirySweepCron: getenvWithDefault("EXPIRY_SWEEP_CRON", "0 * * * *"),
			Timezone:        getenvWithDefault("TIMEZONE", "Africa/Cairo"),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "storefront"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
			LedgerRange:     getenvWithDefault("LEDGER_SHEET_RANGE", "Sales!A:H"),
		},
		Webhook: WebhookConfig{
			URL:   os.Getenv("RECEIPT_WEBHOOK_URL"),
			Token: os.Getenv("RECEIPT_WEBHOOK_TOKEN"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch {
	case c.Checkout.ShippingFee.IsNegative():
		return errors.New("SHIPPING_FLAT_FEE must not be negative")
	case c.Customer.Name == "":
		return errors.New("CUSTOMER_NAME must be provided")
	case c.Customer.Balance.IsNegative():
		return errors.New("CUSTOMER_BALANCE must not be negative")
	}

	if c.Scheduler.ExpirySweepCron == "" {
		return errors.New("EXPIRY_SWEEP_CRON must be provided")
	}

	if c.Scheduler.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	if c.MongoDB.URI != "" && c.MongoDB.DBName == "" {
		return errors.New("MONGODB_DB_NAME must be provided when MONGODB_URI is set")
	}

	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_DATABASE_ID must be provided together")
	}

	if c.Sheets.Enabled() && c.Sheets.LedgerRange == "" {
		return errors.New("LEDGER_SHEET_RANGE must not be empty")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
