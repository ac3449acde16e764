package receipts

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/storefront/internal/config"
	"github.com/mamadbah2/storefront/internal/domain/models"
)

// Client pushes receipts to an external webhook.
type Client interface {
	SaveReceipt(ctx context.Context, receipt models.Receipt) error
}

// WebhookClient is a resty-backed implementation of Client.
type WebhookClient struct {
	httpClient *resty.Client
	url        string
}

// NewClient builds a webhook client from the provided configuration values.
func NewClient(cfg config.WebhookConfig) *WebhookClient {
	restyClient := resty.New()
	restyClient.
		SetHeader("Content-Type", "application/json").
		SetTimeout(10 * time.Second)
	if cfg.Token != "" {
		restyClient.SetAuthToken(cfg.Token)
	}

	return &WebhookClient{
		httpClient: restyClient,
		url:        strings.TrimSuffix(cfg.URL, "/"),
	}
}

// Notification is the payload posted for each receipt.
type Notification struct {
	Event   string         `json:"event"`
	Receipt models.Receipt `json:"receipt"`
}

// apiError represents an error payload returned by the webhook receiver.
type apiError struct {
	Error string `json:"error"`
}

// SaveReceipt posts the receipt to the webhook.
func (c *WebhookClient) SaveReceipt(ctx context.Context, receipt models.Receipt) error {
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(Notification{Event: "checkout.completed", Receipt: receipt}).
		SetError(apiErr).
		Post(c.url)
	if err != nil {
		return fmt.Errorf("post receipt %s: %w", receipt.ID, err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		message := apiErr.Error
		if message == "" {
			message = strings.TrimSpace(resp.String())
		}
		return fmt.Errorf("receipt webhook error: code=%d, message=%s", resp.StatusCode(), message)
	}

	return nil
}
