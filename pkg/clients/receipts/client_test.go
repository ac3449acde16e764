package receipts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/storefront/internal/config"
	"github.com/mamadbah2/storefront/internal/domain/models"
)

func TestSaveReceipt(t *testing.T) {
	var (
		gotAuth string
		got     map[string]interface{}
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	client := NewClient(config.WebhookConfig{URL: srv.URL + "/", Token: "secret"})
	err := client.SaveReceipt(context.Background(), models.Receipt{ID: "r-1", Customer: "Sondos", Total: decimal.NewFromInt(430)})
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "checkout.completed", got["event"])
	receipt := got["receipt"].(map[string]interface{})
	assert.Equal(t, "r-1", receipt["id"])
}

func TestSaveReceipt_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"unknown customer"}`))
	}))
	defer srv.Close()

	err := NewClient(config.WebhookConfig{URL: srv.URL}).SaveReceipt(context.Background(), models.Receipt{ID: "r-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "code=400")
	assert.Contains(t, err.Error(), "unknown customer")
}

func TestSaveReceipt_PlainErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := NewClient(config.WebhookConfig{URL: srv.URL}).SaveReceipt(context.Background(), models.Receipt{ID: "r-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maintenance")
}
