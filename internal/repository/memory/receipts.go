package memory

import (
	"context"
	"sync"

	"github.com/mamadbah2/storefront/internal/domain/models"
)

// ReceiptStore keeps the receipts of the running process, oldest first.
type ReceiptStore struct {
	mu       sync.RWMutex
	receipts []models.Receipt
}

// NewReceiptStore creates an empty store.
func NewReceiptStore() *ReceiptStore {
	return &ReceiptStore{}
}

// SaveReceipt appends the receipt.
func (s *ReceiptStore) SaveReceipt(_ context.Context, receipt models.Receipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.receipts = append(s.receipts, receipt)
	return nil
}

// List returns every stored receipt.
func (s *ReceiptStore) List() []models.Receipt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Receipt, len(s.receipts))
	copy(out, s.receipts)
	return out
}
