package memory

import (
	"context"
	"sync"

	interfaces "github.com/sheikh-saqib/card-payments-api/internal/interfaces"
	"github.com/sheikh-saqib/card-payments-api/internal/models"
	"github.com/sheikh-saqib/card-payments-api/internal/storage"
)

// MemoryTransactionStore is an in-memory implementation of interfaces.TransactionStore.
// It is safe for concurrent use and hands out copies so callers can't alter stored state.
type MemoryTransactionStore struct {
	mu           sync.Mutex
	transactions map[int64]models.Transaction
	order        []int64 // insertion order, used by FindAll

	nextTransactionID   int64
	nextDescriptionID   int64
	nextPaymentMethodID int64
}

// NewMemoryTransactionStore creates an empty store. Identities start at 1.
func NewMemoryTransactionStore() *MemoryTransactionStore {
	return &MemoryTransactionStore{
		transactions: make(map[int64]models.Transaction),
	}
}

// Save inserts tx when it has no identity yet, otherwise replaces the stored record.
// Identities of an existing record are kept as stored; the caller can't reassign them.
func (m *MemoryTransactionStore) Save(ctx context.Context, tx models.Transaction) (models.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return models.Transaction{}, err
	}
	if err := storage.CheckConstraints(tx); err != nil {
		return models.Transaction{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if tx.ID == nil {
		m.nextTransactionID++
		m.nextDescriptionID++
		m.nextPaymentMethodID++

		tx.ID = int64Ptr(m.nextTransactionID)
		tx.Description.ID = int64Ptr(m.nextDescriptionID)
		tx.PaymentMethod.ID = int64Ptr(m.nextPaymentMethodID)

		m.transactions[*tx.ID] = clone(tx)
		m.order = append(m.order, *tx.ID)
		return clone(tx), nil
	}

	stored, exists := m.transactions[*tx.ID]
	if !exists {
		return models.Transaction{}, storage.ErrNotFound
	}

	tx.Description.ID = int64Ptr(*stored.Description.ID)
	tx.PaymentMethod.ID = int64Ptr(*stored.PaymentMethod.ID)
	m.transactions[*tx.ID] = clone(tx)
	return clone(tx), nil
}

func (m *MemoryTransactionStore) FindByID(ctx context.Context, id int64) (models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx, exists := m.transactions[id]
	if !exists {
		return models.Transaction{}, storage.ErrNotFound
	}
	return clone(tx), nil
}

// FindAll returns every transaction in insertion order.
func (m *MemoryTransactionStore) FindAll(ctx context.Context) ([]models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]models.Transaction, 0, len(m.order))
	for _, id := range m.order {
		result = append(result, clone(m.transactions[id]))
	}
	return result, nil
}

// clone copies the identity pointers so stored records never share memory with callers.
func clone(tx models.Transaction) models.Transaction {
	if tx.ID != nil {
		tx.ID = int64Ptr(*tx.ID)
	}
	if tx.Description.ID != nil {
		tx.Description.ID = int64Ptr(*tx.Description.ID)
	}
	if tx.PaymentMethod.ID != nil {
		tx.PaymentMethod.ID = int64Ptr(*tx.PaymentMethod.ID)
	}
	return tx
}

func int64Ptr(v int64) *int64 {
	return &v
}

// Compile-time check: ensure MemoryTransactionStore implements TransactionStore interface
var _ interfaces.TransactionStore = (*MemoryTransactionStore)(nil)
