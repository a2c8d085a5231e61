package interfaces

import (
	"context"

	"github.com/sheikh-saqib/card-payments-api/internal/models"
)

// TransactionStore persists transactions together with their description and payment method.
// Save inserts when tx.ID is nil, assigning all three identities, and updates otherwise.
type TransactionStore interface {
	Save(ctx context.Context, tx models.Transaction) (models.Transaction, error)
	FindByID(ctx context.Context, id int64) (models.Transaction, error)
	FindAll(ctx context.Context) ([]models.Transaction, error)
}
