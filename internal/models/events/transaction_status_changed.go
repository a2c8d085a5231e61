package events

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TopicTransactionAuthorized = "transactions.authorized"
	TopicTransactionReversed   = "transactions.reversed"
)

type TransactionStatusChanged struct {
	TransactionID     int64           `json:"transaction_id"`
	Status            string          `json:"status"`
	Amount            decimal.Decimal `json:"amount"`
	Merchant          string          `json:"merchant"`
	AuthorizationCode string          `json:"authorization_code"`
	NSU               string          `json:"nsu"`
	OccurredAt        time.Time       `json:"occurred_at"`
}
