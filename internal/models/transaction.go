package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the processing state of a transaction description.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusAuthorized Status = "AUTHORIZED"
	StatusReversed   Status = "REVERSED"
	StatusDenied     Status = "DENIED"
)

// PaymentType identifies how the card was charged.
type PaymentType string

const (
	PaymentTypeCredit  PaymentType = "CREDIT"
	PaymentTypeDebit   PaymentType = "DEBIT"
	PaymentTypePrepaid PaymentType = "PREPAID"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAuthorized, StatusReversed, StatusDenied:
		return true
	}
	return false
}

// Valid reports whether t is one of the known payment types.
func (t PaymentType) Valid() bool {
	switch t {
	case PaymentTypeCredit, PaymentTypeDebit, PaymentTypePrepaid:
		return true
	}
	return false
}

// Transaction is a card payment as recorded by the service.
// ID stays nil until storage accepts the record for the first time.
type Transaction struct {
	ID            *int64        `json:"id,omitempty"`
	Card          string        `json:"card"` // masked, e.g. 4444********1234
	Description   Description   `json:"description"`
	PaymentMethod PaymentMethod `json:"payment_method"`
}

// Description carries the commercial data of a transaction.
// AuthorizationCode, NSU and Status are only filled once the payment is authorized.
type Description struct {
	ID                *int64          `json:"id,omitempty"`
	Amount            decimal.Decimal `json:"amount"`
	Timestamp         time.Time       `json:"timestamp"`
	Merchant          string          `json:"merchant"`
	AuthorizationCode string          `json:"authorization_code,omitempty"`
	NSU               string          `json:"nsu,omitempty"`
	Status            Status          `json:"status,omitempty"`
}

// PaymentMethod describes the payment instrument. Installments only matter for credit.
type PaymentMethod struct {
	ID           *int64      `json:"id,omitempty"`
	Type         PaymentType `json:"type"`
	Installments int         `json:"installments"`
}
