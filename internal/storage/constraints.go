package storage

import (
	"strings"

	"github.com/sheikh-saqib/card-payments-api/internal/models"
)

// MaxCardLength matches the card column width.
const MaxCardLength = 19

// AmountScale is the number of decimal places an amount may carry.
const AmountScale = 2

// CheckConstraints applies the same rules the relational schema enforces, so stores
// without a schema reject the same records.
func CheckConstraints(tx models.Transaction) error {
	card := strings.TrimSpace(tx.Card)
	if card == "" {
		return &ConstraintError{Field: "card", Reason: "must not be blank"}
	}
	if len(card) > MaxCardLength {
		return &ConstraintError{Field: "card", Reason: "exceeds maximum length"}
	}

	d := tx.Description
	if d.Amount.IsNegative() {
		return &ConstraintError{Field: "description.amount", Reason: "must not be negative"}
	}
	if !d.Amount.Equal(d.Amount.Round(AmountScale)) {
		return &ConstraintError{Field: "description.amount", Reason: "must have at most 2 decimal places"}
	}
	if d.Timestamp.IsZero() {
		return &ConstraintError{Field: "description.timestamp", Reason: "must be set"}
	}
	if strings.TrimSpace(d.Merchant) == "" {
		return &ConstraintError{Field: "description.merchant", Reason: "must not be blank"}
	}
	if d.Status != "" && !d.Status.Valid() {
		return &ConstraintError{Field: "description.status", Reason: "unknown status"}
	}
	set := 0
	for _, v := range []string{d.AuthorizationCode, d.NSU, string(d.Status)} {
		if v != "" {
			set++
		}
	}
	if set != 0 && set != 3 {
		return &ConstraintError{Field: "description", Reason: "authorization code, NSU and status must be set together"}
	}

	pm := tx.PaymentMethod
	if !pm.Type.Valid() {
		return &ConstraintError{Field: "payment_method.type", Reason: "unknown payment type"}
	}
	if pm.Installments < 1 {
		return &ConstraintError{Field: "payment_method.installments", Reason: "must be positive"}
	}

	return nil
}
