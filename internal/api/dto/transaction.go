// Package dto defines the JSON shapes of the HTTP API and converts them to and from
// the domain models. Field names on the wire follow the public contract
// (cartao, descricao, formaPagamento).
package dto

import (
	"time"

	"github.com/sheikh-saqib/card-payments-api/internal/models"
	"github.com/shopspring/decimal"
)

// Amount is a monetary value. It is read from a JSON number or string and written as a
// JSON number with two decimal places.
type Amount struct {
	decimal.Decimal
}

func NewAmount(d decimal.Decimal) *Amount {
	return &Amount{Decimal: d}
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.StringFixed(2)), nil
}

type TransactionDTO struct {
	ID            *int64            `json:"id"`
	Card          string            `json:"cartao" validate:"required,max=19"`
	Description   *DescriptionDTO   `json:"descricao" validate:"required"`
	PaymentMethod *PaymentMethodDTO `json:"formaPagamento" validate:"required"`
}

type DescriptionDTO struct {
	ID                *int64     `json:"id"`
	Amount            *Amount    `json:"valor" validate:"required,nonnegative_amount"`
	Timestamp         *time.Time `json:"dataHora" validate:"required"`
	Merchant          string     `json:"estabelecimento" validate:"required"`
	NSU               string     `json:"nsu,omitempty"`
	AuthorizationCode string     `json:"codigoAutorizacao,omitempty"`
	Status            string     `json:"status,omitempty"`
}

type PaymentMethodDTO struct {
	ID           *int64 `json:"id"`
	Type         string `json:"tipo" validate:"required,oneof=CREDIT DEBIT PREPAID"`
	Installments int    `json:"parcelas" validate:"required,gte=1"`
}

// ToModel converts a request body into a domain transaction. Every field is carried
// over, identities and processing fields included, so admission can inspect them.
func ToModel(in TransactionDTO) models.Transaction {
	tx := models.Transaction{
		ID:   copyID(in.ID),
		Card: in.Card,
	}

	if d := in.Description; d != nil {
		tx.Description = models.Description{
			ID:                copyID(d.ID),
			Merchant:          d.Merchant,
			AuthorizationCode: d.AuthorizationCode,
			NSU:               d.NSU,
			Status:            models.Status(d.Status),
		}
		if d.Amount != nil {
			tx.Description.Amount = d.Amount.Decimal
		}
		if d.Timestamp != nil {
			tx.Description.Timestamp = *d.Timestamp
		}
	}

	if pm := in.PaymentMethod; pm != nil {
		tx.PaymentMethod = models.PaymentMethod{
			ID:           copyID(pm.ID),
			Type:         models.PaymentType(pm.Type),
			Installments: pm.Installments,
		}
	}

	return tx
}

// FromModel converts a domain transaction into its response body.
func FromModel(tx models.Transaction) TransactionDTO {
	timestamp := tx.Description.Timestamp

	return TransactionDTO{
		ID:   copyID(tx.ID),
		Card: tx.Card,
		Description: &DescriptionDTO{
			ID:                copyID(tx.Description.ID),
			Amount:            NewAmount(tx.Description.Amount),
			Timestamp:         &timestamp,
			Merchant:          tx.Description.Merchant,
			NSU:               tx.Description.NSU,
			AuthorizationCode: tx.Description.AuthorizationCode,
			Status:            string(tx.Description.Status),
		},
		PaymentMethod: &PaymentMethodDTO{
			ID:           copyID(tx.PaymentMethod.ID),
			Type:         string(tx.PaymentMethod.Type),
			Installments: tx.PaymentMethod.Installments,
		},
	}
}

func FromModels(txs []models.Transaction) []TransactionDTO {
	out := make([]TransactionDTO, 0, len(txs))
	for _, tx := range txs {
		out = append(out, FromModel(tx))
	}
	return out
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
