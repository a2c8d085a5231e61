package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name: "valid",
			body: paymentRequest,
		},
		{
			name:    "missing card",
			body:    `{"descricao": {"valor": 1, "dataHora": "2024-03-01T10:00:00Z", "estabelecimento": "X"}, "formaPagamento": {"tipo": "CREDIT", "parcelas": 1}}`,
			wantErr: "validation failed: 'cartao' is required",
		},
		{
			name:    "missing description",
			body:    `{"cartao": "4444********1234", "formaPagamento": {"tipo": "CREDIT", "parcelas": 1}}`,
			wantErr: "validation failed: 'descricao' is required",
		},
		{
			name:    "missing amount",
			body:    `{"cartao": "4444********1234", "descricao": {"dataHora": "2024-03-01T10:00:00Z", "estabelecimento": "X"}, "formaPagamento": {"tipo": "CREDIT", "parcelas": 1}}`,
			wantErr: "validation failed: 'descricao.valor' is required",
		},
		{
			name:    "negative amount",
			body:    `{"cartao": "4444********1234", "descricao": {"valor": -1, "dataHora": "2024-03-01T10:00:00Z", "estabelecimento": "X"}, "formaPagamento": {"tipo": "CREDIT", "parcelas": 1}}`,
			wantErr: "validation failed: 'descricao.valor' must not be negative",
		},
		{
			name:    "unknown payment type",
			body:    `{"cartao": "4444********1234", "descricao": {"valor": 1, "dataHora": "2024-03-01T10:00:00Z", "estabelecimento": "X"}, "formaPagamento": {"tipo": "CASH", "parcelas": 1}}`,
			wantErr: "validation failed: 'formaPagamento.tipo' must be one of [CREDIT DEBIT PREPAID]",
		},
		{
			name:    "negative installments",
			body:    `{"cartao": "4444********1234", "descricao": {"valor": 1, "dataHora": "2024-03-01T10:00:00Z", "estabelecimento": "X"}, "formaPagamento": {"tipo": "CREDIT", "parcelas": -2}}`,
			wantErr: "validation failed: 'formaPagamento.parcelas' must be at least 1",
		},
		{
			name:    "card too long",
			body:    `{"cartao": "4444********12345678", "descricao": {"valor": 1, "dataHora": "2024-03-01T10:00:00Z", "estabelecimento": "X"}, "formaPagamento": {"tipo": "CREDIT", "parcelas": 1}}`,
			wantErr: "validation failed: 'cartao' must be at most 19 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(decodeRequest(t, tt.body))
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrValidationFailed)
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}
