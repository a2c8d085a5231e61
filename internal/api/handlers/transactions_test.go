package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sheikh-saqib/card-payments-api/internal/api/dto"
	"github.com/sheikh-saqib/card-payments-api/internal/models"
	"github.com/sheikh-saqib/card-payments-api/internal/payment"
	"github.com/sheikh-saqib/card-payments-api/internal/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const paymentBody = `{
	"cartao": "4444********1234",
	"descricao": {
		"valor": 100.00,
		"dataHora": "2024-03-01T10:00:00Z",
		"estabelecimento": "Loja X"
	},
	"formaPagamento": {"tipo": "CREDIT", "parcelas": 1}
}`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	svc := payment.NewService(memory.NewMemoryTransactionStore(), payment.LocalAuthorizer{}, nil)
	mux := http.NewServeMux()
	NewTransactionsHandler(svc).Register(mux)
	mux.HandleFunc("GET /health", Health)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func pay(t *testing.T, srv *httptest.Server) dto.TransactionDTO {
	t.Helper()
	resp := do(t, http.MethodPost, srv.URL+"/transacao/v1/pagamento", paymentBody)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decode[dto.TransactionDTO](t, resp)
}

func TestPay(t *testing.T) {
	srv := newTestServer(t)

	got := pay(t, srv)

	require.NotNil(t, got.ID)
	require.NotNil(t, got.Description.ID)
	require.NotNil(t, got.PaymentMethod.ID)
	assert.Equal(t, "4444********1234", got.Card)
	assert.Equal(t, "AUTHORIZED", got.Description.Status)
	assert.Len(t, got.Description.AuthorizationCode, 9)
	assert.Len(t, got.Description.NSU, 10)
	assert.Equal(t, "100", got.Description.Amount.String())
	assert.Equal(t, "Loja X", got.Description.Merchant)
	assert.Equal(t, "CREDIT", got.PaymentMethod.Type)
	assert.Equal(t, 1, got.PaymentMethod.Installments)
}

func TestPay_ResubmittedResponseIsRejected(t *testing.T) {
	srv := newTestServer(t)
	first := pay(t, srv)

	body, err := json.Marshal(first)
	require.NoError(t, err)

	resp := do(t, http.MethodPost, srv.URL+"/transacao/v1/pagamento", string(body))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	errBody := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, http.StatusBadRequest, errBody.Status)
	assert.Equal(t, "Bad Request", errBody.Error)
	assert.Contains(t, errBody.Message, "insertion not allowed")
	assert.False(t, errBody.Timestamp.IsZero())

	list := decode[[]dto.TransactionDTO](t, do(t, http.MethodGet, srv.URL+"/transacao/v1", ""))
	assert.Len(t, list, 1)
}

func TestPay_InvalidBodies(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"malformed json", `{"cartao":`, "Invalid request body"},
		{"missing merchant", `{"cartao": "4444********1234", "descricao": {"valor": 1, "dataHora": "2024-03-01T10:00:00Z"}, "formaPagamento": {"tipo": "CREDIT", "parcelas": 1}}`, "'descricao.estabelecimento' is required"},
		{"nsu already set", strings.Replace(paymentBody, `"estabelecimento": "Loja X"`, `"estabelecimento": "Loja X", "nsu": "1234567890"`, 1), "description.nsu"},
		{"storage constraint", strings.Replace(paymentBody, "100.00", "100.005", 1), "constraint violation on description.amount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, http.MethodPost, srv.URL+"/transacao/v1/pagamento", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			errBody := decode[dto.ErrorResponse](t, resp)
			assert.Contains(t, errBody.Message, tt.message)
		})
	}
}

func TestFindByID(t *testing.T) {
	srv := newTestServer(t)
	created := pay(t, srv)

	resp := do(t, http.MethodGet, srv.URL+"/transacao/v1/1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	got := decode[dto.TransactionDTO](t, resp)
	assert.Equal(t, *created.ID, *got.ID)
	assert.Equal(t, created.Description.NSU, got.Description.NSU)
}

func TestFindByID_NotFound(t *testing.T) {
	srv := newTestServer(t)

	for _, id := range []string{"42", "abc", "-1", "pagamento"} {
		t.Run(id, func(t *testing.T) {
			resp := do(t, http.MethodGet, srv.URL+"/transacao/v1/"+id, "")
			assert.Equal(t, http.StatusNotFound, resp.StatusCode)

			errBody := decode[dto.ErrorResponse](t, resp)
			assert.Equal(t, http.StatusNotFound, errBody.Status)
			assert.Contains(t, errBody.Message, "transaction not found")
		})
	}
}

func TestFindAll(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, http.MethodGet, srv.URL+"/transacao/v1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[[]dto.TransactionDTO](t, resp))

	pay(t, srv)
	pay(t, srv)

	list := decode[[]dto.TransactionDTO](t, do(t, http.MethodGet, srv.URL+"/transacao/v1", ""))
	assert.Len(t, list, 2)
}

func TestReverse(t *testing.T) {
	srv := newTestServer(t)
	created := pay(t, srv)

	resp := do(t, http.MethodGet, srv.URL+"/transacao/v1/estorno/1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	reversed := decode[dto.TransactionDTO](t, resp)
	assert.Equal(t, "REVERSED", reversed.Description.Status)
	assert.Equal(t, created.Description.NSU, reversed.Description.NSU)
	assert.Equal(t, created.Description.AuthorizationCode, reversed.Description.AuthorizationCode)

	found := decode[dto.TransactionDTO](t, do(t, http.MethodGet, srv.URL+"/transacao/v1/1", ""))
	assert.Equal(t, "REVERSED", found.Description.Status)
}

func TestReverse_NotFound(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, http.MethodGet, srv.URL+"/transacao/v1/estorno/9", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/transacao/v1/estorno/x", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, http.MethodDelete, srv.URL+"/transacao/v1/1", "")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, http.MethodGet, srv.URL+"/health", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decode[map[string]string](t, resp)["status"])
}

// failingService returns the same error from every call.
type failingService struct{ err error }

func (f failingService) FindByID(context.Context, int64) (models.Transaction, error) {
	return models.Transaction{}, f.err
}
func (f failingService) FindAll(context.Context) ([]models.Transaction, error) { return nil, f.err }
func (f failingService) Pay(context.Context, models.Transaction) (models.Transaction, error) {
	return models.Transaction{}, f.err
}
func (f failingService) Reverse(context.Context, int64) (models.Transaction, error) {
	return models.Transaction{}, f.err
}

func TestUnexpectedErrorsAreHidden(t *testing.T) {
	mux := http.NewServeMux()
	NewTransactionsHandler(failingService{err: errors.New("pq: connection refused")}).Register(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/transacao/v1", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}
