package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/sheikh-saqib/card-payments-api/internal/api/dto"
	"github.com/sheikh-saqib/card-payments-api/internal/api/middleware"
	"github.com/sheikh-saqib/card-payments-api/internal/logger"
	"github.com/sheikh-saqib/card-payments-api/internal/models"
	"github.com/sheikh-saqib/card-payments-api/internal/payment"
	"github.com/sheikh-saqib/card-payments-api/internal/storage"
)

const maxBodyBytes = 1 << 20

// TransactionService is what the handlers need from the payment core.
type TransactionService interface {
	FindByID(ctx context.Context, id int64) (models.Transaction, error)
	FindAll(ctx context.Context) ([]models.Transaction, error)
	Pay(ctx context.Context, tx models.Transaction) (models.Transaction, error)
	Reverse(ctx context.Context, id int64) (models.Transaction, error)
}

// TransactionsHandler serves the /transacao/v1 endpoints.
type TransactionsHandler struct {
	service TransactionService
}

func NewTransactionsHandler(service TransactionService) *TransactionsHandler {
	return &TransactionsHandler{service: service}
}

// Register mounts the endpoints on mux.
func (h *TransactionsHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /transacao/v1", h.FindAll)
	mux.HandleFunc("GET /transacao/v1/{id}", h.FindByID)
	mux.HandleFunc("POST /transacao/v1/pagamento", h.Pay)
	mux.HandleFunc("GET /transacao/v1/estorno/{id}", h.Reverse)
}

// FindByID handles GET /transacao/v1/{id}
func (h *TransactionsHandler) FindByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		writeServiceError(w, r, payment.ErrTransactionNotFound)
		return
	}

	tx, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.FromModel(tx))
}

// FindAll handles GET /transacao/v1
func (h *TransactionsHandler) FindAll(w http.ResponseWriter, r *http.Request) {
	txs, err := h.service.FindAll(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.FromModels(txs))
}

// Pay handles POST /transacao/v1/pagamento
func (h *TransactionsHandler) Pay(w http.ResponseWriter, r *http.Request) {
	var req dto.TransactionDTO

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := dto.Validate(req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	tx, err := h.service.Pay(r.Context(), dto.ToModel(req))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.FromModel(tx))
}

// Reverse handles GET /transacao/v1/estorno/{id}
func (h *TransactionsHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		writeServiceError(w, r, payment.ErrTransactionNotFound)
		return
	}

	tx, err := h.service.Reverse(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.FromModel(tx))
}

// parseID reads the {id} path value. A malformed id is reported as not found.
func parseID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// writeServiceError maps core errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var constraintErr *storage.ConstraintError

	switch {
	case errors.Is(err, payment.ErrInsertionNotAllowed):
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, payment.ErrTransactionNotFound):
		middleware.WriteError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &constraintErr):
		middleware.WriteError(w, http.StatusBadRequest, constraintErr.Error())
	default:
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Msg("request failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}
