package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	interfaces "github.com/sheikh-saqib/card-payments-api/internal/interfaces"
	"github.com/sheikh-saqib/card-payments-api/internal/logger"
	"github.com/sheikh-saqib/card-payments-api/internal/models"
	"github.com/sheikh-saqib/card-payments-api/internal/models/events"
	"github.com/sheikh-saqib/card-payments-api/internal/storage"
)

// Service runs the lifecycle of a card transaction: lookup, payment and reversal.
// It keeps no state of its own; atomicity of each write belongs to the store.
type Service struct {
	store      interfaces.TransactionStore
	authorizer Authorizer
	publisher  interfaces.EventPublisher // nil disables events
	now        func() time.Time
}

// NewService wires the service to its collaborators. publisher may be nil.
func NewService(store interfaces.TransactionStore, authorizer Authorizer, publisher interfaces.EventPublisher) *Service {
	return &Service{
		store:      store,
		authorizer: authorizer,
		publisher:  publisher,
		now:        time.Now,
	}
}

// FindByID returns the transaction with the given identity or ErrTransactionNotFound.
func (s *Service) FindByID(ctx context.Context, id int64) (models.Transaction, error) {
	tx, err := s.store.FindByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return models.Transaction{}, fmt.Errorf("%w: id %d", ErrTransactionNotFound, id)
	}
	if err != nil {
		return models.Transaction{}, fmt.Errorf("find transaction %d: %w", id, err)
	}
	return tx, nil
}

// FindAll returns every stored transaction in the order the store yields them.
func (s *Service) FindAll(ctx context.Context) ([]models.Transaction, error) {
	txs, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	if txs == nil {
		txs = []models.Transaction{}
	}
	return txs, nil
}

// Pay admits tx as a new payment, authorizes it and stores it.
// The authorization code, NSU and AUTHORIZED status go into the same write that assigns
// the identities. Store errors, constraint violations included, are returned unchanged.
func (s *Service) Pay(ctx context.Context, tx models.Transaction) (models.Transaction, error) {
	log := logger.FromContext(ctx)

	if err := CheckAdmissible(tx); err != nil {
		log.Warn().Err(err).Msg("payment rejected by admission check")
		return models.Transaction{}, err
	}

	auth, err := s.authorizer.Authorize(ctx, tx)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("authorize payment: %w", err)
	}
	if auth.Code == "" || auth.NSU == "" {
		log.Error().Msg("authorizer returned an empty authorization code or NSU")
		return models.Transaction{}, ErrIncompleteAuthorization
	}

	// tx is our copy; the caller's record is left as it was sent.
	tx.Description.AuthorizationCode = auth.Code
	tx.Description.NSU = auth.NSU
	tx.Description.Status = models.StatusAuthorized

	saved, err := s.store.Save(ctx, tx)
	if err != nil {
		log.Error().Err(err).Msg("failed to store payment")
		return models.Transaction{}, err
	}

	log.Info().
		Int64("transaction_id", *saved.ID).
		Str("nsu", saved.Description.NSU).
		Str("status", string(saved.Description.Status)).
		Msg("payment authorized")

	s.publish(ctx, events.TopicTransactionAuthorized, saved)
	return saved, nil
}

// Reverse marks the transaction as REVERSED and stores it. Reversing an already
// reversed transaction is not an error; the reversed state is simply written again.
func (s *Service) Reverse(ctx context.Context, id int64) (models.Transaction, error) {
	tx, err := s.FindByID(ctx, id)
	if err != nil {
		return models.Transaction{}, err
	}

	tx.Description.Status = models.StatusReversed

	saved, err := s.store.Save(ctx, tx)
	if errors.Is(err, storage.ErrNotFound) {
		return models.Transaction{}, fmt.Errorf("%w: id %d", ErrTransactionNotFound, id)
	}
	if err != nil {
		return models.Transaction{}, err
	}

	log := logger.FromContext(ctx)
	log.Info().Int64("transaction_id", id).Msg("payment reversed")

	s.publish(ctx, events.TopicTransactionReversed, saved)
	return saved, nil
}

// publish is best-effort: the write is already committed when it runs.
func (s *Service) publish(ctx context.Context, topic string, tx models.Transaction) {
	if s.publisher == nil {
		return
	}

	event := events.TransactionStatusChanged{
		TransactionID:     *tx.ID,
		Status:            string(tx.Description.Status),
		Amount:            tx.Description.Amount,
		Merchant:          tx.Description.Merchant,
		AuthorizationCode: tx.Description.AuthorizationCode,
		NSU:               tx.Description.NSU,
		OccurredAt:        s.now().UTC(),
	}

	if err := s.publisher.Publish(ctx, topic, fmt.Sprint(*tx.ID), event); err != nil {
		log := logger.FromContext(ctx)
		log.Error().
			Err(err).
			Str("topic", topic).
			Int64("transaction_id", *tx.ID).
			Msg("failed to publish transaction event")
	}
}
