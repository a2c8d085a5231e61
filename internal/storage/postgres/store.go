package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	interfaces "github.com/sheikh-saqib/card-payments-api/internal/interfaces"
	"github.com/sheikh-saqib/card-payments-api/internal/models"
	"github.com/sheikh-saqib/card-payments-api/internal/storage"
)

type PostgresTransactionStore struct {
	db *sql.DB
}

func NewPostgresTransactionStore(db *sql.DB) *PostgresTransactionStore {
	return &PostgresTransactionStore{
		db: db,
	}
}

const selectTransactions = `SELECT t.id, t.card,
	d.id, d.amount, d.occurred_at, d.merchant, d.authorization_code, d.nsu, d.status,
	p.id, p.type, p.installments
	FROM transactions t
	JOIN descriptions d ON d.id = t.description_id
	JOIN payment_methods p ON p.id = t.payment_method_id`

// Save inserts or updates the transaction and its two child rows in one SQL transaction.
func (p *PostgresTransactionStore) Save(ctx context.Context, tx models.Transaction) (saved models.Transaction, err error) {
	dbTx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Transaction{}, err
	}

	defer func() {
		if err != nil {
			dbTx.Rollback()
		}
	}()

	if tx.ID == nil {
		err = p.insert(ctx, dbTx, &tx)
	} else {
		err = p.update(ctx, dbTx, &tx)
	}
	if err != nil {
		return models.Transaction{}, translateError(err)
	}

	if err = dbTx.Commit(); err != nil {
		return models.Transaction{}, translateError(err)
	}
	return tx, nil
}

func (p *PostgresTransactionStore) insert(ctx context.Context, dbTx *sql.Tx, tx *models.Transaction) error {
	const insertPaymentMethod = `INSERT INTO payment_methods (type, installments)
	VALUES ($1,$2) RETURNING id`
	const insertDescription = `INSERT INTO descriptions (amount, occurred_at, merchant, authorization_code, nsu, status)
	VALUES ($1,$2,$3,$4,$5,$6) RETURNING id`
	const insertTransaction = `INSERT INTO transactions (card, description_id, payment_method_id)
	VALUES ($1,$2,$3) RETURNING id`

	var paymentMethodID, descriptionID, transactionID int64

	pm := tx.PaymentMethod
	if err := dbTx.QueryRowContext(ctx, insertPaymentMethod, pm.Type, pm.Installments).Scan(&paymentMethodID); err != nil {
		return err
	}

	d := tx.Description
	err := dbTx.QueryRowContext(ctx, insertDescription,
		d.Amount, d.Timestamp, d.Merchant, nullString(d.AuthorizationCode), nullString(d.NSU), nullString(string(d.Status)),
	).Scan(&descriptionID)
	if err != nil {
		return err
	}

	if err := dbTx.QueryRowContext(ctx, insertTransaction, tx.Card, descriptionID, paymentMethodID).Scan(&transactionID); err != nil {
		return err
	}

	tx.ID = &transactionID
	tx.Description.ID = &descriptionID
	tx.PaymentMethod.ID = &paymentMethodID
	return nil
}

// update rewrites the mutable columns. Child identities are taken from the stored row.
func (p *PostgresTransactionStore) update(ctx context.Context, dbTx *sql.Tx, tx *models.Transaction) error {
	const updateTransaction = `UPDATE transactions SET card = $1 WHERE id = $2
	RETURNING description_id, payment_method_id`
	const updateDescription = `UPDATE descriptions
	SET amount = $1, occurred_at = $2, merchant = $3, authorization_code = $4, nsu = $5, status = $6
	WHERE id = $7`
	const updatePaymentMethod = `UPDATE payment_methods SET type = $1, installments = $2 WHERE id = $3`

	var descriptionID, paymentMethodID int64
	err := dbTx.QueryRowContext(ctx, updateTransaction, tx.Card, *tx.ID).Scan(&descriptionID, &paymentMethodID)
	if err == sql.ErrNoRows {
		return storage.ErrNotFound
	}
	if err != nil {
		return err
	}

	d := tx.Description
	_, err = dbTx.ExecContext(ctx, updateDescription,
		d.Amount, d.Timestamp, d.Merchant, nullString(d.AuthorizationCode), nullString(d.NSU), nullString(string(d.Status)),
		descriptionID,
	)
	if err != nil {
		return err
	}

	pm := tx.PaymentMethod
	if _, err := dbTx.ExecContext(ctx, updatePaymentMethod, pm.Type, pm.Installments, paymentMethodID); err != nil {
		return err
	}

	tx.Description.ID = &descriptionID
	tx.PaymentMethod.ID = &paymentMethodID
	return nil
}

func (p *PostgresTransactionStore) FindByID(ctx context.Context, id int64) (models.Transaction, error) {
	row := p.db.QueryRowContext(ctx, selectTransactions+` WHERE t.id = $1`, id)

	tx, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return models.Transaction{}, storage.ErrNotFound
	}
	if err != nil {
		return models.Transaction{}, err
	}
	return tx, nil
}

func (p *PostgresTransactionStore) FindAll(ctx context.Context) ([]models.Transaction, error) {
	rows, err := p.db.QueryContext(ctx, selectTransactions+` ORDER BY t.id`)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	transactions := []models.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return transactions, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(s scanner) (models.Transaction, error) {
	var (
		tx                                 models.Transaction
		id, descriptionID, paymentMethodID int64
		authorizationCode, nsu, status     sql.NullString
	)

	err := s.Scan(
		&id, &tx.Card,
		&descriptionID, &tx.Description.Amount, &tx.Description.Timestamp, &tx.Description.Merchant,
		&authorizationCode, &nsu, &status,
		&paymentMethodID, &tx.PaymentMethod.Type, &tx.PaymentMethod.Installments,
	)
	if err != nil {
		return models.Transaction{}, err
	}

	tx.ID = &id
	tx.Description.ID = &descriptionID
	tx.Description.AuthorizationCode = authorizationCode.String
	tx.Description.NSU = nsu.String
	tx.Description.Status = models.Status(status.String)
	tx.PaymentMethod.ID = &paymentMethodID
	return tx, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// translateError turns integrity (class 23) and data (class 22) violations into
// storage.ConstraintError, keeping the driver error underneath.
func translateError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch pqErr.Code.Class() {
	case "22", "23":
		field := pqErr.Column
		if field == "" {
			field = pqErr.Constraint
		}
		return &storage.ConstraintError{
			Field:  field,
			Reason: fmt.Sprintf("%s (%s)", pqErr.Message, pqErr.Code.Name()),
			Err:    err,
		}
	}
	return err
}

var _ interfaces.TransactionStore = (*PostgresTransactionStore)(nil)
