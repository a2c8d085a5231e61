// Package rediscache keeps recently read or written transactions in Redis in front of
// another TransactionStore. Redis failures never fail a request; the inner store stays
// the source of truth.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	interfaces "github.com/sheikh-saqib/card-payments-api/internal/interfaces"
	"github.com/sheikh-saqib/card-payments-api/internal/logger"
	"github.com/sheikh-saqib/card-payments-api/internal/models"
)

const keyPrefix = "transaction:"

type CachedTransactionStore struct {
	inner interfaces.TransactionStore
	rdb   *redis.Client
	ttl   time.Duration
}

func NewCachedTransactionStore(inner interfaces.TransactionStore, rdb *redis.Client, ttl time.Duration) *CachedTransactionStore {
	return &CachedTransactionStore{
		inner: inner,
		rdb:   rdb,
		ttl:   ttl,
	}
}

// Save writes through: the inner store first, then the cache entry is refreshed.
func (c *CachedTransactionStore) Save(ctx context.Context, tx models.Transaction) (models.Transaction, error) {
	saved, err := c.inner.Save(ctx, tx)
	if err != nil {
		// an update may or may not have reached the inner store
		if tx.ID != nil {
			c.evict(ctx, *tx.ID)
		}
		return models.Transaction{}, err
	}

	c.put(ctx, saved)
	return saved, nil
}

func (c *CachedTransactionStore) FindByID(ctx context.Context, id int64) (models.Transaction, error) {
	data, err := c.rdb.Get(ctx, key(id)).Bytes()
	if err == nil {
		var tx models.Transaction
		if err := json.Unmarshal(data, &tx); err == nil {
			return tx, nil
		}
		c.evict(ctx, id)
	} else if !errors.Is(err, redis.Nil) {
		log := logger.FromContext(ctx)
		log.Warn().Err(err).Int64("transaction_id", id).Msg("cache read failed")
	}

	tx, err := c.inner.FindByID(ctx, id)
	if err != nil {
		return models.Transaction{}, err
	}

	c.put(ctx, tx)
	return tx, nil
}

// FindAll always reads the inner store.
func (c *CachedTransactionStore) FindAll(ctx context.Context) ([]models.Transaction, error) {
	return c.inner.FindAll(ctx)
}

func (c *CachedTransactionStore) put(ctx context.Context, tx models.Transaction) {
	if tx.ID == nil {
		return
	}

	data, err := json.Marshal(tx)
	if err != nil {
		return
	}

	if err := c.rdb.Set(ctx, key(*tx.ID), data, c.ttl).Err(); err != nil {
		log := logger.FromContext(ctx)
		log.Warn().Err(err).Int64("transaction_id", *tx.ID).Msg("cache write failed")
	}
}

func (c *CachedTransactionStore) evict(ctx context.Context, id int64) {
	if err := c.rdb.Del(ctx, key(id)).Err(); err != nil {
		log := logger.FromContext(ctx)
		log.Warn().Err(err).Int64("transaction_id", id).Msg("cache eviction failed")
	}
}

func key(id int64) string {
	return fmt.Sprintf("%s%d", keyPrefix, id)
}

var _ interfaces.TransactionStore = (*CachedTransactionStore)(nil)
