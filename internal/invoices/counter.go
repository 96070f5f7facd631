package invoices

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mknind/backoffice/pkg/config"
	"github.com/mknind/backoffice/pkg/db/models"
)

// SeedFunc returns the last number already handed out, used to initialise
// a counter that has no state yet.
type SeedFunc func(ctx context.Context) (int64, error)

// Counter hands out strictly increasing numbers per name.
type Counter interface {
	Next(ctx context.Context, name string, seed SeedFunc) (int64, error)
	// Reset drops the counter state so the next call re-seeds.
	Reset(ctx context.Context, name string) error
	Kind() string
}

type redisStore interface {
	SeededIncr(ctx context.Context, key string, seed func(context.Context) (int64, error)) (int64, error)
	CounterKey(name string) string
	Del(ctx context.Context, keys ...string) error
}

// RedisCounter keeps the counter in a redis key: SETNX with the seed,
// then INCR.
type RedisCounter struct {
	store redisStore
}

func NewRedisCounter(store redisStore) *RedisCounter {
	return &RedisCounter{store: store}
}

func (c *RedisCounter) Next(ctx context.Context, name string, seed SeedFunc) (int64, error) {
	return c.store.SeededIncr(ctx, c.store.CounterKey(name), seed)
}

func (c *RedisCounter) Reset(ctx context.Context, name string) error {
	return c.store.Del(ctx, c.store.CounterKey(name))
}

func (c *RedisCounter) Kind() string { return config.InvoiceCounterRedis }

// DBCounter keeps the counter in the invoice_counters table. The
// increment is a single UPDATE so concurrent callers serialise on the row.
type DBCounter struct {
	db *gorm.DB
}

func NewDBCounter(db *gorm.DB) *DBCounter {
	return &DBCounter{db: db}
}

func (c *DBCounter) Next(ctx context.Context, name string, seed SeedFunc) (int64, error) {
	var existing int64
	err := c.db.WithContext(ctx).Model(&models.InvoiceCounter{}).Where("name = ?", name).Count(&existing).Error
	if err != nil {
		return 0, fmt.Errorf("read counter %s: %w", name, err)
	}
	if existing == 0 {
		start, err := seed(ctx)
		if err != nil {
			return 0, fmt.Errorf("seed counter %s: %w", name, err)
		}
		row := models.InvoiceCounter{Name: name, Value: start}
		if err := c.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
			return 0, fmt.Errorf("seed counter %s: %w", name, err)
		}
	}

	var next int64
	err = c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.InvoiceCounter{}).
			Where("name = ?", name).
			Update("value", gorm.Expr("value + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errors.New("counter row vanished")
		}
		var row models.InvoiceCounter
		if err := tx.Where("name = ?", name).First(&row).Error; err != nil {
			return err
		}
		next = row.Value
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("increment counter %s: %w", name, err)
	}
	return next, nil
}

func (c *DBCounter) Reset(ctx context.Context, name string) error {
	return c.db.WithContext(ctx).Delete(&models.InvoiceCounter{}, "name = ?", name).Error
}

func (c *DBCounter) Kind() string { return config.InvoiceCounterDB }

// LatestCounter re-derives the number from the last order on every call.
// It is not atomic; the unique invoice index is its only guard.
type LatestCounter struct{}

func (LatestCounter) Next(ctx context.Context, _ string, seed SeedFunc) (int64, error) {
	last, err := seed(ctx)
	if err != nil {
		return 0, err
	}
	return last + 1, nil
}

func (LatestCounter) Reset(context.Context, string) error { return nil }

func (LatestCounter) Kind() string { return config.InvoiceCounterLatest }
