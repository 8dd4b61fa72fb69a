package source

import (
	"context"

	rcache "github.com/go-redis/cache/v8"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/tamasbrandstadter/account-ledger/internal/cache"
)

// Cache reads balances from the redis balances cache.
type Cache struct {
	Redis *cache.Redis
}

func (c Cache) FetchBalance(ctx context.Context, id uuid.UUID) (float64, bool, error) {
	var balance float64
	if err := c.Redis.Balances.Get(ctx, id.String(), &balance); err != nil {
		if err == rcache.ErrCacheMiss {
			return 0, false, nil
		}
		return 0, false, errors.Wrap(err, "get balance from cache")
	}

	return balance, true, nil
}

func (c Cache) Store(ctx context.Context, id uuid.UUID, balance float64) error {
	err := c.Redis.Balances.Set(&rcache.Item{
		Ctx:   ctx,
		Key:   id.String(),
		Value: balance,
		TTL:   c.Redis.TTL,
	})

	return errors.Wrap(err, "set balance in cache")
}
