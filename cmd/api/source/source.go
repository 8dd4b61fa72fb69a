package source

import (
	"context"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Func adapts a plain function to account.BalanceSource.
type Func func(ctx context.Context, id uuid.UUID) (float64, bool, error)

func (f Func) FetchBalance(ctx context.Context, id uuid.UUID) (float64, bool, error) {
	return f(ctx, id)
}

// CachedPostgres looks a balance up in the cache first and falls back to
// the database. Balances found in the database are written to the cache.
type CachedPostgres struct {
	Cache    Cache
	Postgres Postgres
}

func (cp CachedPostgres) FetchBalance(ctx context.Context, id uuid.UUID) (float64, bool, error) {
	balance, ok, err := cp.Cache.FetchBalance(ctx, id)
	if err != nil {
		log.WithError(err).Warnf("failed to get balance from cache for account id %s", id)
	} else if ok {
		return balance, true, nil
	}

	balance, ok, err = cp.Postgres.FetchBalance(ctx, id)
	if err != nil || !ok {
		return 0, ok, err
	}

	if err := cp.Cache.Store(ctx, id, balance); err != nil {
		log.WithError(err).Warnf("failed to cache balance for account id %s", id)
	}

	return balance, true, nil
}
