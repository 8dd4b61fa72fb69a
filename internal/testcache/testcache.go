package testcache

import (
	"time"

	"github.com/go-redis/cache/v8"
	c "github.com/tamasbrandstadter/account-ledger/internal/cache"
)

// Open returns a balances cache backed only by the in-process LFU, so tests
// run without a redis server.
func Open() *c.Redis {
	b := cache.New(&cache.Options{
		LocalCache: cache.NewTinyLFU(1000, time.Hour),
	})

	return &c.Redis{
		Balances: b,
		TTL:      time.Hour,
	}
}
