// Package cached puts a read-through memory cache in front of another store.Store.
package cached

import (
	"context"
	"fmt"
	"indicadores-backend/internal/indicator"
	"indicadores-backend/internal/store"
	"time"

	"cloud.google.com/go/civil"
	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
)

// Store caches the values returned by Get.
//
// Only hits are cached: stored values never change (first write wins) so a cached hit can not
// go stale, while a miss may be filled by the next update.
type Store struct {
	inner store.Store
	cache *cache.Cache
}

var _ store.Store = Store{}

func New(inner store.Store, ttl time.Duration) Store {
	return Store{
		inner: inner,
		cache: cache.New(ttl, 2*ttl),
	}
}

func key(code string, date civil.Date) string {
	return fmt.Sprintf("%s@%s", code, date)
}

func (s Store) EnsureSchema(ctx context.Context) error {
	return s.inner.EnsureSchema(ctx)
}

func (s Store) Get(ctx context.Context, code string, date civil.Date) (decimal.Decimal, error) {
	k := key(code, date)
	if cached, ok := s.cache.Get(k); ok {
		return cached.(decimal.Decimal), nil
	}
	value, err := s.inner.Get(ctx, code, date)
	if err != nil {
		return decimal.Decimal{}, err
	}
	s.cache.SetDefault(k, value)
	return value, nil
}

func (s Store) SaveAll(ctx context.Context, records []indicator.Record) (int, error) {
	return s.inner.SaveAll(ctx, records)
}

// ItemCount is the number of cached values, expired ones included until they are cleaned up.
func (s Store) ItemCount() int {
	return s.cache.ItemCount()
}
