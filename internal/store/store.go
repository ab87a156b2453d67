// Package store defines the durable, idempotent home of indicator records.
package store

import (
	"context"
	"errors"
	"indicadores-backend/internal/indicator"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned by Get for a key that was never persisted.
var ErrNotFound = errors.New("indicator not found")

// Store persists records under the natural key (code, date).
//
// The first write of a key wins, later writes of the same key are dropped rather than
// updating the stored value.
type Store interface {
	// EnsureSchema creates whatever the store needs if it is absent, it is safe to call more
	// than once and must be called before Get or SaveAll.
	EnsureSchema(ctx context.Context) error
	// Get returns the stored value of `code` at `date` or ErrNotFound.
	Get(ctx context.Context, code string, date civil.Date) (decimal.Decimal, error)
	// SaveAll inserts every record with a strictly positive value whose key is not yet stored
	// and returns how many were inserted.
	SaveAll(ctx context.Context, records []indicator.Record) (int, error)
}
