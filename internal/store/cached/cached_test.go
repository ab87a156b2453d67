package cached

import (
	"context"
	"indicadores-backend/internal/indicator"
	"indicadores-backend/internal/store"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type countingStore struct {
	values map[string]decimal.Decimal
	gets   int
}

func (s *countingStore) EnsureSchema(context.Context) error {
	return nil
}

func (s *countingStore) Get(_ context.Context, code string, date civil.Date) (decimal.Decimal, error) {
	s.gets++
	value, ok := s.values[key(code, date)]
	if !ok {
		return decimal.Decimal{}, store.ErrNotFound
	}
	return value, nil
}

func (s *countingStore) SaveAll(_ context.Context, records []indicator.Record) (int, error) {
	inserted := 0
	for _, r := range records {
		k := key(r.Code, r.Date)
		if _, ok := s.values[k]; ok {
			continue
		}
		s.values[k] = r.Value
		inserted++
	}
	return inserted, nil
}

func TestReadThrough(t *testing.T) {
	ctx := context.Background()
	date := civil.Date{Year: 2024, Month: 5, Day: 1}
	inner := &countingStore{values: map[string]decimal.Decimal{}}
	s := New(inner, time.Minute)

	_, err := s.Get(ctx, "UF", date)
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.Get(ctx, "UF", date)
	require.ErrorIs(t, err, store.ErrNotFound)
	// misses are not cached
	require.Equal(t, 2, inner.gets)
	require.Zero(t, s.ItemCount())

	inserted, err := s.SaveAll(ctx, []indicator.Record{{
		Code:   "UF",
		Date:   date,
		Value:  decimal.RequireFromString("37000"),
		Source: indicator.SourceSII,
	}})
	require.NoError(t, err)
	require.Equal(t, 1, inserted)

	for i := 0; i < 3; i++ {
		value, err := s.Get(ctx, "UF", date)
		require.NoError(t, err)
		require.Equal(t, "37000", value.String())
	}
	require.Equal(t, 3, inner.gets)
	require.Equal(t, 1, s.ItemCount())
}
