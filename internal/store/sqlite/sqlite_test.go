package sqlite

import (
	"context"
	"indicadores-backend/internal/indicator"
	"indicadores-backend/internal/store"
	"indicadores-backend/internal/telemetry"
	configlibsql "indicadores-backend/lib/configutil/libsql"
	"sync"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newStore(t testing.TB) Store {
	t.Helper()
	conn, err := configlibsql.Struct{File: configlibsql.Memory}.OpenDB()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	s := New(conn, telemetry.NewRecorder(t))
	require.NoError(t, s.EnsureSchema(context.Background()))
	return s
}

func uf(date civil.Date, value string) indicator.Record {
	return indicator.Record{
		Code:   "UF",
		Date:   date,
		Value:  decimal.RequireFromString(value),
		Source: indicator.SourceSII,
	}
}

var firstOfMay = civil.Date{Year: 2024, Month: 5, Day: 1}

func TestEnsureSchemaIsIdempotent(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.EnsureSchema(ctx))
	_, err := s.SaveAll(ctx, []indicator.Record{uf(firstOfMay, "37000")})
	require.NoError(t, err)
	require.NoError(t, s.EnsureSchema(ctx))

	value, err := s.Get(ctx, "UF", firstOfMay)
	require.NoError(t, err)
	require.Equal(t, "37000", value.String())
}

func TestFirstWriteWins(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	inserted, err := s.SaveAll(ctx, []indicator.Record{uf(firstOfMay, "37000")})
	require.NoError(t, err)
	require.Equal(t, 1, inserted)

	inserted, err = s.SaveAll(ctx, []indicator.Record{uf(firstOfMay, "38000")})
	require.NoError(t, err)
	require.Zero(t, inserted)

	value, err := s.Get(ctx, "UF", firstOfMay)
	require.NoError(t, err)
	require.Equal(t, "37000", value.String())

	var rows int
	require.NoError(t, s.conn.QueryRow("select count(*) from indicators").Scan(&rows))
	require.Equal(t, 1, rows)
}

func TestDuplicatesWithinOneBatch(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	inserted, err := s.SaveAll(ctx, []indicator.Record{
		uf(firstOfMay, "37000"),
		uf(firstOfMay, "36000"),
		uf(civil.Date{Year: 2024, Month: 5, Day: 2}, "37001.52"),
	})
	require.NoError(t, err)
	require.Equal(t, 2, inserted)

	value, err := s.Get(ctx, "UF", firstOfMay)
	require.NoError(t, err)
	require.Equal(t, "37000", value.String())
}

func TestNonPositiveValuesAreNeverStored(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	inserted, err := s.SaveAll(ctx, []indicator.Record{
		uf(firstOfMay, "0"),
		uf(civil.Date{Year: 2024, Month: 5, Day: 2}, "-1"),
	})
	require.NoError(t, err)
	require.Zero(t, inserted)

	_, err = s.Get(ctx, "UF", firstOfMay)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestGet(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	_, err := s.Get(ctx, "UF", firstOfMay)
	require.ErrorIs(t, err, store.ErrNotFound)

	records := []indicator.Record{
		uf(firstOfMay, "37571.86"),
		{
			Code:   "AFP_CAPITAL_TRAB",
			Date:   firstOfMay,
			Value:  decimal.RequireFromString("11.44"),
			Source: indicator.SourcePrevired,
		},
		// widest value that survives the REAL storage class
		{
			Code:   "UTA",
			Date:   firstOfMay,
			Value:  decimal.RequireFromString("7930752.12345678"),
			Source: indicator.SourceSII,
		},
	}
	_, err = s.SaveAll(ctx, records)
	require.NoError(t, err)

	for _, r := range records {
		value, err := s.Get(ctx, r.Code, r.Date)
		require.NoError(t, err)
		require.True(t, r.Value.Equal(value), "%s: %s != %s", r.Code, r.Value, value)
	}

	// a key is a code and a date, neither alone
	_, err = s.Get(ctx, "AFP_CAPITAL_TRAB", civil.Date{Year: 2024, Month: 4, Day: 1})
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.Get(ctx, "UTM", firstOfMay)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestGetRoundsBeyondDoublePrecision(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	stored := decimal.RequireFromString("1234567890.1234567891")
	_, err := s.SaveAll(ctx, []indicator.Record{{
		Code:   "UF",
		Date:   firstOfMay,
		Value:  stored,
		Source: indicator.SourceSII,
	}})
	require.NoError(t, err)

	value, err := s.Get(ctx, "UF", firstOfMay)
	require.NoError(t, err)
	require.False(t, stored.Equal(value))
	require.True(t, stored.Round(6).Equal(value.Round(6)), "%s != %s", stored, value)
}

func TestConcurrentWriters(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	totals := make([]int, 8)
	errs := make([]error, len(totals))
	for i := range totals {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			totals[i], errs[i] = s.SaveAll(ctx, []indicator.Record{uf(firstOfMay, "37000")})
		}(i)
	}
	wg.Wait()

	sum := 0
	for i, n := range totals {
		require.NoError(t, errs[i])
		sum += n
	}
	require.Equal(t, 1, sum)
}
