package indicator

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestValid(t *testing.T) {
	today := civil.Date{Year: 2024, Month: time.May, Day: 15}

	cases := []struct {
		name     string
		record   Record
		expected bool
	}{
		{
			name:     "positive value today",
			record:   Record{Code: "UF", Date: today, Value: decimal.RequireFromString("37000")},
			expected: true,
		},
		{
			name:     "zero value",
			record:   Record{Code: "UF", Date: today, Value: decimal.Zero},
			expected: false,
		},
		{
			name:     "negative value",
			record:   Record{Code: "IPC", Date: today, Value: decimal.RequireFromString("-0.2")},
			expected: false,
		},
		{
			name:     "tomorrow",
			record:   Record{Code: "UF", Date: today.AddDays(1), Value: decimal.RequireFromString("37000")},
			expected: false,
		},
		{
			name:     "impossible date",
			record:   Record{Code: "UF", Date: civil.Date{Year: 2024, Month: time.February, Day: 30}, Value: decimal.NewFromInt(1)},
			expected: false,
		},
		{
			name:     "missing code",
			record:   Record{Date: today, Value: decimal.NewFromInt(1)},
			expected: false,
		},
	}

	for _, test := range cases {
		require.Equal(t, test.expected, Valid(test.record, today), test.name)
	}
}

func TestFilterDoesNotAlias(t *testing.T) {
	today := civil.Date{Year: 2024, Month: time.May, Day: 15}
	records := []Record{
		{Code: "UF", Date: today, Value: decimal.Zero},
		{Code: "UTM", Date: today, Value: decimal.NewFromInt(65000)},
	}

	filtered := Filter(records, today)
	require.Len(t, filtered, 1)
	require.Equal(t, "UTM", filtered[0].Code)
	require.Equal(t, "UF", records[0].Code)
}

func TestCountByCode(t *testing.T) {
	date := civil.Date{Year: 2024, Month: time.May, Day: 1}
	counts := CountByCode([]Record{
		{Code: "UF", Date: date},
		{Code: "UF", Date: date.AddDays(1)},
		{Code: "UTM", Date: date},
	})
	require.Equal(t, map[string]int{"UF": 2, "UTM": 1}, counts)
}

func TestDateOf(t *testing.T) {
	_, ok := DateOf(2023, time.February, 29)
	require.False(t, ok)
	date, ok := DateOf(2024, time.February, 29)
	require.True(t, ok)
	require.Equal(t, civil.Date{Year: 2024, Month: time.February, Day: 1}, FirstOfMonth(date))
}
