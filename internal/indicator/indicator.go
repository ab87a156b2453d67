// Package indicator holds the data model shared by the extractors, the orchestrator and the
// store.
package indicator

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Source is the provider a record was scraped from.
type Source string

const (
	SourceSII      Source = "SII"
	SourcePrevired Source = "Previred"
)

// Record is one data point of an indicator.
//
// `Code` and `Date` form the natural key, `Value` carries no unit of its own, its meaning is
// given by `Code`.
type Record struct {
	Code   string
	Date   civil.Date
	Value  decimal.Decimal
	Source Source
}

// FirstOfMonth returns the first day of the month `date` falls in, it is the date all
// monthly indicators are stamped with.
func FirstOfMonth(date civil.Date) civil.Date {
	return civil.Date{Year: date.Year, Month: date.Month, Day: 1}
}

// DateOf builds a calendar date, ok is false when the combination does not exist
// (ex. February 30th).
func DateOf(year int, month time.Month, day int) (civil.Date, bool) {
	date := civil.Date{Year: year, Month: month, Day: day}
	return date, date.IsValid()
}

// Valid reports whether a record may be persisted: its value must be strictly positive and it
// must not be dated after `today`.
func Valid(record Record, today civil.Date) bool {
	if !record.Value.IsPositive() {
		return false
	}
	if !record.Date.IsValid() || record.Date.After(today) {
		return false
	}
	return record.Code != ""
}

// Filter returns the records that are Valid, it never modifies `records`.
func Filter(records []Record, today civil.Date) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if Valid(r, today) {
			out = append(out, r)
		}
	}
	return out
}

// CountByCode counts how many records exist for every code.
func CountByCode(records []Record) map[string]int {
	counts := make(map[string]int)
	for _, r := range records {
		counts[r.Code]++
	}
	return counts
}
