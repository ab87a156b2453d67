package sii

import (
	"errors"
	"fmt"
	"indicadores-backend/internal/indicator"
	"indicadores-backend/internal/locator"
	"indicadores-backend/internal/numparse"
	"indicadores-backend/internal/scrapers/scrapeutil"
	"strconv"
	"time"

	"cloud.google.com/go/civil"
)

const (
	CodeUF  = "UF"
	CodeUTM = "UTM"
	CodeUTA = "UTA"
	CodeIPC = "IPC"
)

// DailyTableID is the id of the table holding the daily UF grid.
const DailyTableID = "table_export"

// ErrTableNotFound is returned when the daily grid is missing from the page.
var ErrTableNotFound = fmt.Errorf("table #%s: %w", DailyTableID, scrapeutil.ErrAnchorNotFound)

// ExtractDailyUF reads the daily UF grid: one row per day of the month (the day number is the
// row header) and exactly 12 cells, one per month of `year`.
//
// Blank cells, dates that do not exist and dates after `today` produce no record.
func ExtractDailyUF(loc locator.Locator, year int, today civil.Date) ([]indicator.Record, error) {
	table, ok := loc.ByID(DailyTableID)
	if !ok {
		return nil, ErrTableNotFound
	}

	var records []indicator.Record
	for _, row := range loc.Relative(table, locator.Rows()) {
		header, ok := locator.First(loc.Relative(row, locator.Children("th")))
		if !ok {
			continue
		}
		day, err := strconv.Atoi(header.Text())
		if err != nil || day < 1 || day > 31 {
			continue
		}

		cells := loc.Relative(row, locator.Cells())
		if len(cells) != 12 {
			continue
		}
		for i, cell := range cells {
			value, ok := numparse.Monetary(cell.Text())
			if !ok {
				continue
			}
			date, ok := indicator.DateOf(year, time.Month(i+1), day)
			if !ok || date.After(today) {
				continue
			}
			records = append(records, indicator.Record{
				Code:   CodeUF,
				Date:   date,
				Value:  value,
				Source: indicator.SourceSII,
			})
		}
	}

	return records, nil
}

var monthlyCodes = []string{CodeUTM, CodeUTA, CodeIPC}

// ExtractMonthlyUnits reads the yearly UTM table: rows keyed by the Spanish month name followed
// by the UTM, UTA and IPC cells. Every record is stamped with the first day of its month,
// months after `today` produce no record.
func ExtractMonthlyUnits(loc locator.Locator, year int, today civil.Date) ([]indicator.Record, error) {
	var records []indicator.Record
	matched := false

	for _, row := range loc.Locate("tr", locator.Any) {
		cells := loc.Relative(row, locator.Children("th, td"))
		if len(cells) < 1+len(monthlyCodes) {
			continue
		}
		month, ok := scrapeutil.SpanishMonth(cells[0].Text())
		if !ok {
			continue
		}
		matched = true

		date, ok := indicator.DateOf(year, month, 1)
		if !ok || date.After(today) {
			continue
		}
		for i, code := range monthlyCodes {
			value, ok := numparse.Monetary(cells[i+1].Text())
			if !ok {
				continue
			}
			records = append(records, indicator.Record{
				Code:   code,
				Date:   date,
				Value:  value,
				Source: indicator.SourceSII,
			})
		}
	}

	if !matched {
		return nil, errors.Join(scrapeutil.ErrAnchorNotFound, fmt.Errorf("no month rows for %d", year))
	}
	return records, nil
}
