package sii

import (
	"context"
	"errors"
	"indicadores-backend/internal/indicator"
	"indicadores-backend/internal/locator"
	"indicadores-backend/internal/scrapers/scrapeutil"
	"indicadores-backend/internal/telemetry"

	"cloud.google.com/go/civil"
)

const (
	report_extract_daily_uf      = "extract.daily-uf"
	report_extract_monthly_units = "extract.monthly-units"
	report_source_collect        = "source.collect"
)

// DefaultYears is how many years of history are collected, the current one included.
const DefaultYears = 2

// Source collects every SII indicator: the daily UF grid and the monthly UTM / UTA / IPC table
// for the current year and the `years-1` years before it.
type Source struct {
	client *Client
	years  int
	tel    telemetry.API
}

func NewSource(client *Client, years int, tel telemetry.API) Source {
	if years < 1 {
		years = DefaultYears
	}
	return Source{
		client: client,
		years:  years,
		tel:    telemetry.NewScopedAPI("sii", tel),
	}
}

func (s Source) Name() string {
	return string(indicator.SourceSII)
}

type unit struct {
	year     int
	reportId string
	page     func(ctx context.Context, year int) (locator.Document, error)
	extract  func(loc locator.Locator, year int, today civil.Date) ([]indicator.Record, error)
}

// Collect fetches and extracts every page, newest year first. A page that cannot be fetched
// does not stop the others: the returned error joins every fetch failure and the records of
// the pages that did succeed are returned alongside it.
func (s Source) Collect(ctx context.Context, today civil.Date) ([]indicator.Record, error) {
	var units []unit
	for i := 0; i < s.years; i++ {
		units = append(units, unit{
			year:     today.Year - i,
			reportId: report_extract_daily_uf,
			page:     s.client.DailyUFPage,
			extract:  ExtractDailyUF,
		})
	}
	for i := 0; i < s.years; i++ {
		units = append(units, unit{
			year:     today.Year - i,
			reportId: report_extract_monthly_units,
			page:     s.client.MonthlyUnitsPage,
			extract:  ExtractMonthlyUnits,
		})
	}

	var records []indicator.Record
	var errs []error
	for _, u := range units {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}

		doc, err := u.page(ctx, u.year)
		if err != nil {
			s.tel.ReportBroken(report_source_collect, err, u.year)
			errs = append(errs, err)
			continue
		}
		extracted := scrapeutil.Extract(s.tel, u.reportId, func() ([]indicator.Record, error) {
			return u.extract(doc, u.year, today)
		}, u.year)
		records = append(records, extracted...)
	}

	s.tel.ReportCount(report_source_collect, int64(len(records)))
	return records, errors.Join(errs...)
}
