// Package service runs update cycles over every configured source and answers point lookups.
package service

import (
	"context"
	"errors"
	"fmt"
	"indicadores-backend/internal/assert"
	"indicadores-backend/internal/chrono"
	"indicadores-backend/internal/indicator"
	"indicadores-backend/internal/store"
	"indicadores-backend/internal/telemetry"
	"strings"
	"sync"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	report_update_all    = "update-all"
	report_source_failed = "source.collect"
	report_get_value     = "get-value"
)

// ErrNoData is returned by UpdateAll when no source produced a single candidate record.
var ErrNoData = errors.New("no data obtained")

// Source is one provider of indicator records.
type Source interface {
	// Name identifies the source in summaries and telemetry.
	Name() string
	// Collect fetches and extracts everything the source publishes as of `today`. A source
	// may return records alongside an error when only part of it failed.
	Collect(ctx context.Context, today civil.Date) ([]indicator.Record, error)
}

// SourceResult is the outcome of one source in an update cycle.
type SourceResult struct {
	Name       string
	Candidates int
	Err        error
}

// Summary is the outcome of an update cycle.
type Summary struct {
	// Total is the number of records that were attempted, after the value and date filter and
	// before deduplication by the store.
	Total int
	// Inserted is the number of records that were new.
	Inserted int
	// Codes counts the attempted records per code.
	Codes   map[string]int
	Sources []SourceResult
}

type counters struct {
	candidates metric.Int64Counter
	inserted   metric.Int64Counter
	failures   metric.Int64Counter
}

func newCounters() (counters, error) {
	meter := otel.Meter("indicadores-backend/internal/service")

	candidates, err := meter.Int64Counter(
		"indicadores.records.candidates",
		metric.WithDescription("Records extracted from the sources before filtering."),
	)
	if err != nil {
		return counters{}, err
	}
	inserted, err := meter.Int64Counter(
		"indicadores.records.inserted",
		metric.WithDescription("Records that were new to the store."),
	)
	if err != nil {
		return counters{}, err
	}
	failures, err := meter.Int64Counter(
		"indicadores.source.failures",
		metric.WithDescription("Update cycles in which a source failed, fully or in part."),
	)
	if err != nil {
		return counters{}, err
	}

	return counters{
		candidates: candidates,
		inserted:   inserted,
		failures:   failures,
	}, nil
}

type Service struct {
	sources  []Source
	store    store.Store
	time     chrono.TimeAPI
	tel      telemetry.API
	counters counters
}

// NewService creates a Service, records of `sources` are merged in the order given so that
// when two sources report the same key the first one wins.
func NewService(st store.Store, time chrono.TimeAPI, tel telemetry.API, sources ...Source) (Service, error) {
	assert.NotNil(st)
	assert.NotNil(time)
	assert.NotNil(tel)

	c, err := newCounters()
	if err != nil {
		return Service{}, fmt.Errorf("create counters: %w", err)
	}
	return Service{
		sources:  sources,
		store:    st,
		time:     time,
		tel:      telemetry.NewScopedAPI("service", tel),
		counters: c,
	}, nil
}

func (s Service) collect(ctx context.Context, source Source, today civil.Date) (records []indicator.Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
			records = nil
		}
	}()
	return source.Collect(ctx, today)
}

// UpdateAll runs every source, persists the valid records and reports what happened.
//
// A source that fails does not fail the cycle as long as another one produced something, the
// only error caused by the sources themselves is ErrNoData.
func (s Service) UpdateAll(ctx context.Context) (Summary, error) {
	today := chrono.Today(s.time)

	results := make([][]indicator.Record, len(s.sources))
	summary := Summary{Sources: make([]SourceResult, len(s.sources))}

	wg := sync.WaitGroup{}
	for i, source := range s.sources {
		wg.Add(1)
		go func(i int, source Source) {
			defer wg.Done()
			records, err := s.collect(ctx, source, today)
			results[i] = records
			summary.Sources[i] = SourceResult{
				Name:       source.Name(),
				Candidates: len(records),
				Err:        err,
			}
		}(i, source)
	}
	wg.Wait()

	var candidates []indicator.Record
	for i, result := range summary.Sources {
		candidates = append(candidates, results[i]...)

		attrs := metric.WithAttributes(attribute.String("source", result.Name))
		s.counters.candidates.Add(ctx, int64(result.Candidates), attrs)
		if result.Err != nil {
			s.counters.failures.Add(ctx, 1, attrs)
			s.tel.ReportBroken(report_source_failed, result.Err, result.Name)
		}
	}

	if len(candidates) == 0 {
		s.tel.ReportBroken(report_update_all, ErrNoData)
		return summary, ErrNoData
	}

	attempted := indicator.Filter(candidates, today)
	summary.Total = len(attempted)
	summary.Codes = indicator.CountByCode(attempted)

	inserted, err := s.store.SaveAll(ctx, attempted)
	if err != nil {
		s.tel.ReportBroken(report_update_all, err)
		return summary, fmt.Errorf("save records: %w", err)
	}
	summary.Inserted = inserted
	s.counters.inserted.Add(ctx, int64(inserted))

	s.tel.ReportCount(report_update_all, int64(inserted))
	s.tel.ReportDebug(
		"update finished",
		"candidates", len(candidates),
		"attempted", summary.Total,
		"inserted", inserted,
	)
	return summary, nil
}

// NormalizeCode is the canonical form of a code given by a caller: trimmed and uppercased.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// GetValue returns the stored value of `code` at `date`, store.ErrNotFound if there is none.
func (s Service) GetValue(ctx context.Context, code string, date civil.Date) (decimal.Decimal, error) {
	value, err := s.store.Get(ctx, NormalizeCode(code), date)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		s.tel.ReportBroken(report_get_value, err, code, date.String())
	}
	return value, err
}
