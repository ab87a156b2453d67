package previred

import (
	"context"
	"indicadores-backend/internal/indicator"
	"indicadores-backend/internal/locator"
	"indicadores-backend/internal/scrapers/scrapeutil"
	"indicadores-backend/internal/telemetry"

	"cloud.google.com/go/civil"
)

const (
	report_extract_units                  = "extract.units"
	report_extract_minimum_income         = "extract.minimum-income"
	report_extract_sis_rate               = "extract.sis-rate"
	report_extract_taxable_caps           = "extract.taxable-caps"
	report_extract_afp_rates              = "extract.afp-rates"
	report_extract_unemployment_insurance = "extract.unemployment-insurance"
	report_source_collect                 = "source.collect"
)

// Extractor reads one family of indicators out of the page, every record it returns is
// stamped with `date`.
type Extractor func(loc locator.Locator, date civil.Date) ([]indicator.Record, error)

type rule struct {
	id      string
	extract Extractor
}

// the order records are emitted in
var rules = []rule{
	{id: report_extract_units, extract: ExtractUnits},
	{id: report_extract_minimum_income, extract: ExtractMinimumIncome},
	{id: report_extract_sis_rate, extract: ExtractSISRate},
	{id: report_extract_taxable_caps, extract: ExtractTaxableCaps},
	{id: report_extract_afp_rates, extract: ExtractAFPRates},
	{id: report_extract_unemployment_insurance, extract: ExtractUnemploymentInsurance},
}

// Source collects the monthly Previred indicators, all of them are stamped with the first day
// of the current month.
type Source struct {
	client *Client
	tel    telemetry.API
}

func NewSource(client *Client, tel telemetry.API) Source {
	return Source{
		client: client,
		tel:    telemetry.NewScopedAPI("previred", tel),
	}
}

func (s Source) Name() string {
	return string(indicator.SourcePrevired)
}

// Collect fetches the page once and runs every extractor over it, an extractor that fails
// does not affect the others.
func (s Source) Collect(ctx context.Context, today civil.Date) ([]indicator.Record, error) {
	doc, err := s.client.Page(ctx)
	if err != nil {
		s.tel.ReportBroken(report_source_collect, err)
		return nil, err
	}
	return s.extract(doc, indicator.FirstOfMonth(today)), nil
}

func (s Source) extract(loc locator.Locator, date civil.Date) []indicator.Record {
	var records []indicator.Record
	for _, r := range rules {
		records = append(records, scrapeutil.Extract(s.tel, r.id, func() ([]indicator.Record, error) {
			return r.extract(loc, date)
		})...)
	}
	s.tel.ReportCount(report_source_collect, int64(len(records)))
	return records
}
