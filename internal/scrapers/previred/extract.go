package previred

import (
	"errors"
	"fmt"
	"indicadores-backend/internal/codegen"
	"indicadores-backend/internal/indicator"
	"indicadores-backend/internal/locator"
	"indicadores-backend/internal/numparse"
	"indicadores-backend/internal/scrapers/scrapeutil"

	"cloud.google.com/go/civil"
)

const (
	CodeUTM             = "UTM"
	CodeUTA             = "UTA"
	CodeMinimumIncome   = "RENTA_MINIMA"
	CodeSISRate         = "TASA_SIS"
	CodeCapAFP          = "TOPE_AFP"
	CodeCapIPS          = "TOPE_IPS"
	CodeCapUnemployment = "TOPE_CESANTIA"
	PrefixAFP           = "AFP"
	PrefixUnemployment  = "CESANTIA"
)

// cells whose own text contains these are followed by the value cell
const (
	anchorMinimumIncome   = "Trab. Dependientes e Independientes"
	anchorSISRate         = "Tasa SIS"
	anchorCapAFP          = "Para afiliados a una AFP"
	anchorCapIPS          = "Para afiliados al IPS"
	anchorCapUnemployment = "Para Seguro de Cesantía"
)

func record(code string, date civil.Date, cell locator.Node, kind numparse.Kind) []indicator.Record {
	value, ok := numparse.Parse(cell.Text(), kind)
	if !ok {
		return nil
	}
	return []indicator.Record{{
		Code:   code,
		Date:   date,
		Value:  value,
		Source: indicator.SourcePrevired,
	}}
}

// cellAfter returns the cell right after the first cell whose own text contains `anchor`.
func cellAfter(loc locator.Locator, anchor string) (locator.Node, error) {
	label, ok := locator.First(loc.Locate("td", locator.OwnTextContains(anchor)))
	if !ok {
		return nil, fmt.Errorf("%q: %w", anchor, scrapeutil.ErrAnchorNotFound)
	}
	cell, ok := locator.First(loc.Relative(label, locator.FollowingCell(1)))
	if !ok {
		return nil, fmt.Errorf("%q has no value cell: %w", anchor, scrapeutil.ErrAnchorNotFound)
	}
	return cell, nil
}

// ExtractUnits reads UTM and UTA from the second row of the table whose header has a bold
// "UTM".
func ExtractUnits(loc locator.Locator, date civil.Date) ([]indicator.Record, error) {
	header, ok := locator.First(loc.Locate("td", locator.HasChild(loc, "strong", locator.OwnTextIs("UTM"))))
	if !ok {
		return nil, fmt.Errorf("UTM header: %w", scrapeutil.ErrAnchorNotFound)
	}
	table, ok := locator.First(loc.Relative(header, locator.EnclosingTable()))
	if !ok {
		return nil, fmt.Errorf("UTM table: %w", scrapeutil.ErrAnchorNotFound)
	}
	row, ok := locator.Nth(loc.Relative(table, locator.Descendants("tr")), 1)
	if !ok {
		return nil, fmt.Errorf("UTM table has no value row")
	}
	cells := loc.Relative(row, locator.Cells())
	if len(cells) < 3 {
		return nil, fmt.Errorf("UTM value row has %d cells", len(cells))
	}

	var records []indicator.Record
	records = append(records, record(CodeUTM, date, cells[1], numparse.KindMonetary)...)
	records = append(records, record(CodeUTA, date, cells[2], numparse.KindMonetary)...)
	return records, nil
}

// ExtractMinimumIncome reads the minimum taxable income of dependent and independent workers.
func ExtractMinimumIncome(loc locator.Locator, date civil.Date) ([]indicator.Record, error) {
	cell, err := cellAfter(loc, anchorMinimumIncome)
	if err != nil {
		return nil, err
	}
	return record(CodeMinimumIncome, date, cell, numparse.KindMonetary), nil
}

// ExtractSISRate reads the disability and survivorship insurance rate, the bold part of the
// cell is preferred since the rest of it tends to hold annotations.
func ExtractSISRate(loc locator.Locator, date civil.Date) ([]indicator.Record, error) {
	cell, err := cellAfter(loc, anchorSISRate)
	if err != nil {
		return nil, err
	}
	if bold, ok := locator.First(loc.Relative(cell, locator.Descendants("b"))); ok {
		cell = bold
	}
	return record(CodeSISRate, date, cell, numparse.KindPercentage), nil
}

// ExtractTaxableCaps reads the taxable income caps for AFP, IPS and unemployment insurance.
// Each cap is independent of the others, a missing one is reported in the returned error.
func ExtractTaxableCaps(loc locator.Locator, date civil.Date) ([]indicator.Record, error) {
	caps := []struct {
		code   string
		anchor string
	}{
		{code: CodeCapAFP, anchor: anchorCapAFP},
		{code: CodeCapIPS, anchor: anchorCapIPS},
		{code: CodeCapUnemployment, anchor: anchorCapUnemployment},
	}

	var records []indicator.Record
	var errs []error
	for _, c := range caps {
		cell, err := cellAfter(loc, c.anchor)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		records = append(records, record(c.code, date, cell, numparse.KindMonetary)...)
	}
	return records, errors.Join(errs...)
}

// Institutions maps the AFP row labels to the institution part of their codes.
var Institutions = codegen.NewLabelTable(
	codegen.LabelEntry{Key: "CAPITAL", Aliases: []string{"Capital"}},
	codegen.LabelEntry{Key: "CUPRUM", Aliases: []string{"Cuprum"}},
	codegen.LabelEntry{Key: "HABITAT", Aliases: []string{"Habitat"}},
	codegen.LabelEntry{Key: "PLANVITAL", Aliases: []string{"PlanVital"}},
	codegen.LabelEntry{Key: "PROVIDA", Aliases: []string{"ProVida"}},
	codegen.LabelEntry{Key: "MODELO", Aliases: []string{"Modelo"}},
	codegen.LabelEntry{Key: "UNO", Aliases: []string{"Uno"}},
)

var institutionAnchors = []string{"Capital", "Cuprum", "Habitat", "PlanVital", "ProVida", "Modelo", "Uno"}

// worker rate, employer rate, total, independent workers
var afpColumns = []string{"TRAB", "EMP", "TOTAL", "INDEP"}

// matchedRows returns the rows whose label cell (the first one) has own text containing any of
// `anchors`. Anchors found in value cells do not select their row, every row is returned once.
func matchedRows(loc locator.Locator, anchors []string) []locator.Node {
	seen := map[locator.Node]struct{}{}
	var rows []locator.Node
	for _, cell := range loc.Locate("td", locator.OwnTextContains(anchors...)) {
		row, ok := locator.First(loc.Relative(cell, locator.EnclosingRow()))
		if !ok {
			continue
		}
		label, ok := locator.First(loc.Relative(row, locator.Cells()))
		if !ok || label != cell {
			continue
		}
		if _, dup := seen[row]; dup {
			continue
		}
		seen[row] = struct{}{}
		rows = append(rows, row)
	}
	return rows
}

// resolve looks `label` up in `table`, labels that are not in it get a code derived from
// their text and are reported through the returned error.
func resolve(table codegen.LabelTable, label string) (string, error) {
	key, ok := table.Resolve(label)
	if ok {
		return key, nil
	}
	return codegen.Identifier(label), fmt.Errorf("%q: %w", label, scrapeutil.ErrUnknownLabel)
}

// ExtractAFPRates reads one row per AFP, every row yields up to four rates
// (`AFP_<INSTITUTION>_{TRAB,EMP,TOTAL,INDEP}`).
func ExtractAFPRates(loc locator.Locator, date civil.Date) ([]indicator.Record, error) {
	rows := matchedRows(loc, institutionAnchors)
	if len(rows) == 0 {
		return nil, fmt.Errorf("AFP rows: %w", scrapeutil.ErrAnchorNotFound)
	}

	var records []indicator.Record
	var errs []error
	for _, row := range rows {
		cells := loc.Relative(row, locator.Cells())
		if len(cells) < 1+len(afpColumns) {
			continue
		}
		institution, err := resolve(Institutions, cells[0].Text())
		if err != nil {
			errs = append(errs, err)
		}
		if institution == "" {
			continue
		}
		for i, suffix := range afpColumns {
			code := codegen.CodeFor(PrefixAFP, institution, suffix)
			records = append(records, record(code, date, cells[i+1], numparse.KindPercentage)...)
		}
	}
	if len(records) == 0 && len(errs) == 0 {
		return nil, fmt.Errorf("AFP rows have no rate columns: %w", scrapeutil.ErrAnchorNotFound)
	}
	return records, errors.Join(errs...)
}

// ContractTypes maps the unemployment insurance row labels to the contract part of their
// codes. "11 años" rows also mention the indefinite contract so they must be tried first.
var ContractTypes = codegen.NewLabelTable(
	codegen.LabelEntry{Key: "11ANOS", Aliases: []string{"11 años"}},
	codegen.LabelEntry{Key: "INDEF", Aliases: []string{"Plazo Indefinido"}},
	codegen.LabelEntry{Key: "FIJO", Aliases: []string{"Plazo Fijo"}},
	codegen.LabelEntry{Key: "CASA", Aliases: []string{"Casa Particular"}},
)

var contractAnchors = []string{"Plazo Indefinido", "Plazo Fijo", "11 años", "Casa Particular"}

// only indefinite contracts have a worker contribution
var workerContribution = map[string]bool{"INDEF": true}

// ExtractUnemploymentInsurance reads the employer (and, for indefinite contracts, worker)
// contribution rates per contract type (`CESANTIA_<CONTRACT>_{EMP,TRAB}`).
func ExtractUnemploymentInsurance(loc locator.Locator, date civil.Date) ([]indicator.Record, error) {
	rows := matchedRows(loc, contractAnchors)
	if len(rows) == 0 {
		return nil, fmt.Errorf("unemployment insurance rows: %w", scrapeutil.ErrAnchorNotFound)
	}

	var records []indicator.Record
	var errs []error
	for _, row := range rows {
		cells := loc.Relative(row, locator.Cells())
		if len(cells) < 3 {
			continue
		}
		contract, err := resolve(ContractTypes, cells[0].Text())
		if err != nil {
			errs = append(errs, err)
		}
		if contract == "" {
			continue
		}

		code := codegen.CodeFor(PrefixUnemployment, contract, "EMP")
		records = append(records, record(code, date, cells[1], numparse.KindPercentage)...)
		if workerContribution[contract] {
			code := codegen.CodeFor(PrefixUnemployment, contract, "TRAB")
			records = append(records, record(code, date, cells[2], numparse.KindPercentage)...)
		}
	}
	if len(records) == 0 && len(errs) == 0 {
		return nil, fmt.Errorf("unemployment insurance rows have no rate columns: %w", scrapeutil.ErrAnchorNotFound)
	}
	return records, errors.Join(errs...)
}
