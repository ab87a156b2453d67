// Package scrapeutil holds what the provider scrapers share: failure isolation for every
// extraction rule and the parsing of month names.
package scrapeutil

import (
	"errors"
	"fmt"
	"indicadores-backend/internal/indicator"
	"indicadores-backend/internal/telemetry"
)

// ErrAnchorNotFound is returned by an extraction rule when the element it is anchored on is not
// on the page.
var ErrAnchorNotFound = errors.New("anchor not found")

// ErrUnknownLabel is returned by an extraction rule that met a row label missing from its
// lookup table, the records of that row are still returned under a derived code.
var ErrUnknownLabel = errors.New("unknown label")

// drift reports whether `err` only means that the upstream page changed shape.
func drift(err error) bool {
	return errors.Is(err, ErrAnchorNotFound) || errors.Is(err, ErrUnknownLabel)
}

// Rule is one extraction routine over an already parsed page.
type Rule func() ([]indicator.Record, error)

// Extract runs `rule` in isolation so that sibling rules still run: a panic inside it is
// reported under `id` (with `params` appended) and yields no records. An error is reported as
// well, but whatever records the rule returned alongside it are kept.
func Extract(tel telemetry.API, id string, rule Rule, params ...any) (records []indicator.Record) {
	defer func() {
		if r := recover(); r != nil {
			tel.ReportBroken(id, append([]any{fmt.Errorf("panic: %v", r)}, params...)...)
			records = nil
		}
	}()

	records, err := rule()
	switch {
	case err == nil:
	case drift(err):
		tel.ReportWarning(id, append([]any{err}, params...)...)
	default:
		tel.ReportBroken(id, append([]any{err}, params...)...)
	}
	if err == nil && len(records) == 0 {
		tel.ReportWarning(id, append([]any{"no records extracted"}, params...)...)
	}
	return records
}
