package scrapeutil

import (
	"indicadores-backend/lib/textutil"
	"strings"
	"time"
)

var months = map[string]time.Month{
	"enero":      time.January,
	"febrero":    time.February,
	"marzo":      time.March,
	"abril":      time.April,
	"mayo":       time.May,
	"junio":      time.June,
	"julio":      time.July,
	"agosto":     time.August,
	"septiembre": time.September,
	"setiembre":  time.September,
	"octubre":    time.October,
	"noviembre":  time.November,
	"diciembre":  time.December,
}

// SpanishMonth parses a month name as written by the providers ("Enero", "SEPTIEMBRE").
func SpanishMonth(name string) (time.Month, bool) {
	month, ok := months[strings.ToLower(strings.TrimSpace(textutil.FoldAccents(name)))]
	return month, ok
}
