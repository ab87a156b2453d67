// Package numparse converts the human formatted numbers found on the provider pages into
// exact decimals.
//
// Both providers use the Chilean locale: `.` groups thousands and `,` separates decimals.
package numparse

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Kind is the numeric dialect a cell is written in.
type Kind int

const (
	// KindMonetary is an amount, possibly prefixed by a currency symbol: "$ 1.234,56".
	KindMonetary Kind = iota
	// KindPercentage is a rate, possibly followed by a `%` and an annotation: "10,77% R.I.".
	KindPercentage
)

func (k Kind) String() string {
	switch k {
	case KindMonetary:
		return "monetary"
	case KindPercentage:
		return "percentage"
	default:
		return "unknown"
	}
}

// placeholders are the glyphs the providers write in cells that do not apply.
var placeholders = map[string]struct{}{
	"–":   {},
	"—":   {},
	"-":   {},
	"−":   {},
	"‒":   {},
	"n/a": {},
	"s/i": {},
}

var currencySymbols = strings.NewReplacer(
	"US$", "",
	"$", "",
	"CLP", "",
	"UF", "",
)

var whitespace = regexp.MustCompile(`[\s\x{00a0}]+`)
var nonNumeric = regexp.MustCompile(`[^0-9.]`)

// IsPlaceholder reports whether `text` is a "not applicable" marker.
func IsPlaceholder(text string) bool {
	_, ok := placeholders[strings.ToLower(clean(text))]
	return ok
}

func clean(text string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(text, " "))
}

// Parse converts `text` written in the given dialect. ok is false for empty cells,
// placeholders and anything that is not a number once cleaned up, a missing value is
// never reported as zero.
func Parse(text string, kind Kind) (value decimal.Decimal, ok bool) {
	switch kind {
	case KindMonetary:
		return Monetary(text)
	case KindPercentage:
		return Percentage(text)
	default:
		return decimal.Decimal{}, false
	}
}

// Monetary parses an amount: "67.429" is 67429 and "1.234,56" is 1234.56.
func Monetary(text string) (decimal.Decimal, bool) {
	text = clean(text)
	if text == "" || IsPlaceholder(text) {
		return decimal.Decimal{}, false
	}

	text = currencySymbols.Replace(text)
	text = whitespace.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, ".", "")
	text = strings.ReplaceAll(text, ",", ".")

	return parseDecimal(text)
}

// Percentage parses a rate: "10,77%" is 10.77. Anything from the `%` onwards is an annotation
// and is dropped, as is every remaining character that is not part of the number.
func Percentage(text string) (decimal.Decimal, bool) {
	text = clean(text)
	if text == "" || IsPlaceholder(text) {
		return decimal.Decimal{}, false
	}

	if idx := strings.Index(text, "%"); idx >= 0 {
		text = text[:idx]
	}
	text = strings.ReplaceAll(text, ",", ".")
	text = nonNumeric.ReplaceAllString(text, "")
	// separators left over from annotations like "R.I."
	text = strings.Trim(text, ".")

	return parseDecimal(text)
}

func parseDecimal(text string) (decimal.Decimal, bool) {
	if text == "" || strings.Count(text, ".") > 1 {
		return decimal.Decimal{}, false
	}
	value, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return value, true
}
