// Package codegen derives the canonical indicator codes (`UF`, `AFP_CAPITAL_TRAB`, ...) from
// static prefixes and scraped row labels.
package codegen

import (
	"indicadores-backend/lib/textutil"
	"regexp"
	"strings"

	"github.com/antzucaro/matchr"
)

var whitespaceRun = regexp.MustCompile(`\s+`)
var nonIdentifier = regexp.MustCompile(`[^A-Z0-9_]`)
var underscoreRun = regexp.MustCompile(`_+`)

// Identifier canonicalizes free text into a code fragment: trimmed, uppercased, accents
// folded, whitespace runs joined by a single underscore and anything outside [A-Z0-9_]
// dropped. "Plan Vital" becomes "PLAN_VITAL".
func Identifier(text string) string {
	text = strings.TrimSpace(textutil.FoldAccents(text))
	text = strings.ToUpper(text)
	text = whitespaceRun.ReplaceAllString(text, "_")
	text = nonIdentifier.ReplaceAllString(text, "")
	text = underscoreRun.ReplaceAllString(text, "_")
	return strings.Trim(text, "_")
}

// CodeFor builds `PREFIX_LABEL_SUFFIX`, when `label` is empty it returns the prefix alone (the
// shape of every single-cell indicator). The result only depends on its inputs.
func CodeFor(prefix, label, suffix string) string {
	parts := []string{Identifier(prefix)}
	if label = Identifier(label); label != "" {
		parts = append(parts, label)
		if suffix = Identifier(suffix); suffix != "" {
			parts = append(parts, suffix)
		}
	}
	return strings.Join(parts, "_")
}

// LabelEntry maps the spellings of one upstream row label to a stable key.
type LabelEntry struct {
	Key     string
	Aliases []string
}

// LabelTable resolves scraped row labels to stable keys so that upstream rewording or
// recasing does not mint new codes.
type LabelTable struct {
	entries   []LabelEntry
	normal    [][]string
	threshold float64
}

// DefaultSimilarity is the Jaro-Winkler similarity above which a label is considered a
// misspelling of an alias.
const DefaultSimilarity = 0.92

// NewLabelTable creates a LabelTable, entries are tried in order so more specific aliases
// must come first.
func NewLabelTable(entries ...LabelEntry) LabelTable {
	normal := make([][]string, len(entries))
	for i, e := range entries {
		aliases := make([]string, len(e.Aliases))
		for j, a := range e.Aliases {
			aliases[j] = textutil.NormalizeName(a)
		}
		normal[i] = aliases
	}
	return LabelTable{
		entries:   entries,
		normal:    normal,
		threshold: DefaultSimilarity,
	}
}

// Resolve returns the key whose aliases are contained in `label`, falling back to the most
// similar alias when nothing is contained. ok is false when no alias is close enough.
func (t LabelTable) Resolve(label string) (key string, ok bool) {
	normalized := textutil.NormalizeName(label)
	if normalized == "" {
		return "", false
	}

	for i, aliases := range t.normal {
		for _, alias := range aliases {
			if strings.Contains(normalized, alias) {
				return t.entries[i].Key, true
			}
		}
	}

	var best float64
	bestIdx := -1
	for i, aliases := range t.normal {
		for _, alias := range aliases {
			similarity := matchr.JaroWinkler(normalized, alias, false)
			if similarity > best {
				best = similarity
				bestIdx = i
			}
		}
	}
	if bestIdx < 0 || best < t.threshold {
		return "", false
	}
	return t.entries[bestIdx].Key, true
}

// Keys returns every key in the table in order.
func (t LabelTable) Keys() []string {
	keys := make([]string, len(t.entries))
	for i, e := range t.entries {
		keys[i] = e.Key
	}
	return keys
}
