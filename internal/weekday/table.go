package weekday

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// LocaleAuto is the sentinel locale option requesting automatic detection.
const LocaleAuto = "auto"

// baseMaps are the built-in locale tables. Every key is a fixed point of
// NormalizeDayKey: decomposable diacritics appear stripped, while the
// stroked "ł", which NFKD does not decompose, keeps both spellings.
var baseMaps = []struct {
	locale  string
	entries map[string]int
}{
	{
		locale: "en",
		entries: map[string]int{
			"monday": 0, "mon": 0,
			"tuesday": 1, "tue": 1,
			"wednesday": 2, "wed": 2,
			"thursday": 3, "thu": 3,
			"friday": 4, "fri": 4,
			"saturday": 5, "sat": 5,
			"sunday": 6, "sun": 6,
		},
	},
	{
		locale: "pl",
		entries: map[string]int{
			"poniedzialek": 0, "poniedziałek": 0, "pon": 0,
			"wtorek": 1, "wt": 1,
			"sroda": 2, "sr": 2,
			"czwartek": 3, "czw": 3,
			"piatek": 4, "pt": 4,
			"sobota": 5, "sob": 5,
			"niedziela": 6, "nd": 6, "nie": 6,
		},
	},
}

// Table is an insertion-ordered set of locale tables. Order matters: locale
// detection scans locales in order and the first locale is the fallback.
type Table struct {
	// locales keeps the declaration order.
	locales []string
	// entries maps locale name to its normalized day-name table.
	entries map[string]map[string]int
}

// NewTable returns a deep copy of the built-in base table.
func NewTable() *Table {
	t := &Table{
		entries: make(map[string]map[string]int, len(baseMaps)),
	}

	for _, base := range baseMaps {
		mapping := make(map[string]int, len(base.entries))
		for name, index := range base.entries {
			mapping[name] = index
		}

		t.locales = append(t.locales, base.locale)
		t.entries[base.locale] = mapping
	}

	return t
}

// Locales returns the locale names in declaration order.
func (t *Table) Locales() []string {
	return append([]string(nil), t.locales...)
}

// DefaultLocale returns the first declared locale.
func (t *Table) DefaultLocale() string {
	return t.locales[0]
}

// Has reports whether the locale exists in the table.
func (t *Table) Has(locale string) bool {
	_, ok := t.entries[locale]

	return ok
}

// Lookup resolves a normalized day key within one locale.
func (t *Table) Lookup(locale, normalizedDay string) (int, bool) {
	mapping, ok := t.entries[locale]
	if !ok {
		return 0, false
	}

	index, ok := mapping[normalizedDay]

	return index, ok
}

// LookupWithFallback resolves a normalized day key, trying the preferred
// locale first and then every other locale in declaration order.
func (t *Table) LookupWithFallback(preferred, normalizedDay string) (int, bool) {
	if index, ok := t.Lookup(preferred, normalizedDay); ok {
		return index, true
	}

	for _, locale := range t.locales {
		if locale == preferred {
			continue
		}

		if index, ok := t.Lookup(locale, normalizedDay); ok {
			return index, true
		}
	}

	return 0, false
}

// set stores an entry, appending a new locale at the end of the order.
func (t *Table) set(locale, normalizedDay string, index int) {
	mapping, ok := t.entries[locale]
	if !ok {
		mapping = make(map[string]int)
		t.entries[locale] = mapping
		t.locales = append(t.locales, locale)
	}

	mapping[normalizedDay] = index
}

// score counts how many of the normalized day names exist in the locale's table.
func (t *Table) score(locale string, normalizedDays []string) int {
	mapping := t.entries[locale]

	score := 0

	for _, day := range normalizedDays {
		if _, ok := mapping[day]; ok {
			score++
		}
	}

	return score
}

// NormalizeDayKey normalizes a weekday name for table lookup: NFKD
// decomposition, diacritic strip, space/hyphen removal, case folding.
func NormalizeDayKey(value string) string {
	decomposed := norm.NFKD.String(value)

	var b strings.Builder

	b.Grow(len(decomposed))

	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) || r == ' ' || r == '-' {
			continue
		}

		b.WriteRune(r)
	}

	return strings.TrimSpace(cases.Fold().String(b.String()))
}

// DetectLocale picks the locale used to interpret day names. A non-auto
// option wins when present in the table, otherwise the first locale is used.
// With "auto", every locale is scored by how many of the supplied day names
// it can resolve; the first locale with the highest score wins, so exact
// ties go to the earliest-declared locale.
func DetectLocale(dayNameLines []string, localeOption string, table *Table) string {
	if localeOption != LocaleAuto {
		if table.Has(localeOption) {
			return localeOption
		}

		return table.DefaultLocale()
	}

	if len(dayNameLines) == 0 {
		return table.DefaultLocale()
	}

	normalized := make([]string, 0, len(dayNameLines))
	for _, line := range dayNameLines {
		normalized = append(normalized, NormalizeDayKey(line))
	}

	bestLocale := table.DefaultLocale()
	bestScore := -1

	for _, locale := range table.locales {
		if score := table.score(locale, normalized); score > bestScore {
			bestLocale = locale
			bestScore = score
		}
	}

	return bestLocale
}
