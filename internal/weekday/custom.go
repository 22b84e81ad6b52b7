package weekday

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// BuildMaps merges an optional JSON override into a copy of the built-in
// base table. Blank text returns the base table untouched. Any failure is
// collected per entry: one bad locale or day entry never discards the rest
// of the override, and the base table is always returned in a usable state.
func BuildMaps(customMapText string) (*Table, []string) {
	table := NewTable()

	text := strings.TrimSpace(customMapText)
	if text == "" {
		return table, nil
	}

	var errs []string

	var probe any
	if err := json.Unmarshal([]byte(text), &probe); err != nil {
		errs = append(errs, fmt.Sprintf("Invalid custom map JSON: %v", err))

		return table, errs
	}

	if _, ok := probe.(map[string]any); !ok {
		errs = append(errs, "Custom map must be a JSON object")

		return table, errs
	}

	locales, err := decodeOrderedObject([]byte(text))
	if err != nil {
		errs = append(errs, fmt.Sprintf("Invalid custom map JSON: %v", err))

		return table, errs
	}

	for _, localeEntry := range locales {
		locale := localeEntry.key

		days, err := decodeOrderedObject(localeEntry.value)
		if err != nil {
			errs = append(errs, fmt.Sprintf("Custom map for locale '%s' must be an object", locale))

			continue
		}

		for _, dayEntry := range days {
			index, err := coerceWeekdayIndex(dayEntry.value)
			if err != nil {
				errs = append(errs, fmt.Sprintf(
					"Custom map value for '%s' in locale '%s' is not an integer: %s",
					dayEntry.key, locale, strings.TrimSpace(string(dayEntry.value))))

				continue
			}

			if index < 0 || index > 6 {
				errs = append(errs, fmt.Sprintf(
					"Custom map value for '%s' in locale '%s' must be between 0 and 6",
					dayEntry.key, locale))

				continue
			}

			table.set(locale, NormalizeDayKey(dayEntry.key), index)
		}
	}

	return table, errs
}

// orderedEntry is one key/value pair with the raw value preserved.
type orderedEntry struct {
	key   string
	value json.RawMessage
}

// decodeOrderedObject walks a JSON object token by token so that the
// document's key order survives; map decoding would lose it and the merge
// semantics (first locale wins on detection ties) depend on it.
func decodeOrderedObject(data []byte) ([]orderedEntry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("read token: %w", err)
	}

	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("not a JSON object")
	}

	var entries []orderedEntry

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read key: %w", err)
		}

		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected key token %v", keyTok)
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("read value for %q: %w", key, err)
		}

		entries = append(entries, orderedEntry{key: key, value: value})
	}

	return entries, nil
}

// coerceWeekdayIndex accepts integers, integral or fractional numbers
// (truncated toward zero) and numeric strings.
func coerceWeekdayIndex(raw json.RawMessage) (int, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return 0, fmt.Errorf("empty value")
	}

	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, fmt.Errorf("unquote: %w", err)
		}

		index, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return 0, fmt.Errorf("parse %q: %w", s, err)
		}

		return index, nil
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, fmt.Errorf("parse number: %w", err)
	}

	return int(f), nil
}
