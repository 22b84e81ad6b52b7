package normalize

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrMissingDatetime is returned when a datetime field is empty or blank.
var ErrMissingDatetime = errors.New("missing datetime value")

// isoOffsetLayouts are ISO-8601 forms that carry their own UTC offset.
var isoOffsetLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
}

// isoNaiveLayouts are ISO-8601 forms without an offset; the configured
// timezone is attached as a wall-clock reading.
var isoNaiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// dayMonthYearLayout is the 24-hour European form, e.g. "18.09.2025 05:15".
const dayMonthYearLayout = "2.1.2006 15:04"

// meridiemLayout is the 12-hour US form, e.g. "9/18/2025 5:15 AM".
const meridiemLayout = "1/2/2006 3:04 PM"

// ParseAlarmDatetime converts a textual alarm timestamp into an instant in
// the configured timezone. Formats are attempted in order: ISO-8601, then
// day.month.year 24-hour, then (only when the text mentions AM or PM) the
// 12-hour month/day/year form. A parse without an offset is treated as a
// local wall-clock reading, not a UTC value.
func ParseAlarmDatetime(value string, loc *time.Location) (time.Time, error) {
	text := strings.TrimSpace(value)
	if text == "" {
		return time.Time{}, ErrMissingDatetime
	}

	for _, layout := range isoOffsetLayouts {
		if parsed, err := time.Parse(layout, text); err == nil {
			return parsed.In(loc), nil
		}
	}

	for _, layout := range isoNaiveLayouts {
		if parsed, err := time.ParseInLocation(layout, text, loc); err == nil {
			return parsed, nil
		}
	}

	if parsed, err := time.ParseInLocation(dayMonthYearLayout, text, loc); err == nil {
		return parsed, nil
	}

	upper := strings.ToUpper(text)
	if strings.Contains(upper, "AM") || strings.Contains(upper, "PM") {
		if parsed, err := time.ParseInLocation(meridiemLayout, upper, loc); err == nil {
			return parsed, nil
		}
	}

	return time.Time{}, fmt.Errorf("unsupported datetime format: %s", text)
}
