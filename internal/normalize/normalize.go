package normalize

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/andrzejf1994/ha-ios-nextalarm/internal/domain/alarm"
	"github.com/andrzejf1994/ha-ios-nextalarm/internal/weekday"
)

// Recognized raw alarm field names, as sent by the companion app.
const (
	FieldDate       = "Date"
	FieldLabel      = "Label"
	FieldState      = "State"
	FieldRepeat     = "Repeat"
	FieldSnooze     = "Snooze"
	FieldRepeatDays = "Repeat Days"
)

// Event normalizes the alarm payload of one incoming event. Locale detection
// is event-wide: repeat-day lines from every well-shaped alarm are pooled
// first so all alarms share one map locale. Alarm keys are processed in
// sorted order to keep error lists deterministic.
func Event(
	alarms map[string]any,
	loc *time.Location,
	localeOption string,
	table *weekday.Table,
	mapErrors []string,
) *alarm.NormalizedEvent {
	var (
		parseErrors    []string
		allRepeatLines []string
	)

	keys := make([]string, 0, len(alarms))
	for key := range alarms {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	validAlarms := make(map[string]map[string]any, len(alarms))

	for _, key := range keys {
		rawAlarm, ok := alarms[key].(map[string]any)
		if !ok {
			parseErrors = append(parseErrors,
				fmt.Sprintf("Alarm %s: payload must be an object with alarm fields", key))

			continue
		}

		validAlarms[key] = rawAlarm

		if rawDays, ok := rawAlarm[FieldRepeatDays].(string); ok {
			allRepeatLines = append(allRepeatLines, splitDayLines(rawDays)...)
		}
	}

	mapLocale := weekday.DetectLocale(allRepeatLines, localeOption, table)

	normalizedAlarms := make(map[string]*alarm.NormalizedAlarm)

	for _, key := range keys {
		rawAlarm, ok := validAlarms[key]
		if !ok {
			continue
		}

		label := strings.TrimSpace(stringify(rawAlarm[FieldLabel]))
		if label == "" {
			label = key
		}

		rawDate, ok := rawAlarm[FieldDate]
		if !ok || rawDate == nil {
			parseErrors = append(parseErrors, fmt.Sprintf("Alarm %s: missing Date", key))

			continue
		}

		baseTime, err := ParseAlarmDatetime(stringify(rawDate), loc)
		if err != nil {
			parseErrors = append(parseErrors, fmt.Sprintf("Alarm %s: %v", key, err))

			continue
		}

		enabled, ok := parseOnOff(rawAlarm[FieldState], FieldState, key, &parseErrors)
		if !ok {
			continue
		}

		repeat, ok := parseOnOff(rawAlarm[FieldRepeat], FieldRepeat, key, &parseErrors)
		if !ok {
			continue
		}

		snooze, ok := parseOnOff(rawAlarm[FieldSnooze], FieldSnooze, key, &parseErrors)
		if !ok {
			continue
		}

		var (
			daysLocalized  []string
			daysNormalized []int
		)

		if repeat {
			daysLocalized, daysNormalized = normalizeRepeatDays(
				rawAlarm[FieldRepeatDays], key, mapLocale, table, &parseErrors)
			if len(daysNormalized) == 0 {
				parseErrors = append(parseErrors,
					fmt.Sprintf("Alarm %s: repeat is enabled but no valid repeat days were provided", key))

				continue
			}
		}

		normalizedAlarms[key] = &alarm.NormalizedAlarm{
			Key:                  key,
			Label:                label,
			Enabled:              enabled,
			Repeat:               repeat,
			Snooze:               snooze,
			BaseTime:             baseTime,
			RepeatDaysLocalized:  daysLocalized,
			RepeatDaysNormalized: daysNormalized,
		}
	}

	return &alarm.NormalizedEvent{
		Alarms:      normalizedAlarms,
		MapLocale:   mapLocale,
		ParseErrors: parseErrors,
		MapErrors:   append([]string(nil), mapErrors...),
	}
}

// parseOnOff accepts case-insensitive "on"/"off" strings or native booleans.
// Anything else records a field-specific error and fails the alarm.
func parseOnOff(value any, field, alarmKey string, errs *[]string) (bool, bool) {
	switch v := value.(type) {
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "on":
			return true, true
		case "off":
			return false, true
		}
	case bool:
		return v, true
	}

	*errs = append(*errs,
		fmt.Sprintf("Alarm %s: invalid value '%v' for field '%s'", alarmKey, value, field))

	return false, false
}

// normalizeRepeatDays maps newline-separated day names onto weekday indices.
// The event's detected locale is tried first, falling back through the other
// locales in table order; lines mapping to an already-seen weekday are
// absorbed silently and unmappable lines are per-line errors.
func normalizeRepeatDays(
	raw any,
	alarmKey, locale string,
	table *weekday.Table,
	errs *[]string,
) ([]string, []int) {
	var (
		localized  []string
		normalized []int
	)

	seen := make(map[int]bool)

	for _, line := range splitDayLines(stringify(raw)) {
		index, ok := table.LookupWithFallback(locale, weekday.NormalizeDayKey(line))
		if !ok {
			*errs = append(*errs, fmt.Sprintf(
				"Alarm %s: could not map repeat day '%s' with locale '%s'", alarmKey, line, locale))

			continue
		}

		if seen[index] {
			continue
		}

		seen[index] = true
		localized = append(localized, line)
		normalized = append(normalized, index)
	}

	return localized, normalized
}

// splitDayLines splits a repeat-days text into trimmed non-empty lines.
func splitDayLines(text string) []string {
	var lines []string

	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}

	return lines
}

// stringify renders a raw payload value the way it was supplied, with nil
// becoming the empty string.
func stringify(value any) string {
	if value == nil {
		return ""
	}

	if s, ok := value.(string); ok {
		return s
	}

	return fmt.Sprintf("%v", value)
}
