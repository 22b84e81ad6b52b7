package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/andrzejf1994/ha-ios-nextalarm/internal/weekday"
)

// rawAlarm builds a well-formed raw alarm payload for tests.
func rawAlarm(date, state, repeat, days string) map[string]any {
	fields := map[string]any{
		FieldDate:   date,
		FieldState:  state,
		FieldRepeat: repeat,
		FieldSnooze: "off",
	}
	if days != "" {
		fields[FieldRepeatDays] = days
	}

	return fields
}

// TestEventBasic verifies a single enabled one-shot alarm normalizes cleanly.
func TestEventBasic(t *testing.T) {
	t.Parallel()

	loc := warsaw(t)
	alarms := map[string]any{
		"alarm_1": rawAlarm("18.09.2025 05:15", "on", "off", ""),
	}

	event := Event(alarms, loc, weekday.LocaleAuto, weekday.NewTable(), nil)

	require.Empty(t, event.ParseErrors)
	require.Len(t, event.Alarms, 1)

	got := event.Alarms["alarm_1"]
	require.Equal(t, "alarm_1", got.Label)
	require.True(t, got.Enabled)
	require.False(t, got.Repeat)
	require.True(t, time.Date(2025, 9, 18, 5, 15, 0, 0, loc).Equal(got.BaseTime))
}

// TestEventLabelFallback verifies that a blank label defaults to the alarm key.
func TestEventLabelFallback(t *testing.T) {
	t.Parallel()

	loc := warsaw(t)
	fields := rawAlarm("18.09.2025 05:15", "on", "off", "")
	fields[FieldLabel] = "  Workout  "

	event := Event(map[string]any{"a": fields}, loc, weekday.LocaleAuto, weekday.NewTable(), nil)
	require.Equal(t, "Workout", event.Alarms["a"].Label)

	fields[FieldLabel] = "   "
	event = Event(map[string]any{"a": fields}, loc, weekday.LocaleAuto, weekday.NewTable(), nil)
	require.Equal(t, "a", event.Alarms["a"].Label)
}

// TestEventLocaleDetection verifies that repeat-day lines are pooled across
// all alarms before the locale is chosen.
func TestEventLocaleDetection(t *testing.T) {
	t.Parallel()

	loc := warsaw(t)
	alarms := map[string]any{
		"a": rawAlarm("18.09.2025 05:15", "on", "on", "poniedziałek\nwtorek"),
		"b": rawAlarm("19.09.2025 06:00", "on", "on", "środa"),
	}

	event := Event(alarms, loc, weekday.LocaleAuto, weekday.NewTable(), nil)

	require.Equal(t, "pl", event.MapLocale)
	require.Empty(t, event.ParseErrors)
	require.Equal(t, []int{0, 1}, event.Alarms["a"].RepeatDaysNormalized)
	require.Equal(t, []int{2}, event.Alarms["b"].RepeatDaysNormalized)
}

// TestEventRepeatDayFallback verifies that a day name outside the detected
// locale still maps through the fallback locales.
func TestEventRepeatDayFallback(t *testing.T) {
	t.Parallel()

	loc := warsaw(t)
	alarms := map[string]any{
		"a": rawAlarm("18.09.2025 05:15", "on", "on", "poniedziałek\nwtorek\nfriday"),
	}

	event := Event(alarms, loc, weekday.LocaleAuto, weekday.NewTable(), nil)

	require.Equal(t, "pl", event.MapLocale)
	require.Empty(t, event.ParseErrors)
	require.Equal(t, []int{0, 1, 4}, event.Alarms["a"].RepeatDaysNormalized)
}

// TestEventRepeatDayDedupe verifies that duplicate weekdays are absorbed
// silently, keeping the first spelling.
func TestEventRepeatDayDedupe(t *testing.T) {
	t.Parallel()

	loc := warsaw(t)
	alarms := map[string]any{
		"a": rawAlarm("18.09.2025 05:15", "on", "on", "Monday\nMon\nTuesday"),
	}

	event := Event(alarms, loc, weekday.LocaleAuto, weekday.NewTable(), nil)

	require.Empty(t, event.ParseErrors)
	require.Equal(t, []string{"Monday", "Tuesday"}, event.Alarms["a"].RepeatDaysLocalized)
	require.Equal(t, []int{0, 1}, event.Alarms["a"].RepeatDaysNormalized)
}

// TestEventShapeAndFieldErrors verifies malformed alarms are dropped with
// per-alarm errors in sorted key order while well-formed alarms survive.
func TestEventShapeAndFieldErrors(t *testing.T) {
	t.Parallel()

	loc := warsaw(t)
	alarms := map[string]any{
		"a_bad_shape": "not an object",
		"b_no_date":   map[string]any{FieldState: "on", FieldRepeat: "off", FieldSnooze: "off"},
		"c_bad_state": rawAlarm("18.09.2025 05:15", "maybe", "off", ""),
		"d_good":      rawAlarm("18.09.2025 05:15", "on", "off", ""),
	}

	event := Event(alarms, loc, weekday.LocaleAuto, weekday.NewTable(), nil)

	require.Len(t, event.Alarms, 1)
	require.Contains(t, event.Alarms, "d_good")

	require.Equal(t, []string{
		"Alarm a_bad_shape: payload must be an object with alarm fields",
		"Alarm b_no_date: missing Date",
		"Alarm c_bad_state: invalid value 'maybe' for field 'State'",
	}, event.ParseErrors)
}

// TestEventRepeatWithoutDays verifies that a repeating alarm with no usable
// repeat days is dropped with both the per-line and the summary error.
func TestEventRepeatWithoutDays(t *testing.T) {
	t.Parallel()

	loc := warsaw(t)
	alarms := map[string]any{
		"a": rawAlarm("18.09.2025 05:15", "on", "on", "someday"),
	}

	event := Event(alarms, loc, weekday.LocaleAuto, weekday.NewTable(), nil)

	require.Empty(t, event.Alarms)
	require.Equal(t, []string{
		"Alarm a: could not map repeat day 'someday' with locale 'en'",
		"Alarm a: repeat is enabled but no valid repeat days were provided",
	}, event.ParseErrors)
}

// TestEventBooleanFields verifies native booleans are accepted for the
// on/off fields.
func TestEventBooleanFields(t *testing.T) {
	t.Parallel()

	loc := warsaw(t)
	alarms := map[string]any{
		"a": map[string]any{
			FieldDate:   "18.09.2025 05:15",
			FieldState:  true,
			FieldRepeat: false,
			FieldSnooze: false,
		},
	}

	event := Event(alarms, loc, weekday.LocaleAuto, weekday.NewTable(), nil)

	require.Empty(t, event.ParseErrors)
	require.True(t, event.Alarms["a"].Enabled)
	require.False(t, event.Alarms["a"].Repeat)
}

// TestEventCarriesMapErrors verifies custom-map build errors ride along on
// the normalized event.
func TestEventCarriesMapErrors(t *testing.T) {
	t.Parallel()

	loc := warsaw(t)
	event := Event(nil, loc, weekday.LocaleAuto, weekday.NewTable(), []string{"Custom map must be a JSON object"})

	require.Equal(t, []string{"Custom map must be a JSON object"}, event.MapErrors)
	require.Empty(t, event.Alarms)
}
