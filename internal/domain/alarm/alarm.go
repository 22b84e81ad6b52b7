package alarm

import (
	"fmt"
	"time"
)

// Weekday indices run Monday=0 through Sunday=6, matching the locale tables.

// Note codes explaining why no concrete next-alarm instant is available.
const (
	// NoteNoAlarms means the normalized alarm set is empty.
	NoteNoAlarms = "no_alarms"
	// NoteNoEnabled means every alarm in the set is disabled.
	NoteNoEnabled = "no_enabled"
	// NoteNoFuture means at least one alarm is enabled but none yields a future instant.
	NoteNoFuture = "no_future"
)

// NormalizedAlarm is one validated alarm received from a device payload.
type NormalizedAlarm struct {
	// Key is the stable identifier from the source collection.
	Key string
	// Label is the display label, defaulting to Key when blank.
	Label string
	// Enabled reports whether the alarm may fire at all.
	Enabled bool
	// Repeat reports whether the alarm repeats weekly.
	Repeat bool
	// Snooze is informational only and never affects scheduling.
	Snooze bool
	// BaseTime is the absolute firing time for one-shot alarms. For
	// repeating alarms it supplies only the time-of-day; the date part is
	// a historical anchor.
	BaseTime time.Time
	// RepeatDaysLocalized keeps the original day-name strings as supplied,
	// de-duplicated by mapped weekday index in first-seen order.
	RepeatDaysLocalized []string
	// RepeatDaysNormalized holds the weekday indices (Monday=0) matching
	// RepeatDaysLocalized, same order and de-duplication.
	RepeatDaysNormalized []int
}

// Clone returns a deep copy of the alarm.
func (a *NormalizedAlarm) Clone() *NormalizedAlarm {
	if a == nil {
		return nil
	}

	cloned := *a
	cloned.RepeatDaysLocalized = append([]string(nil), a.RepeatDaysLocalized...)
	cloned.RepeatDaysNormalized = append([]int(nil), a.RepeatDaysNormalized...)

	return &cloned
}

// StoredAlarm is the JSON-safe storage representation of a NormalizedAlarm.
type StoredAlarm struct {
	Key                  string   `json:"key"`
	Label                string   `json:"label"`
	Enabled              bool     `json:"enabled"`
	Repeat               bool     `json:"repeat"`
	Snooze               bool     `json:"snooze"`
	BaseTime             string   `json:"base_time"`
	RepeatDaysLocalized  []string `json:"repeat_days_localized"`
	RepeatDaysNormalized []int    `json:"repeat_days_normalized"`
}

// ToStored converts the alarm into its storage representation.
func (a *NormalizedAlarm) ToStored() StoredAlarm {
	return StoredAlarm{
		Key:                  a.Key,
		Label:                a.Label,
		Enabled:              a.Enabled,
		Repeat:               a.Repeat,
		Snooze:               a.Snooze,
		BaseTime:             FormatTime(a.BaseTime),
		RepeatDaysLocalized:  append([]string(nil), a.RepeatDaysLocalized...),
		RepeatDaysNormalized: append([]int(nil), a.RepeatDaysNormalized...),
	}
}

// FromStored restores an alarm from its storage representation.
func FromStored(stored StoredAlarm) (*NormalizedAlarm, error) {
	baseTime, err := ParseTime(stored.BaseTime)
	if err != nil {
		return nil, fmt.Errorf("invalid stored base_time %q: %w", stored.BaseTime, err)
	}

	return &NormalizedAlarm{
		Key:                  stored.Key,
		Label:                stored.Label,
		Enabled:              stored.Enabled,
		Repeat:               stored.Repeat,
		Snooze:               stored.Snooze,
		BaseTime:             baseTime,
		RepeatDaysLocalized:  append([]string(nil), stored.RepeatDaysLocalized...),
		RepeatDaysNormalized: append([]int(nil), stored.RepeatDaysNormalized...),
	}, nil
}

// FormatTime renders a timestamp for storage as ISO-8601 with offset.
func FormatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

// FormatTimePtr renders an optional timestamp, returning "" for nil.
func FormatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}

	return FormatTime(*t)
}

// ParseTime parses an ISO-8601 timestamp produced by FormatTime.
func ParseTime(value string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, value)
}

// ParseTimePtr parses an optional stored timestamp, returning nil for "".
func ParseTimePtr(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}

	t, err := ParseTime(value)
	if err != nil {
		return nil, err
	}

	return &t, nil
}
