// Package normalize turns raw alarm-collection payloads into validated
// domain records.
//
// It parses heterogeneous textual timestamps (ISO-8601, day.month.year and
// 12-hour month/day/year forms), on/off style flags and localized repeat-day
// lists, collecting per-field errors without aborting the whole batch: a
// malformed alarm is dropped with an error while its siblings survive.
package normalize
