package alarm

import "time"

// NormalizedEvent is the outcome of normalizing one incoming payload.
type NormalizedEvent struct {
	// Alarms maps alarm key to its normalized form; only successfully
	// parsed entries are present.
	Alarms map[string]*NormalizedAlarm
	// MapLocale is the locale selected for day-name interpretation,
	// shared by the whole event.
	MapLocale string
	// ParseErrors lists human-readable errors in encounter order, one or
	// more per malformed alarm.
	ParseErrors []string
	// MapErrors carries errors from building the weekday map itself,
	// independent of any alarm.
	MapErrors []string
}

// NextAlarmComputation is the result of evaluating the next alarm for a person.
type NextAlarmComputation struct {
	// Alarm is the selected alarm, or nil when none qualifies.
	Alarm *NormalizedAlarm
	// NextTime is the selected alarm's resolved next-fire instant, or nil.
	NextTime *time.Time
	// Schedule maps every alarm key to its own next-fire instant (nil when
	// the alarm yields none), kept for diagnostics.
	Schedule map[string]*time.Time
	// Note is one of the Note* codes, or "" when a valid next alarm exists.
	Note string
}
