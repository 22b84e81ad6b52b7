package alarm

import (
	"fmt"
	"time"
)

// MapVersion is the current weekday-map format version. It is stored per
// person and bumped on every re-normalization.
const MapVersion = 1

// PersonState is the per-person mutable aggregate, keyed by the slug derived
// from the person's display name. It lives for the lifetime of the owning
// process session and is snapshotted after every mutation.
type PersonState struct {
	// Slug is the stable internal key derived from Person.
	Slug string
	// Person is the raw display name from the latest event.
	Person string
	// NormalizedAlarms is the latest validated alarm set, keyed by alarm key.
	NormalizedAlarms map[string]*NormalizedAlarm
	// ParseErrors holds the last normalization's per-alarm errors.
	ParseErrors []string
	// MapErrors holds the last normalization's weekday-map errors.
	MapErrors []string
	// MapLocale is the locale selected during the last normalization.
	MapLocale string
	// LastEventTime is when the last alarm-data event was fired at the source.
	LastEventTime *time.Time
	// RawEvent mirrors the last received envelope for diagnostics.
	RawEvent map[string]any
	// NextAlarmKey identifies the currently selected next alarm, "" when none.
	NextAlarmKey string
	// NextAlarmTime is the selected alarm's next-fire instant, nil when none.
	NextAlarmTime *time.Time
	// PreviousAlarmKey retains the key of the alarm that fired last,
	// across one rollover, for display.
	PreviousAlarmKey string
	// PreviousAlarmTime retains the instant of the alarm that fired last.
	PreviousAlarmTime *time.Time
	// Note explains why no next alarm is available, "" when one is.
	Note string
	// Schedule maps every alarm key to its own next-fire instant.
	Schedule map[string]*time.Time
	// MapVersion records the weekday-map format version this state was
	// last normalized with.
	MapVersion int
	// LastRefreshStart is when the source last announced a refresh cycle.
	LastRefreshStart *time.Time
	// LastRefreshEnd is when alarm data last arrived.
	LastRefreshEnd *time.Time
	// RefreshProblem is set when an announced refresh did not deliver data
	// within the configured timeout.
	RefreshProblem bool
	// RefreshToken is the opaque correlation token of the pending refresh
	// cycle; only a timeout carrying the current token may set
	// RefreshProblem. Empty when no cycle is pending.
	RefreshToken string
	// RolloverTimerID is the handle of the live rollover timer, "" when none.
	RolloverTimerID string
	// RefreshTimerID is the handle of the live refresh-timeout timer, "" when none.
	RefreshTimerID string
}

// NewPersonState creates an empty state for a person.
func NewPersonState(slug, person string) *PersonState {
	return &PersonState{
		Slug:             slug,
		Person:           person,
		NormalizedAlarms: make(map[string]*NormalizedAlarm),
		Schedule:         make(map[string]*time.Time),
		MapVersion:       MapVersion,
	}
}

// StoredPerson is the JSON-safe storage representation of a PersonState.
// Timer handles and the refresh token are deliberately not persisted; they
// only make sense within a live process.
type StoredPerson struct {
	Person            string                 `json:"person"`
	NormalizedAlarms  map[string]StoredAlarm `json:"normalized_alarms"`
	ParseErrors       []string               `json:"parse_errors"`
	MapErrors         []string               `json:"map_errors"`
	MapLocale         string                 `json:"map_locale"`
	LastEventTime     string                 `json:"last_event_time,omitempty"`
	RawEvent          map[string]any         `json:"raw_event,omitempty"`
	NextAlarmKey      string                 `json:"next_alarm_key"`
	NextAlarmTime     string                 `json:"next_alarm_time,omitempty"`
	PreviousAlarmKey  string                 `json:"previous_alarm_key"`
	PreviousAlarmTime string                 `json:"previous_alarm_time,omitempty"`
	Note              string                 `json:"note"`
	Schedule          map[string]string      `json:"schedule"`
	MapVersion        int                    `json:"map_version"`
	LastRefreshStart  string                 `json:"last_refresh_start,omitempty"`
	LastRefreshEnd    string                 `json:"last_refresh_end,omitempty"`
	RefreshProblem    bool                   `json:"refresh_problem"`
}

// ToStored converts the state into its storage representation.
func (s *PersonState) ToStored() StoredPerson {
	alarms := make(map[string]StoredAlarm, len(s.NormalizedAlarms))
	for key, a := range s.NormalizedAlarms {
		alarms[key] = a.ToStored()
	}

	schedule := make(map[string]string, len(s.Schedule))
	for key, t := range s.Schedule {
		schedule[key] = FormatTimePtr(t)
	}

	return StoredPerson{
		Person:            s.Person,
		NormalizedAlarms:  alarms,
		ParseErrors:       append([]string(nil), s.ParseErrors...),
		MapErrors:         append([]string(nil), s.MapErrors...),
		MapLocale:         s.MapLocale,
		LastEventTime:     FormatTimePtr(s.LastEventTime),
		RawEvent:          s.RawEvent,
		NextAlarmKey:      s.NextAlarmKey,
		NextAlarmTime:     FormatTimePtr(s.NextAlarmTime),
		PreviousAlarmKey:  s.PreviousAlarmKey,
		PreviousAlarmTime: FormatTimePtr(s.PreviousAlarmTime),
		Note:              s.Note,
		Schedule:          schedule,
		MapVersion:        s.MapVersion,
		LastRefreshStart:  FormatTimePtr(s.LastRefreshStart),
		LastRefreshEnd:    FormatTimePtr(s.LastRefreshEnd),
		RefreshProblem:    s.RefreshProblem,
	}
}

// PersonFromStored restores a person state from storage. Optional timestamp
// fields that fail to parse fall back to unset; a broken alarm entry fails
// the whole person so the caller can skip the record with a diagnostic.
func PersonFromStored(slug string, stored StoredPerson) (*PersonState, error) {
	state := NewPersonState(slug, stored.Person)
	if state.Person == "" {
		state.Person = slug
	}

	for key, storedAlarm := range stored.NormalizedAlarms {
		restored, err := FromStored(storedAlarm)
		if err != nil {
			return nil, fmt.Errorf("alarm %s: %w", key, err)
		}

		state.NormalizedAlarms[key] = restored
	}

	state.ParseErrors = append([]string(nil), stored.ParseErrors...)
	state.MapErrors = append([]string(nil), stored.MapErrors...)
	state.MapLocale = stored.MapLocale
	state.LastEventTime = parseOptionalTime(stored.LastEventTime)
	state.RawEvent = stored.RawEvent
	state.NextAlarmKey = stored.NextAlarmKey
	state.NextAlarmTime = parseOptionalTime(stored.NextAlarmTime)
	state.PreviousAlarmKey = stored.PreviousAlarmKey
	state.PreviousAlarmTime = parseOptionalTime(stored.PreviousAlarmTime)
	state.Note = stored.Note
	state.LastRefreshStart = parseOptionalTime(stored.LastRefreshStart)
	state.LastRefreshEnd = parseOptionalTime(stored.LastRefreshEnd)
	state.RefreshProblem = stored.RefreshProblem

	if stored.MapVersion > 0 {
		state.MapVersion = stored.MapVersion
	}

	for key, value := range stored.Schedule {
		state.Schedule[key] = parseOptionalTime(value)
	}

	return state, nil
}

// parseOptionalTime parses a stored timestamp, treating "" and unparsable
// values as unset.
func parseOptionalTime(value string) *time.Time {
	t, err := ParseTimePtr(value)
	if err != nil {
		return nil
	}

	return t
}
