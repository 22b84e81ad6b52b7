package schedule

import (
	"sort"
	"time"

	"github.com/andrzejf1994/ha-ios-nextalarm/internal/domain/alarm"
)

// lookaheadDays is today plus seven more days: enough to guarantee that a
// weekly repeating alarm with at least one valid day always resolves, even
// when the only day is today and its time already passed.
const lookaheadDays = 8

// SingleAlarmNext computes the next future firing instant for one alarm, or
// nil when it cannot fire. Disabled alarms never fire. One-shot alarms fire
// at their base time only while it is still strictly in the future; a past
// one-shot is exhausted and never re-offered.
func SingleAlarmNext(a *alarm.NormalizedAlarm, now time.Time, loc *time.Location) *time.Time {
	if !a.Enabled {
		return nil
	}

	if !a.Repeat {
		if a.BaseTime.After(now) {
			t := a.BaseTime

			return &t
		}

		return nil
	}

	if len(a.RepeatDaysNormalized) == 0 {
		return nil
	}

	days := make(map[int]bool, len(a.RepeatDaysNormalized))
	for _, day := range a.RepeatDaysNormalized {
		days[day] = true
	}

	localNow := now.In(loc)
	baseLocal := a.BaseTime.In(loc)

	for offset := 0; offset < lookaheadDays; offset++ {
		candidateDate := localNow.AddDate(0, 0, offset)
		if !days[mondayIndex(candidateDate.Weekday())] {
			continue
		}

		candidate := time.Date(
			candidateDate.Year(), candidateDate.Month(), candidateDate.Day(),
			baseLocal.Hour(), baseLocal.Minute(), baseLocal.Second(), baseLocal.Nanosecond(),
			loc)
		if candidate.After(now) {
			return &candidate
		}
	}

	return nil
}

// NextAlarm evaluates every alarm and selects the globally soonest one.
// Keys are scanned in ascending order and only a strictly earlier instant
// replaces the current best, so the lexically smallest key wins exact ties.
func NextAlarm(
	alarms map[string]*alarm.NormalizedAlarm,
	now time.Time,
	loc *time.Location,
) *alarm.NextAlarmComputation {
	scheduled := make(map[string]*time.Time, len(alarms))

	keys := make([]string, 0, len(alarms))
	for key, a := range alarms {
		keys = append(keys, key)
		scheduled[key] = SingleAlarmNext(a, now, loc)
	}

	sort.Strings(keys)

	var (
		nextAlarm *alarm.NormalizedAlarm
		nextTime  *time.Time
	)

	for _, key := range keys {
		candidate := scheduled[key]
		if candidate == nil {
			continue
		}

		if nextTime == nil || candidate.Before(*nextTime) {
			nextTime = candidate
			nextAlarm = alarms[key]
		}
	}

	note := ""

	switch {
	case len(alarms) == 0:
		note = alarm.NoteNoAlarms
	case allDisabled(alarms):
		note = alarm.NoteNoEnabled
	case nextTime == nil:
		note = alarm.NoteNoFuture
	}

	return &alarm.NextAlarmComputation{
		Alarm:    nextAlarm,
		NextTime: nextTime,
		Schedule: scheduled,
		Note:     note,
	}
}

// mondayIndex converts Go's Sunday-based weekday to the Monday=0 convention
// used by the locale tables.
func mondayIndex(day time.Weekday) int {
	return (int(day) + 6) % 7
}

func allDisabled(alarms map[string]*alarm.NormalizedAlarm) bool {
	for _, a := range alarms {
		if a.Enabled {
			return false
		}
	}

	return true
}
