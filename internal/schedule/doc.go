// Package schedule computes alarm occurrences.
//
// SingleAlarmNext resolves the next future firing instant of one alarm
// (one-shot or weekly-repeating); NextAlarm evaluates a person's whole alarm
// set and picks the globally soonest one with a deterministic tie-break on
// the alarm key.
package schedule
