// Package alarm contains core domain types for next-alarm tracking.
//
// It defines NormalizedAlarm (one validated alarm from a device payload),
// NormalizedEvent (the outcome of normalizing one payload),
// NextAlarmComputation (the per-person scheduling result) and PersonState
// (the per-person mutable aggregate) with Clone helpers to avoid leaking
// internal references, plus slug derivation and the JSON-safe storage
// representation used by the snapshot repository.
package alarm
