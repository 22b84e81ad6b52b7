// Package coordinator owns the per-person alarm state machine.
//
// It consumes alarm-data and refresh-start events from the bus, normalizes
// payloads, computes the next alarm, arms rollover and refresh-timeout
// timers, persists a snapshot after every mutation and broadcasts update
// signals. One mutex serializes event handling and timer callbacks so state
// transitions never interleave.
package coordinator
