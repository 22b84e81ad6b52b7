// Package timer implements the point-in-time callback scheduler used for
// rollover and refresh-timeout timers.
//
// Tasks are keyed by string ID and kept in a min-heap; scheduling an ID that
// already exists replaces the previous task, which gives the caller the
// cancel-before-rearm behaviour for free. A single goroutine sleeps until
// the earliest deadline and fires callbacks on their own goroutines.
package timer
