// Package state implements snapshot persistence for per-person alarm state.
//
// The FileRepository stores and loads the snapshot as JSON on disk and
// exposes a Repository interface that the coordinator depends on. Persons
// are loaded as raw JSON so that one corrupt record can be skipped without
// losing its siblings. A Memory repository backs tests.
package state
