// Package notify broadcasts update signals to presentation-layer consumers.
//
// Signals are keyed by string: one per-person update signal plus a shared
// new-person signal used to lazily instantiate views. The production
// dispatcher publishes to a Redis channel; Memory records signals for tests.
package notify
