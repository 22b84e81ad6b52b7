// Package config defines the service settings shared by the nextalarm
// binaries and provides helpers to load, validate and save them in YAML
// format.
//
// The Config type covers the event-bus and notification endpoints, the
// snapshot file location and the alarm-normalization options (weekday
// locale, custom weekday map, refresh timeout).
package config
