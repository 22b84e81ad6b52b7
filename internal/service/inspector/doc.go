// Package inspector reads the persisted snapshot and prints a per-person
// report: the selected next alarm, previous alarm, refresh health and a
// truncated alarm preview.
package inspector
