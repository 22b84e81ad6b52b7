// Package weekday holds the locale tables that map human day names to a
// canonical weekday index (Monday=0 through Sunday=6).
//
// A built-in base table (English and Polish, full names plus common
// abbreviations) can be extended at runtime through a user-supplied JSON
// override which merges per locale. Day names are normalized before lookup:
// Unicode-decomposed, stripped of diacritics, spaces and hyphens removed,
// case-folded.
package weekday
