package weekday

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestBuildMapsBlank verifies that blank override text yields the base table.
func TestBuildMapsBlank(t *testing.T) {
	t.Parallel()

	table, errs := BuildMaps("   ")
	require.Empty(t, errs)
	require.Equal(t, []string{"en", "pl"}, table.Locales())
}

// TestBuildMapsInvalidJSON verifies the error for unparsable override text.
func TestBuildMapsInvalidJSON(t *testing.T) {
	t.Parallel()

	table, errs := BuildMaps("{not json")
	require.Len(t, errs, 1)
	require.Contains(t, errs[0], "Invalid custom map JSON")
	// The base table survives the failure.
	require.True(t, table.Has("en"))
}

// TestBuildMapsNotObject verifies the error for a non-object document.
func TestBuildMapsNotObject(t *testing.T) {
	t.Parallel()

	_, errs := BuildMaps(`["mon"]`)
	require.Equal(t, []string{"Custom map must be a JSON object"}, errs)
}

// TestBuildMapsNewLocale verifies that a new locale is appended after the
// built-in ones and its entries resolve.
func TestBuildMapsNewLocale(t *testing.T) {
	t.Parallel()

	table, errs := BuildMaps(`{"de": {"Montag": 0, "Dienstag": 1}}`)
	require.Empty(t, errs)
	require.Equal(t, []string{"en", "pl", "de"}, table.Locales())

	index, ok := table.Lookup("de", "montag")
	require.True(t, ok)
	require.Equal(t, 0, index)
}

// TestBuildMapsMergeExisting verifies that overriding an existing locale
// keeps its base entries.
func TestBuildMapsMergeExisting(t *testing.T) {
	t.Parallel()

	table, errs := BuildMaps(`{"en": {"Mondayy": 0}}`)
	require.Empty(t, errs)

	index, ok := table.Lookup("en", "mondayy")
	require.True(t, ok)
	require.Equal(t, 0, index)

	index, ok = table.Lookup("en", "tuesday")
	require.True(t, ok)
	require.Equal(t, 1, index)
}

// TestBuildMapsBadEntries verifies that bad entries are reported one by one
// while good entries in the same document still apply.
func TestBuildMapsBadEntries(t *testing.T) {
	t.Parallel()

	table, errs := BuildMaps(`{
		"xx": {"alpha": 0, "beta": "two", "gamma": 9, "delta": "3"},
		"yy": ["not", "an", "object"]
	}`)

	require.Len(t, errs, 3)
	require.Contains(t, errs[0], "Custom map value for 'beta' in locale 'xx' is not an integer")
	require.Contains(t, errs[1], "Custom map value for 'gamma' in locale 'xx' must be between 0 and 6")
	require.Contains(t, errs[2], "Custom map for locale 'yy' must be an object")

	index, ok := table.Lookup("xx", "alpha")
	require.True(t, ok)
	require.Equal(t, 0, index)

	// Numeric strings coerce to integers.
	index, ok = table.Lookup("xx", "delta")
	require.True(t, ok)
	require.Equal(t, 3, index)

	require.False(t, table.Has("yy"))
}

// TestBuildMapsFractionalTruncates verifies that fractional numbers truncate
// toward zero.
func TestBuildMapsFractionalTruncates(t *testing.T) {
	t.Parallel()

	table, errs := BuildMaps(`{"xx": {"alpha": 4.7}}`)
	require.Empty(t, errs)

	index, ok := table.Lookup("xx", "alpha")
	require.True(t, ok)
	require.Equal(t, 4, index)
}
