package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// warsaw loads the timezone most fixtures use.
func warsaw(t *testing.T) *time.Location {
	t.Helper()

	loc, err := time.LoadLocation("Europe/Warsaw")
	require.NoError(t, err)

	return loc
}

// TestParseAlarmDatetimeOffset verifies that an explicit offset is honored
// and the result is converted into the configured timezone.
func TestParseAlarmDatetimeOffset(t *testing.T) {
	t.Parallel()

	loc := warsaw(t)

	parsed, err := ParseAlarmDatetime("2025-09-18T05:15:00+02:00", loc)
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 9, 18, 5, 15, 0, 0, loc), parsed)

	parsed, err = ParseAlarmDatetime("2025-09-18T03:15:00Z", loc)
	require.NoError(t, err)
	// 03:15 UTC is 05:15 in Warsaw during DST.
	require.Equal(t, 5, parsed.Hour())
	require.Equal(t, loc, parsed.Location())
}

// TestParseAlarmDatetimeNaive verifies that offset-less timestamps are read
// as wall-clock values in the configured timezone, not as UTC.
func TestParseAlarmDatetimeNaive(t *testing.T) {
	t.Parallel()

	loc := warsaw(t)
	want := time.Date(2025, 9, 18, 5, 15, 0, 0, loc)

	for _, input := range []string{
		"2025-09-18T05:15:00",
		"2025-09-18 05:15:00",
		"2025-09-18T05:15",
		"18.09.2025 05:15",
	} {
		parsed, err := ParseAlarmDatetime(input, loc)
		require.NoError(t, err, input)
		require.True(t, want.Equal(parsed), input)
	}
}

// TestParseAlarmDatetimeMeridiem verifies the 12-hour form, including
// lowercase meridiem markers.
func TestParseAlarmDatetimeMeridiem(t *testing.T) {
	t.Parallel()

	loc := warsaw(t)

	parsed, err := ParseAlarmDatetime("9/18/2025 5:15 AM", loc)
	require.NoError(t, err)
	require.True(t, time.Date(2025, 9, 18, 5, 15, 0, 0, loc).Equal(parsed))

	parsed, err = ParseAlarmDatetime("9/18/2025 10:30 pm", loc)
	require.NoError(t, err)
	require.True(t, time.Date(2025, 9, 18, 22, 30, 0, 0, loc).Equal(parsed))
}

// TestParseAlarmDatetimeErrors verifies the blank and unsupported cases.
func TestParseAlarmDatetimeErrors(t *testing.T) {
	t.Parallel()

	loc := warsaw(t)

	_, err := ParseAlarmDatetime("   ", loc)
	require.ErrorIs(t, err, ErrMissingDatetime)

	_, err = ParseAlarmDatetime("tomorrow at noon", loc)
	require.ErrorContains(t, err, "unsupported datetime format: tomorrow at noon")
}
