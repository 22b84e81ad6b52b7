package alarm

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestBuildPreviewOrderAndCap verifies key ordering and the entry cap.
func TestBuildPreviewOrderAndCap(t *testing.T) {
	t.Parallel()

	alarms := make(map[string]*NormalizedAlarm)
	schedule := make(map[string]*time.Time)
	next := time.Date(2025, 9, 18, 5, 15, 0, 0, time.UTC)

	for i := 0; i < PreviewLimit+2; i++ {
		key := fmt.Sprintf("alarm_%d", i)
		alarms[key] = &NormalizedAlarm{Key: key, Label: key, Enabled: true}
		schedule[key] = &next
	}

	preview := BuildPreview(alarms, schedule)

	require.Len(t, preview, PreviewLimit)
	require.Equal(t, "alarm_0", preview[0].Key)
	require.Equal(t, "alarm_1", preview[1].Key)
	require.Equal(t, FormatTime(next), preview[0].Next)
}

// TestBuildPreviewNilNext verifies that an unscheduled alarm renders with an
// empty next field.
func TestBuildPreviewNilNext(t *testing.T) {
	t.Parallel()

	alarms := map[string]*NormalizedAlarm{
		"a": {Key: "a", Label: "a"},
	}

	preview := BuildPreview(alarms, map[string]*time.Time{})

	require.Len(t, preview, 1)
	require.Empty(t, preview[0].Next)
}

// TestDescribeTimeUntil verifies the rendered countdown forms.
func TestDescribeTimeUntil(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 9, 17, 18, 0, 0, 0, time.UTC)

	cases := map[time.Duration]string{
		26*time.Hour + 5*time.Minute: "in 1d 2h 5m",
		90 * time.Minute:             "in 1h 30m",
		45 * time.Second:             "in 45s",
		-time.Minute:                 "due",
	}
	for delta, want := range cases {
		target := now.Add(delta)
		require.Equal(t, want, DescribeTimeUntil(&target, now), delta.String())
	}

	require.Empty(t, DescribeTimeUntil(nil, now))
}
