package emitter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andrzejf1994/ha-ios-nextalarm/internal/bus"
)

// TestBuildEventRefreshStart verifies the refresh-start envelope shape.
func TestBuildEventRefreshStart(t *testing.T) {
	t.Parallel()

	event, err := buildEvent(&Options{Person: "Andrzej", RefreshStart: true})
	require.NoError(t, err)
	require.Equal(t, bus.EventRefreshStart, event.Type)
	require.Equal(t, "Andrzej", event.Data["person"])
	require.NotContains(t, event.Data, "alarms")
	require.False(t, event.TimeFired.IsZero())
}

// TestBuildEventAlarmData verifies the alarm-data envelope is built from the
// JSON file.
func TestBuildEventAlarmData(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "alarms.json")
	payload := `{"alarm_1":{"Date":"18.09.2025 05:15","State":"on","Repeat":"off","Snooze":"off"}}`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o600))

	event, err := buildEvent(&Options{Person: "Andrzej", AlarmsFile: path})
	require.NoError(t, err)
	require.Equal(t, bus.EventNextAlarm, event.Type)

	alarms, ok := event.Data["alarms"].(map[string]any)
	require.True(t, ok)
	require.Contains(t, alarms, "alarm_1")
}

// TestBuildEventMissingInputs verifies the required-flag errors.
func TestBuildEventMissingInputs(t *testing.T) {
	t.Parallel()

	_, err := buildEvent(&Options{Person: "Andrzej"})
	require.ErrorIs(t, err, errAlarmsFileRequired)

	_, err = buildEvent(&Options{Person: "Andrzej", AlarmsFile: filepath.Join(t.TempDir(), "nope.json")})
	require.ErrorContains(t, err, "read alarms file")

	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{oops"), 0o600))

	_, err = buildEvent(&Options{Person: "Andrzej", AlarmsFile: path})
	require.ErrorContains(t, err, "decode alarms file")
}
