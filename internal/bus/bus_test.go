package bus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestEventCodecRoundTrip verifies the wire envelope round-trips an event.
func TestEventCodecRoundTrip(t *testing.T) {
	t.Parallel()

	fired := time.Date(2025, 9, 17, 18, 16, 18, 0, time.UTC)
	original := Event{
		Type:      EventNextAlarm,
		TimeFired: fired,
		Data: map[string]any{
			"person": "Andrzej",
			"alarms": map[string]any{"alarm_1": map[string]any{"Date": "18.09.2025 05:15"}},
		},
	}

	encoded, err := EncodeEvent(original)
	require.NoError(t, err)

	decoded, err := DecodeEvent(encoded)
	require.NoError(t, err)
	require.Equal(t, EventNextAlarm, decoded.Type)
	require.True(t, fired.Equal(decoded.TimeFired))
	require.Equal(t, "Andrzej", decoded.Data["person"])
}

// TestDecodeEventBadTimestamp verifies an unparsable time_fired leaves the
// event usable with a zero timestamp.
func TestDecodeEventBadTimestamp(t *testing.T) {
	t.Parallel()

	decoded, err := DecodeEvent([]byte(`{"type":"ha_ios_nextalarm","time_fired":"eighteen o'clock","data":{}}`))
	require.NoError(t, err)
	require.True(t, decoded.TimeFired.IsZero())
	require.Equal(t, EventNextAlarm, decoded.Type)
}

// TestDecodeEventMalformed verifies broken envelopes fail decoding.
func TestDecodeEventMalformed(t *testing.T) {
	t.Parallel()

	_, err := DecodeEvent([]byte("not json"))
	require.Error(t, err)
}

// TestMemoryBusOrder verifies handlers run synchronously in registration
// order and only for their own event type.
func TestMemoryBusOrder(t *testing.T) {
	t.Parallel()

	m := NewMemory()

	var calls []string

	m.Subscribe(EventNextAlarm, func(_ context.Context, _ Event) {
		calls = append(calls, "first")
	})
	m.Subscribe(EventNextAlarm, func(_ context.Context, _ Event) {
		calls = append(calls, "second")
	})
	m.Subscribe(EventRefreshStart, func(_ context.Context, _ Event) {
		calls = append(calls, "refresh")
	})

	m.Publish(context.Background(), Event{Type: EventNextAlarm})
	require.Equal(t, []string{"first", "second"}, calls)
}
