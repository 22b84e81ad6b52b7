package bus

import (
	"context"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/andrzejf1994/ha-ios-nextalarm/internal/domain/alarm"
)

// Inbound event types emitted by the companion app.
const (
	// EventNextAlarm carries a person's full alarm collection.
	EventNextAlarm = "ha_ios_nextalarm"
	// EventRefreshStart announces that the companion began a data refresh.
	EventRefreshStart = "ha_ios_nextalarm_refresh_start"
)

// Event is one inbound event.
type Event struct {
	// Type names the event kind.
	Type string
	// TimeFired is when the event was fired at the source; zero when the
	// envelope carried no timestamp.
	TimeFired time.Time
	// Data is the free-form payload.
	Data map[string]any
}

// Handler processes one inbound event.
type Handler func(ctx context.Context, event Event)

// Bus is the subscription interface consumed by the coordinator.
type Bus interface {
	// Subscribe registers a handler for an event type. Handlers for the
	// same type run in registration order.
	Subscribe(eventType string, handler Handler)
}

// envelope is the wire representation of an Event.
type envelope struct {
	Type      string         `json:"type"`
	TimeFired string         `json:"time_fired,omitempty"`
	Data      map[string]any `json:"data"`
}

// EncodeEvent renders an event into its wire envelope.
func EncodeEvent(event Event) ([]byte, error) {
	wire := envelope{
		Type: event.Type,
		Data: event.Data,
	}
	if !event.TimeFired.IsZero() {
		wire.TimeFired = alarm.FormatTime(event.TimeFired)
	}

	return json.Marshal(wire)
}

// DecodeEvent parses a wire envelope. An unparsable time_fired is treated
// as absent rather than failing the whole event.
func DecodeEvent(data []byte) (Event, error) {
	var wire envelope
	if err := json.Unmarshal(data, &wire); err != nil {
		return Event{}, err
	}

	event := Event{
		Type: wire.Type,
		Data: wire.Data,
	}

	if wire.TimeFired != "" {
		if fired, err := alarm.ParseTime(wire.TimeFired); err == nil {
			event.TimeFired = fired
		}
	}

	return event, nil
}

// Memory is a synchronous in-process bus used by tests and local wiring.
type Memory struct {
	// mu protects the handler table.
	mu sync.Mutex
	// handlers maps event type to its subscribers.
	handlers map[string][]Handler
}

// NewMemory creates an empty in-process bus.
func NewMemory() *Memory {
	return &Memory{
		handlers: make(map[string][]Handler),
	}
}

// Subscribe registers a handler for an event type.
func (m *Memory) Subscribe(eventType string, handler Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.handlers[eventType] = append(m.handlers[eventType], handler)
}

// Publish delivers an event synchronously to every subscribed handler.
func (m *Memory) Publish(ctx context.Context, event Event) {
	m.mu.Lock()
	handlers := append([]Handler(nil), m.handlers[event.Type]...)
	m.mu.Unlock()

	for _, handler := range handlers {
		handler(ctx, event)
	}
}
