package notify

import (
	"context"
	"sync"
)

// signalPrefix namespaces every signal emitted by this service.
const signalPrefix = "ha_ios_nextalarm"

// NewPersonSignal is broadcast once when a previously unseen person appears.
const NewPersonSignal = signalPrefix + "_new_person"

// PersonUpdatedSignal returns the per-person update signal name.
func PersonUpdatedSignal(slug string) string {
	return signalPrefix + "_person_updated_" + slug
}

// Dispatcher broadcasts a signal with an optional JSON-safe payload.
type Dispatcher interface {
	Send(ctx context.Context, signal string, payload any)
}

// Sent is one recorded broadcast.
type Sent struct {
	// Signal is the broadcast key.
	Signal string
	// Payload is the value passed to Send.
	Payload any
}

// Memory records broadcasts for inspection in tests.
type Memory struct {
	// mu protects the recorded slice.
	mu sync.Mutex
	// sent accumulates broadcasts in send order.
	sent []Sent
}

// NewMemory creates an empty recording dispatcher.
func NewMemory() *Memory {
	return &Memory{}
}

// Send records the broadcast.
func (m *Memory) Send(_ context.Context, signal string, payload any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sent = append(m.sent, Sent{Signal: signal, Payload: payload})
}

// Sent returns a copy of all recorded broadcasts.
func (m *Memory) Sent() []Sent {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]Sent(nil), m.sent...)
}
