// Package queue defines gate events exchanged over the message broker
// and the background consumer that turns them into an audit log.
package queue

// GateEventQueue is the single durable queue carrying all gate events.
const GateEventQueue = "gate.events"

// Event kinds carried in the "kind" field of every gate event.
const (
	KindVisitorRegistered = "visitor.registered"
	KindVisitorDecided    = "visitor.decided"
	KindVisitorExited     = "visitor.exited"
	KindBusRegistered     = "bus.registered"
	KindBusExited         = "bus.exited"
)

// GateEvent is published on every state change at the gate. It carries
// enough denormalized detail for downstream consumers to log or notify
// without querying the primary database.
type GateEvent struct {
	Kind        string `json:"kind"`
	VisitorID   uint64 `json:"visitor_id,omitempty"`
	BusID       uint64 `json:"bus_id,omitempty"`
	Name        string `json:"name,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Purpose     string `json:"purpose,omitempty"`
	BusNumber   string `json:"bus_number,omitempty"`
	Authority   string `json:"authority,omitempty"`
	Status      string `json:"status"`
	RecordedBy  string `json:"recorded_by,omitempty"`
	OccurredAt  string `json:"occurred_at"`
}
