package protocol

// EventType classifies a balancer event delivered to sinks.
type EventType string

// Event type constants. The text sink only renders Blocked, ServerAdded and
// ServerRemoved; the statistics recorder stores all of them.
const (
	EventArrived       EventType = "arrived"
	EventBlocked       EventType = "blocked"
	EventAssigned      EventType = "assigned"
	EventCompleted     EventType = "completed"
	EventDropped       EventType = "dropped"
	EventServerAdded   EventType = "server_added"
	EventServerRemoved EventType = "server_removed"
)

// AllEventTypes lists every event type in emission order within a cycle.
var AllEventTypes = []EventType{ //nolint:gochecknoglobals // read-only lookup table
	EventCompleted,
	EventAssigned,
	EventArrived,
	EventBlocked,
	EventServerAdded,
	EventServerRemoved,
	EventDropped,
}

// Valid reports whether t is a known event type.
func (t EventType) Valid() bool {
	for _, known := range AllEventTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ServerState is the observable state of one server in a snapshot.
type ServerState string

// Server state constants.
const (
	ServerIdle ServerState = "idle"
	ServerBusy ServerState = "busy"
)
