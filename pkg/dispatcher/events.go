package dispatcher

import (
	"fmt"

	"lbsim/pkg/protocol"
	"lbsim/pkg/request"
)

// NoServer marks events that are not tied to a server index.
const NoServer = -1

// Event is one state change inside a cycle.
type Event struct {
	Cycle   int
	Type    protocol.EventType
	Server  int             // server index, or NoServer
	Request request.Request // zero for scale events
	Total   int             // pool size after a scale event
}

// ServerStatus is the observable state of one server.
type ServerStatus struct {
	Index    int
	State    protocol.ServerState
	TimeLeft int
	Request  request.Request // in-flight request; zero when idle
}

// String renders "Idle" or "Busy (<n> left)".
func (s ServerStatus) String() string {
	if s.State == protocol.ServerBusy {
		return fmt.Sprintf("Busy (%d left)", s.TimeLeft)
	}
	return "Idle"
}

// Snapshot is the dispatcher state at the end of a cycle.
type Snapshot struct {
	Cycle    int
	Servers  []ServerStatus
	QueueLen int
}

// Busy returns how many servers are processing a request.
func (s Snapshot) Busy() int {
	n := 0
	for _, st := range s.Servers {
		if st.State == protocol.ServerBusy {
			n++
		}
	}
	return n
}

// Sink receives events as they happen and one snapshot per cycle. Sinks
// that also implement io.Closer are closed by Dispatcher.Close.
type Sink interface {
	RecordEvent(ev Event)
	RecordSnapshot(s Snapshot)
}

// Snapshot returns the current state, for on-demand observation.
func (d *Dispatcher) Snapshot() Snapshot {
	return Snapshot{
		Cycle:    d.clock,
		Servers:  d.serverStatuses(),
		QueueLen: d.queue.Len(),
	}
}

// emit stamps ev with the current cycle and hands it to every sink.
func (d *Dispatcher) emit(ev Event) {
	ev.Cycle = d.clock
	for _, s := range d.sinks {
		s.RecordEvent(ev)
	}
}

// emitSnapshot reports the end-of-cycle state to every sink.
func (d *Dispatcher) emitSnapshot() {
	if len(d.sinks) == 0 {
		return
	}
	snap := d.Snapshot()
	for _, s := range d.sinks {
		s.RecordSnapshot(snap)
	}
}
