package dispatcher

import (
	"lbsim/pkg/protocol"
	"lbsim/pkg/server"

	"github.com/sirupsen/logrus"
)

// ServerPool holds the dispatcher's servers in stable index order. It is
// embedded in Dispatcher so that field access (d.servers) is promoted. Index
// order is service order for assignment, and scale-down always removes the
// tail.
type ServerPool struct {
	servers []*server.Server
}

// ServerCount returns the current pool size.
func (p *ServerPool) ServerCount() int {
	return len(p.servers)
}

// --- Per-cycle pool steps ---

// advanceServers ticks every server in index order and reports completions.
func (d *Dispatcher) advanceServers() {
	for i, s := range d.servers {
		if done := s.Tick(); done != nil {
			d.emit(Event{Type: protocol.EventCompleted, Server: i, Request: *done})
		}
	}
}

// assignIdle gives the queue head to each idle server, oldest request first,
// at most one request per server per cycle. A server freed by advanceServers
// in this same cycle is eligible.
func (d *Dispatcher) assignIdle() {
	for i, s := range d.servers {
		if !s.IsFree() || d.queue.IsEmpty() {
			continue
		}

		r, err := d.queue.Dequeue()
		if err != nil {
			d.violation(err, i)
			continue
		}
		if err := s.Assign(r); err != nil {
			d.violation(err, i)
			continue
		}

		d.emit(Event{Type: protocol.EventAssigned, Server: i, Request: r})
	}
}

// rescale applies the scale-up then the scale-down rule. Scale-down sees the
// pool size after any scale-up; the thresholds never overlap for a given size.
func (d *Dispatcher) rescale() {
	if d.queue.Len() > len(d.servers)*d.cfg.ScaleUpRatio {
		d.addServer()
	}
	if len(d.servers) > 1 && d.queue.Len() < len(d.servers)*d.cfg.ScaleDownRatio {
		d.removeServer()
	}
}

// addServer appends one idle server.
func (d *Dispatcher) addServer() {
	d.servers = append(d.servers, server.New())
	total := len(d.servers)

	d.log.WithFields(logrus.Fields{"cycle": d.clock, "servers": total, "queue": d.queue.Len()}).
		Debug("server added")
	d.emit(Event{Type: protocol.EventServerAdded, Server: total - 1, Total: total})
}

// removeServer discards the tail server whatever its state. A request it was
// processing is lost, not requeued, and reported as dropped.
func (d *Dispatcher) removeServer() {
	last := len(d.servers) - 1
	tail := d.servers[last]
	inFlight, wasBusy := tail.Release()

	d.servers[last] = nil
	d.servers = d.servers[:last]
	total := len(d.servers)

	d.log.WithFields(logrus.Fields{"cycle": d.clock, "servers": total, "queue": d.queue.Len()}).
		Debug("server removed")
	d.emit(Event{Type: protocol.EventServerRemoved, Server: last, Total: total})
	if wasBusy {
		d.emit(Event{Type: protocol.EventDropped, Server: last, Request: inFlight, Total: total})
	}
}

// serverStatuses captures every server's observable state in index order.
func (d *Dispatcher) serverStatuses() []ServerStatus {
	out := make([]ServerStatus, len(d.servers))
	for i, s := range d.servers {
		st := ServerStatus{
			Index:    i,
			State:    s.State(),
			TimeLeft: s.TimeLeft(),
		}
		if r, ok := s.Current(); ok {
			st.Request = r
		}
		out[i] = st
	}
	return out
}
