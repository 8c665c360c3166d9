package dispatcher //nolint:testpackage // internal white-box tests need access to unexported fields

import (
	"fmt"
	"math/rand"
	"testing"

	"lbsim/pkg/protocol"
	"lbsim/pkg/request"
)

// recordingSink captures everything a dispatcher reports.
type recordingSink struct {
	events    []Event
	snapshots []Snapshot
	closed    bool
}

func (r *recordingSink) RecordEvent(ev Event)      { r.events = append(r.events, ev) }
func (r *recordingSink) RecordSnapshot(s Snapshot) { r.snapshots = append(r.snapshots, s) }

// closingSink is a recordingSink that also implements io.Closer.
type closingSink struct {
	recordingSink
}

func (c *closingSink) Close() error {
	c.closed = true
	return nil
}

// ofType returns the recorded events of type typ.
func (r *recordingSink) ofType(typ protocol.EventType) []Event {
	var out []Event
	for _, ev := range r.events {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

// scriptedGenerator returns a fixed sequence of requests, then repeats the last.
type scriptedGenerator struct {
	reqs []request.Request
	next int
}

func (g *scriptedGenerator) Next() request.Request {
	r := g.reqs[g.next]
	if g.next < len(g.reqs)-1 {
		g.next++
	}
	return r
}

// mustRequest builds a request or fails the test.
func mustRequest(t *testing.T, src string, duration int) request.Request {
	t.Helper()
	r, err := request.New(src, "10.9.9.9", duration)
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return r
}

// fillQueue enqueues n requests of the given duration directly.
func fillQueue(t *testing.T, d *Dispatcher, n, duration int) {
	t.Helper()
	for i := 0; i < n; i++ {
		d.AddRequest(mustRequest(t, fmt.Sprintf("172.16.%d.%d", i/256, i%256), duration))
	}
}

// newTestDispatcher builds a seeded dispatcher that records into a fresh sink.
func newTestDispatcher(t *testing.T, cfg Config, opts ...Option) (*Dispatcher, *recordingSink) {
	t.Helper()
	sink := &recordingSink{}
	all := append([]Option{
		WithRand(rand.New(rand.NewSource(1))),
		WithSink(sink),
	}, opts...)
	d, err := New(cfg, all...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d, sink
}
