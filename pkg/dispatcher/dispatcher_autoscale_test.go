package dispatcher //nolint:testpackage // internal white-box tests need access to unexported fields

import (
	"testing"

	"lbsim/pkg/protocol"
)

// TestAutoScale_Up verifies that a queue above servers*120 adds one server.
func TestAutoScale_Up(t *testing.T) {
	d, sink := newTestDispatcher(t, Config{Servers: 2})
	fillQueue(t, d, 241, 10)

	d.rescale()

	if d.ServerCount() != 3 {
		t.Fatalf("ServerCount() = %d, want 3", d.ServerCount())
	}
	added := sink.ofType(protocol.EventServerAdded)
	if len(added) != 1 || added[0].Total != 3 {
		t.Fatalf("server_added events = %+v", added)
	}
	if len(sink.ofType(protocol.EventServerRemoved)) != 0 {
		t.Error("scale-down fired in the same evaluation as scale-up")
	}
}

// TestAutoScale_UpThroughTick reaches the scale-up threshold after step 3
// has drained one request per idle server.
func TestAutoScale_UpThroughTick(t *testing.T) {
	d, _ := newTestDispatcher(t, Config{Servers: 2})
	fillQueue(t, d, 243, 10)

	d.Tick()

	if d.QueueLen() != 241 {
		t.Fatalf("QueueLen() = %d, want 241", d.QueueLen())
	}
	if d.ServerCount() != 3 {
		t.Fatalf("ServerCount() = %d, want 3", d.ServerCount())
	}
	snap := d.Snapshot()
	if snap.Servers[2].State != protocol.ServerIdle {
		t.Errorf("new server state = %q, want idle", snap.Servers[2].State)
	}
}

func TestAutoScale_AtThresholdNoChange(t *testing.T) {
	d, _ := newTestDispatcher(t, Config{Servers: 2})
	fillQueue(t, d, 240, 10)

	d.rescale()

	if d.ServerCount() != 2 {
		t.Errorf("ServerCount() = %d, want 2 (240 is not above 2*120)", d.ServerCount())
	}
}

func TestAutoScale_Down(t *testing.T) {
	tests := []struct {
		name        string
		servers     int
		queued      int
		wantServers int
	}{
		{name: "three servers short queue", servers: 3, queued: 10, wantServers: 2},
		{name: "floor of one server", servers: 1, queued: 0, wantServers: 1},
		{name: "at threshold keeps pool", servers: 3, queued: 150, wantServers: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, sink := newTestDispatcher(t, Config{Servers: tt.servers})
			fillQueue(t, d, tt.queued, 10)

			d.rescale()

			if d.ServerCount() != tt.wantServers {
				t.Fatalf("ServerCount() = %d, want %d", d.ServerCount(), tt.wantServers)
			}
			removed := sink.ofType(protocol.EventServerRemoved)
			if want := tt.servers - tt.wantServers; len(removed) != want {
				t.Fatalf("server_removed events = %d, want %d", len(removed), want)
			}
		})
	}
}

func TestAutoScale_RemovesOnePerCycle(t *testing.T) {
	d, _ := newTestDispatcher(t, Config{Servers: 5})

	for i := 4; i >= 1; i-- {
		d.Tick()
		if d.ServerCount() != i {
			t.Fatalf("after cycle %d: ServerCount() = %d, want %d", d.Clock(), d.ServerCount(), i)
		}
	}
	d.Tick()
	if d.ServerCount() != 1 {
		t.Errorf("pool shrank below one server")
	}
}

// TestAutoScale_DownDropsInFlightRequest pins the observed behaviour that a
// busy server removed by scale-down loses its request: it is reported as
// dropped and is NOT requeued.
func TestAutoScale_DownDropsInFlightRequest(t *testing.T) {
	d, sink := newTestDispatcher(t, Config{Servers: 2})
	a := mustRequest(t, "10.3.3.1", 10)
	b := mustRequest(t, "10.3.3.2", 10)
	d.AddRequest(a)
	d.AddRequest(b)

	// Both requests are assigned, the queue is empty, so the tail server is
	// removed in the same cycle while busy with b.
	d.Tick()

	if d.ServerCount() != 1 {
		t.Fatalf("ServerCount() = %d, want 1", d.ServerCount())
	}
	if d.QueueLen() != 0 {
		t.Fatalf("QueueLen() = %d, dropped request was requeued", d.QueueLen())
	}
	dropped := sink.ofType(protocol.EventDropped)
	if len(dropped) != 1 || dropped[0].Request != b || dropped[0].Server != 1 {
		t.Fatalf("dropped events = %+v", dropped)
	}
	if cur, ok := d.servers[0].Current(); !ok || cur != a {
		t.Errorf("surviving server lost its job: %v %v", cur, ok)
	}
}
