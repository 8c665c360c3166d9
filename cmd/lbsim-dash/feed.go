package main

import (
	"fmt"

	"lbsim/pkg/dispatcher"
	"lbsim/pkg/protocol"
	"lbsim/pkg/simlog"
)

// maxFeedLines bounds the recent-events panel.
const maxFeedLines = 8

// feedLine is one rendered entry in the recent-events panel.
type feedLine struct {
	cycle int
	typ   protocol.EventType
	text  string
}

// eventFeed is the dashboard's dispatcher sink. It counts every event type
// and keeps the most recent notable lines.
type eventFeed struct {
	max    int
	lines  []feedLine
	counts map[protocol.EventType]int
}

func newEventFeed(maxLines int) *eventFeed {
	return &eventFeed{
		max:    maxLines,
		counts: make(map[protocol.EventType]int, len(protocol.AllEventTypes)),
	}
}

// RecordEvent implements dispatcher.Sink.
func (f *eventFeed) RecordEvent(ev dispatcher.Event) {
	f.counts[ev.Type]++

	text, ok := simlog.EventLine(ev)
	if !ok && ev.Type == protocol.EventDropped {
		text, ok = fmt.Sprintf("[x] Dropped request from %s on removed server %d", ev.Request.Source, ev.Server), true
	}
	if !ok {
		return
	}

	f.lines = append(f.lines, feedLine{cycle: ev.Cycle, typ: ev.Type, text: text})
	if len(f.lines) > f.max {
		f.lines = f.lines[len(f.lines)-f.max:]
	}
}

// RecordSnapshot implements dispatcher.Sink; the model reads snapshots directly.
func (f *eventFeed) RecordSnapshot(dispatcher.Snapshot) {}

// count returns how many events of typ have been seen.
func (f *eventFeed) count(typ protocol.EventType) int {
	return f.counts[typ]
}
