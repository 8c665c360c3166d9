// Package simlog renders dispatcher activity as text: the append-only log
// file written during a run and the console observer.
package simlog

import (
	"fmt"
	"io"
	"strconv"

	"lbsim/pkg/dispatcher"
	"lbsim/pkg/protocol"
)

// EventLine returns the log line for ev. Only rejections and scale events
// have a textual form; ok is false for every other event type.
func EventLine(ev dispatcher.Event) (line string, ok bool) {
	switch ev.Type {
	case protocol.EventBlocked:
		return protocol.PrefixBlocked + ev.Request.Source, true
	case protocol.EventServerAdded:
		return protocol.PrefixAdded + strconv.Itoa(ev.Total), true
	case protocol.EventServerRemoved:
		return protocol.PrefixRemoved + strconv.Itoa(ev.Total), true
	default:
		return "", false
	}
}

// WriteSnapshot writes one cycle block:
//
//	Clock Cycle: <n>
//	Server <i>: Idle | Busy (<remaining> left)
//	Queue size: <n>
//	<blank line>
func WriteSnapshot(w io.Writer, s dispatcher.Snapshot) error {
	if _, err := fmt.Fprintf(w, "Clock Cycle: %d\n", s.Cycle); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	for _, st := range s.Servers {
		if _, err := fmt.Fprintf(w, "Server %d: %s\n", st.Index, st); err != nil {
			return fmt.Errorf("write snapshot: %w", err)
		}
	}
	if _, err := fmt.Fprintf(w, "Queue size: %d\n\n", s.QueueLen); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// describe renders the verbose per-server line used by the console.
func describe(st dispatcher.ServerStatus) string {
	if st.State != protocol.ServerBusy {
		return "Server is idle."
	}
	return fmt.Sprintf("Processing request from %s to %s with %d cycles left.",
		st.Request.Source, st.Request.Destination, st.TimeLeft)
}
