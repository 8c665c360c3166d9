package main

import (
	"fmt"
	"io"

	"lbsim/pkg/eventlog"
	"lbsim/pkg/protocol"
)

// summaryLabels orders the event counts in the stats table.
var summaryLabels = []struct { //nolint:gochecknoglobals // fixed display table
	typ   protocol.EventType
	label string
}{
	{protocol.EventArrived, "Arrived"},
	{protocol.EventBlocked, "Blocked"},
	{protocol.EventAssigned, "Assigned"},
	{protocol.EventCompleted, "Completed"},
	{protocol.EventDropped, "Dropped"},
	{protocol.EventServerAdded, "Servers added"},
	{protocol.EventServerRemoved, "Servers removed"},
}

// writeSummary prints s as a two-column table.
func writeSummary(w io.Writer, s eventlog.Summary) {
	fmt.Fprintln(w, "Run summary")
	fmt.Fprintf(w, "  %-16s %d\n", "Cycles", s.Cycles)
	for _, l := range summaryLabels {
		fmt.Fprintf(w, "  %-16s %d\n", l.label, s.Counts[l.typ])
	}
	fmt.Fprintf(w, "  %-16s %d\n", "Peak queue", s.PeakQueue)
	fmt.Fprintf(w, "  %-16s %d\n", "Peak servers", s.PeakServers)
	fmt.Fprintf(w, "  %-16s %.2f\n", "Avg busy", s.AvgBusy)
	fmt.Fprintf(w, "  %-16s %d\n", "Final servers", s.FinalServers)
	fmt.Fprintf(w, "  %-16s %d\n", "Final queue", s.FinalQueue)

	if len(s.TopBlocked) > 0 {
		fmt.Fprintln(w, "Top blocked sources")
		for _, sc := range s.TopBlocked {
			fmt.Fprintf(w, "  %-16s %d\n", sc.Source, sc.Count)
		}
	}
	fmt.Fprintln(w)
}
