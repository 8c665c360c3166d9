package simlog

import (
	"fmt"
	"io"
	"os"

	"lbsim/pkg/dispatcher"
	"lbsim/pkg/protocol"

	"github.com/mattn/go-isatty"
)

// Console prints dispatcher state for a human. Its content matches the log
// file; colour is added only when writing to a terminal.
type Console struct {
	w      io.Writer
	styled bool
	styles Styles
}

// NewConsole returns a console observer writing to w. Styling is enabled
// when w is a terminal.
func NewConsole(w io.Writer) *Console {
	return &Console{
		w:      w,
		styled: IsTerminal(w),
		styles: NewStyles(DefaultTheme()),
	}
}

// IsTerminal reports whether w is an *os.File attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// PrintState writes the snapshot in the log format.
func (c *Console) PrintState(s dispatcher.Snapshot) {
	if !c.styled {
		_ = WriteSnapshot(c.w, s)
		return
	}

	fmt.Fprintln(c.w, c.styles.Header.Render(fmt.Sprintf("Clock Cycle: %d", s.Cycle)))
	for _, st := range s.Servers {
		status := c.styles.Idle.Render(st.String())
		if st.State == protocol.ServerBusy {
			status = c.styles.Busy.Render(st.String())
		}
		fmt.Fprintf(c.w, "Server %d: %s\n", st.Index, status)
	}
	fmt.Fprintf(c.w, "Queue size: %d\n\n", s.QueueLen)
}

// PrintVerbose writes the per-server description: the request each busy
// server is processing and how long it has left.
func (c *Console) PrintVerbose(s dispatcher.Snapshot) {
	fmt.Fprintf(c.w, "Clock Cycle: %d\n", s.Cycle)
	for _, st := range s.Servers {
		fmt.Fprintf(c.w, "Server %d: %s\n", st.Index, describe(st))
	}
	fmt.Fprintf(c.w, "Queue size: %d\n", s.QueueLen)
}

// RecordEvent prints the event's log line, if it has one.
func (c *Console) RecordEvent(ev dispatcher.Event) {
	line, ok := EventLine(ev)
	if !ok {
		return
	}
	if c.styled {
		switch ev.Type {
		case protocol.EventBlocked:
			line = c.styles.Blocked.Render(line)
		case protocol.EventServerAdded:
			line = c.styles.Added.Render(line)
		case protocol.EventServerRemoved:
			line = c.styles.Removed.Render(line)
		}
	}
	fmt.Fprintln(c.w, line)
}

// RecordSnapshot prints every cycle; used by the paced live mode.
func (c *Console) RecordSnapshot(s dispatcher.Snapshot) {
	c.PrintState(s)
}
