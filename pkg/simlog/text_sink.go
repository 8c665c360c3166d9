package simlog

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"lbsim/pkg/dispatcher"
)

// TextSink appends events and per-cycle snapshots to a text stream. The
// first write error is kept and reported by Err and Close; later writes are
// skipped.
type TextSink struct {
	bw     *bufio.Writer
	closer io.Closer
	err    error
}

// OpenTextSink creates (or truncates) the log file at path.
func OpenTextSink(path string) (*TextSink, error) {
	f, err := os.Create(path) //nolint:gosec // path comes from the operator's flags
	if err != nil {
		return nil, fmt.Errorf("open log %s: %w", path, err)
	}
	s := NewTextSink(f)
	s.closer = f
	return s, nil
}

// NewTextSink writes to w. Close flushes but does not close w.
func NewTextSink(w io.Writer) *TextSink {
	return &TextSink{bw: bufio.NewWriter(w)}
}

// RecordEvent writes the event's log line, if it has one.
func (s *TextSink) RecordEvent(ev dispatcher.Event) {
	line, ok := EventLine(ev)
	if !ok || s.err != nil {
		return
	}
	if _, err := s.bw.WriteString(line + "\n"); err != nil {
		s.err = fmt.Errorf("write event: %w", err)
	}
}

// RecordSnapshot writes the cycle block and flushes, so the file can be
// tailed while a paced run is in progress.
func (s *TextSink) RecordSnapshot(snap dispatcher.Snapshot) {
	if s.err != nil {
		return
	}
	if err := WriteSnapshot(s.bw, snap); err != nil {
		s.err = err
		return
	}
	if err := s.bw.Flush(); err != nil {
		s.err = fmt.Errorf("flush log: %w", err)
	}
}

// Err returns the first write error, if any.
func (s *TextSink) Err() error {
	return s.err
}

// Close flushes buffered output and closes the file opened by OpenTextSink.
func (s *TextSink) Close() error {
	if err := s.bw.Flush(); err != nil && s.err == nil {
		s.err = fmt.Errorf("flush log: %w", err)
	}
	if s.closer != nil {
		if err := s.closer.Close(); err != nil && s.err == nil {
			s.err = fmt.Errorf("close log: %w", err)
		}
		s.closer = nil
	}
	return s.err
}
