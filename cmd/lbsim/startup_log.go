package main

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// spinnerFrames animate StartSpinner on a terminal.
var spinnerFrames = []rune{'⠋', '⠙', '⠹', '⠸', '⠼', '⠴', '⠦', '⠧', '⠇', '⠏'} //nolint:gochecknoglobals // constant frames

// startupLog prints run progress to stderr: completed steps with a checkmark
// and, on a terminal, a spinner while the simulation runs.
type startupLog struct {
	w     io.Writer
	isTTY bool
	mu    sync.Mutex
}

// newStartupLog creates a progress logger writing to w. isTTY enables the
// animated spinner; otherwise StartSpinner prints a static line.
func newStartupLog(w io.Writer, isTTY bool) *startupLog {
	return &startupLog{w: w, isTTY: isTTY}
}

// Step prints a completed step.
func (s *startupLog) Step(msg string) {
	s.printf("✓ %s\n", msg)
}

// StepTimed prints a completed step with its wall-clock duration.
func (s *startupLog) StepTimed(msg string, d time.Duration) {
	s.printf("✓ %s (%s)\n", msg, d.Round(time.Millisecond))
}

func (s *startupLog) printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, format, args...)
}

// StartSpinner shows msg until the returned stop function is called, which
// then prints the step as completed. stop is safe to call more than once.
func (s *startupLog) StartSpinner(msg string) (stop func()) {
	if !s.isTTY {
		s.printf("%s\n", msg)
		var once sync.Once
		return func() { once.Do(func() { s.Step(msg) }) }
	}

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.spin(msg, done)
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			wg.Wait()
			s.printf("\r✓ %s\n", msg)
		})
	}
}

// spin redraws the spinner line until done is closed.
func (s *startupLog) spin(msg string, done <-chan struct{}) {
	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for frame := 0; ; frame = (frame + 1) % len(spinnerFrames) {
		select {
		case <-done:
			return
		case <-ticker.C:
			s.printf("\r%c %s", spinnerFrames[frame], msg)
		}
	}
}
