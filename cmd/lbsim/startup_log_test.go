package main

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestStartupLog_Step(t *testing.T) {
	var buf bytes.Buffer
	log := newStartupLog(&buf, false)

	log.Step("Seeded 200 requests across 2 servers")

	if got := buf.String(); got != "✓ Seeded 200 requests across 2 servers\n" {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestStartupLog_StepTimed(t *testing.T) {
	var buf bytes.Buffer
	log := newStartupLog(&buf, false)

	log.StepTimed("Finished at cycle 10", 1500*time.Millisecond)

	if got := buf.String(); got != "✓ Finished at cycle 10 (1.5s)\n" {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestStartupLog_SpinnerTTY(t *testing.T) {
	var buf bytes.Buffer
	log := newStartupLog(&buf, true)

	stop := log.StartSpinner("Simulating 10 cycles")
	time.Sleep(200 * time.Millisecond) // let the spinner draw a few frames
	stop()
	stop()

	output := buf.String()
	if !strings.Contains(output, "\r") {
		t.Errorf("TTY spinner should redraw with \\r, got: %q", output)
	}
	if !strings.HasSuffix(output, "\r✓ Simulating 10 cycles\n") {
		t.Errorf("expected final checkmark, got: %q", output)
	}
	if strings.Count(output, "✓") != 1 {
		t.Errorf("stop should print once, got: %q", output)
	}
}

func TestStartupLog_SpinnerNonTTY(t *testing.T) {
	var buf bytes.Buffer
	log := newStartupLog(&buf, false)

	stop := log.StartSpinner("Simulating 10 cycles")
	stop()
	stop()

	want := "Simulating 10 cycles\n✓ Simulating 10 cycles\n"
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
