//go:build !debug

package dispatcher //nolint:testpackage // internal white-box tests need access to unexported fields

import (
	"errors"
	"testing"

	"lbsim/pkg/queue"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
)

// TestViolation_LoggedAndSkipped checks release builds report contract
// violations through the logger instead of panicking.
func TestViolation_LoggedAndSkipped(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	d, _ := newTestDispatcher(t, Config{Servers: 1}, WithLogger(logger))

	_, err := d.queue.Dequeue()
	if !errors.Is(err, queue.ErrEmpty) {
		t.Fatalf("expected ErrEmpty from empty queue, got %v", err)
	}
	d.violation(err, 0)

	entry := hook.LastEntry()
	if entry == nil {
		t.Fatal("no log entry recorded")
	}
	if entry.Level != logrus.ErrorLevel {
		t.Errorf("level = %v, want error", entry.Level)
	}
	if got, ok := entry.Data[logrus.ErrorKey].(error); !ok || got != err {
		t.Errorf("logged error = %v, want %v", entry.Data[logrus.ErrorKey], err)
	}
	if entry.Data["server"] != 0 {
		t.Errorf("server field = %v", entry.Data["server"])
	}
}
