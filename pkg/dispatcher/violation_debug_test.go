//go:build debug

package dispatcher //nolint:testpackage // internal white-box tests need access to unexported fields

import "testing"

// TestViolation_PanicsInDebugBuild checks debug builds stop on the first
// contract violation.
func TestViolation_PanicsInDebugBuild(t *testing.T) {
	d, _ := newTestDispatcher(t, Config{Servers: 1})
	_, err := d.queue.Dequeue()

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic in debug build")
		}
	}()
	d.violation(err, 0)
}
