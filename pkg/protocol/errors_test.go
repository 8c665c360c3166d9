package protocol_test

import (
	"errors"
	"fmt"
	"testing"

	"lbsim/pkg/protocol"
)

var errSentinel = errors.New("sentinel")

func TestPreconditionError_ErrorsAs(t *testing.T) {
	pErr := &protocol.PreconditionError{Op: protocol.OpAssign, Detail: "server 3", Err: errSentinel}
	wrapped := fmt.Errorf("tick: %w", pErr)

	var target *protocol.PreconditionError
	if !errors.As(wrapped, &target) {
		t.Fatal("errors.As failed to extract PreconditionError")
	}
	if target.Op != protocol.OpAssign || target.Detail != "server 3" {
		t.Errorf("unexpected fields: %+v", target)
	}
	if !errors.Is(wrapped, errSentinel) {
		t.Error("errors.Is should reach the sentinel cause through Unwrap")
	}
}

func TestPreconditionError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  *protocol.PreconditionError
		want string
	}{
		{
			name: "without detail",
			err:  &protocol.PreconditionError{Op: protocol.OpDequeue, Err: errSentinel},
			want: "precondition violated on dequeue: sentinel",
		},
		{
			name: "with detail",
			err:  &protocol.PreconditionError{Op: protocol.OpAssign, Detail: "server 0", Err: errSentinel},
			want: "precondition violated on assign (server 0): sentinel",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInvalidAddressError(t *testing.T) {
	var err error = &protocol.InvalidAddressError{Address: "1.2.3"}

	var target *protocol.InvalidAddressError
	if !errors.As(err, &target) || target.Address != "1.2.3" {
		t.Fatalf("errors.As failed: %v", err)
	}
	if err.Error() != `invalid IPv4 address "1.2.3"` {
		t.Errorf("Error() = %q", err.Error())
	}
}
