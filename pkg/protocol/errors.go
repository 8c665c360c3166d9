package protocol

import "fmt"

// Op names the operation whose precondition was violated.
type Op string

// Operations guarded by a precondition.
const (
	OpDequeue Op = "dequeue"
	OpAssign  Op = "assign"
)

// PreconditionError reports a call made in a state where the callee's
// contract forbids it, e.g. dequeue on an empty queue or assigning work to a
// busy server. The balancer checks these conditions itself, so receiving one
// means the balancer has a logic bug.
type PreconditionError struct {
	Op     Op
	Detail string // human-readable context, e.g. "server 3"
	Err    error  // sentinel cause for errors.Is
}

func (e *PreconditionError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("precondition violated on %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("precondition violated on %s (%s): %v", e.Op, e.Detail, e.Err)
}

func (e *PreconditionError) Unwrap() error {
	return e.Err
}

// InvalidAddressError reports a malformed dotted-quad IPv4 string.
type InvalidAddressError struct {
	Address string
}

func (e *InvalidAddressError) Error() string {
	return fmt.Sprintf("invalid IPv4 address %q", e.Address)
}
