// Package request defines the unit of work moved through the balancer and the
// generator that synthesizes random requests.
package request

import (
	"fmt"
	"strconv"
	"strings"

	"lbsim/pkg/protocol"

	"github.com/google/uuid"
)

// Request is one unit of work: a source and destination address and the
// number of cycles a server needs to process it. Values are immutable once
// built; pass them by value.
type Request struct {
	ID          uuid.UUID
	Source      string
	Destination string
	Duration    int
}

// New builds a request with explicit fields. The ID is random; use
// Generator.Next for reproducible IDs.
func New(source, destination string, duration int) (Request, error) {
	if err := ValidateIP(source); err != nil {
		return Request{}, fmt.Errorf("source: %w", err)
	}
	if err := ValidateIP(destination); err != nil {
		return Request{}, fmt.Errorf("destination: %w", err)
	}
	if duration < 1 {
		return Request{}, fmt.Errorf("duration must be positive, got %d", duration)
	}
	return Request{
		ID:          uuid.New(),
		Source:      source,
		Destination: destination,
		Duration:    duration,
	}, nil
}

// String renders the request for logs.
func (r Request) String() string {
	return fmt.Sprintf("%s -> %s (%d)", r.Source, r.Destination, r.Duration)
}

// ValidateIP checks that s is four dot-separated integers in [0,255].
func ValidateIP(s string) error {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return &protocol.InvalidAddressError{Address: s}
	}
	for _, p := range parts {
		if p == "" || len(p) > 3 {
			return &protocol.InvalidAddressError{Address: s}
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > 255 {
			return &protocol.InvalidAddressError{Address: s}
		}
	}
	return nil
}
