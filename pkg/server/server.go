// Package server models a single-slot web server: idle, or busy with a
// request and a count of cycles left.
package server

import (
	"errors"

	"lbsim/pkg/protocol"
	"lbsim/pkg/request"
)

// ErrBusy is the cause reported when assigning to a server that is not idle.
var ErrBusy = errors.New("server is busy")

// Server processes one request at a time.
type Server struct {
	busy      bool
	remaining int
	current   request.Request
}

// New returns an idle server.
func New() *Server {
	return &Server{}
}

// Assign starts r on an idle server. Assigning to a busy server returns a
// *protocol.PreconditionError wrapping ErrBusy and leaves the server as is.
func (s *Server) Assign(r request.Request) error {
	if s.busy {
		return &protocol.PreconditionError{Op: protocol.OpAssign, Err: ErrBusy}
	}
	s.current = r
	s.remaining = r.Duration
	s.busy = s.remaining > 0
	return nil
}

// Tick advances the server one cycle. A job reaching zero frees the server
// within the same tick; the finished request is returned, otherwise nil.
func (s *Server) Tick() *request.Request {
	if !s.busy {
		return nil
	}
	s.remaining--
	if s.remaining > 0 {
		return nil
	}
	s.remaining = 0
	s.busy = false
	done := s.current
	return &done
}

// IsFree reports whether the server can take a request.
func (s *Server) IsFree() bool {
	return !s.busy
}

// TimeLeft returns the remaining cycles of the current job, 0 when idle.
func (s *Server) TimeLeft() int {
	if !s.busy {
		return 0
	}
	return s.remaining
}

// Current returns the in-flight request, if any.
func (s *Server) Current() (request.Request, bool) {
	if !s.busy {
		return request.Request{}, false
	}
	return s.current, true
}

// State returns the server's coarse state.
func (s *Server) State() protocol.ServerState {
	if s.busy {
		return protocol.ServerBusy
	}
	return protocol.ServerIdle
}

// Release drops the in-flight job, if any, and returns it. The server is
// idle afterwards.
func (s *Server) Release() (request.Request, bool) {
	r, ok := s.Current()
	*s = Server{}
	return r, ok
}
