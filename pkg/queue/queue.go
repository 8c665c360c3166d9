// Package queue provides the FIFO work queue drained by the balancer.
package queue

import (
	"errors"

	"lbsim/pkg/protocol"
	"lbsim/pkg/request"
)

// ErrEmpty is the cause reported when dequeuing from an empty queue.
var ErrEmpty = errors.New("queue is empty")

// Queue is a FIFO of requests. Insertion order is service order.
type Queue struct {
	items []request.Request
	head  int
}

// New returns an empty queue.
func New() *Queue {
	return &Queue{}
}

// Enqueue appends r to the tail.
func (q *Queue) Enqueue(r request.Request) {
	q.items = append(q.items, r)
}

// Dequeue removes and returns the head. Callers must check IsEmpty first;
// on an empty queue it returns a *protocol.PreconditionError wrapping ErrEmpty.
func (q *Queue) Dequeue() (request.Request, error) {
	if q.IsEmpty() {
		return request.Request{}, &protocol.PreconditionError{Op: protocol.OpDequeue, Err: ErrEmpty}
	}

	r := q.items[q.head]
	q.items[q.head] = request.Request{}
	q.head++

	// Reclaim the consumed prefix once it dominates the backing array.
	if q.head > len(q.items)/2 {
		n := copy(q.items, q.items[q.head:])
		q.items = q.items[:n]
		q.head = 0
	}

	return r, nil
}

// Peek returns the head without removing it.
func (q *Queue) Peek() (request.Request, bool) {
	if q.IsEmpty() {
		return request.Request{}, false
	}
	return q.items[q.head], true
}

// IsEmpty reports whether the queue holds no requests.
func (q *Queue) IsEmpty() bool {
	return q.Len() == 0
}

// Len returns the number of queued requests.
func (q *Queue) Len() int {
	return len(q.items) - q.head
}
