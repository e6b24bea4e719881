// Package lifetime keeps ordered cleanup actions for GPU resources whose
// destruction order must be the reverse of their creation order.
//
// A renderer keeps one Queue per scope (main, device, frame-size). Outer scopes
// never hold handles owned by inner scopes, so flushing an inner queue cannot
// leave a dangling reference behind.
package lifetime

import (
	"sync"
)

// Queue is a LIFO list of cleanup actions. The zero value is ready to use.
type Queue struct {
	mu       sync.Mutex
	name     string
	actions  []func()
	flushing bool
}

// New returns a named queue. The name only shows up in panics.
func New(name string) *Queue {
	return &Queue{name: name}
}

func (q *Queue) Name() string {
	return q.name
}

// Push records a cleanup action. Pushing into a queue that is being flushed
// panics, a flush is never reentrant.
func (q *Queue) Push(action func()) {
	if action == nil {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.flushing {
		panic("lifetime: push into queue " + q.name + " while flushing")
	}
	q.actions = append(q.actions, action)
}

// Len reports the number of pending actions.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.actions)
}

// Flush runs every pending action in reverse registration order and empties
// the queue. A panicking action does not stop the remaining ones; the first
// panic is re-raised once the queue is empty.
func (q *Queue) Flush() {
	q.mu.Lock()
	if q.flushing {
		q.mu.Unlock()
		panic("lifetime: reentrant flush of queue " + q.name)
	}
	actions := q.actions
	q.actions = nil
	q.flushing = true
	q.mu.Unlock()

	defer func() {
		q.mu.Lock()
		q.flushing = false
		q.mu.Unlock()
	}()

	var first interface{}
	for i := len(actions) - 1; i >= 0; i-- {
		func() {
			defer func() {
				if v := recover(); v != nil && first == nil {
					first = v
				}
			}()
			actions[i]()
		}()
	}
	if first != nil {
		panic(first)
	}
}
